package whatsapp

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskninja/internal/errors"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"+964 770 123 4567", "9647701234567", false},
		{"+1 (555) 010-9999", "15550109999", false},
		{"9647701234567", "9647701234567", false},
		{"not a number", "", true},
		{"123", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizePhone(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func newTestBook(t *testing.T) *ContactBook {
	t.Helper()
	return NewContactBook(filepath.Join(t.TempDir(), "contacts.json"))
}

func TestContactBook_AddAndList(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Add("Zara", "+964 770 111 2222")
	require.NoError(t, err)
	_, err = book.Add("Ali", "+964 780 333 4444")
	require.NoError(t, err)

	contacts, err := book.List()
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ali", contacts[0].Name)
	assert.Equal(t, "9647803334444", contacts[0].Phone)
}

func TestContactBook_AddReplacesSameName(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Add("Ali", "+964 780 333 4444")
	require.NoError(t, err)
	_, err = book.Add("ali", "+964 780 999 8888")
	require.NoError(t, err)

	contacts, err := book.List()
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "9647809998888", contacts[0].Phone)
}

func TestContactBook_Remove(t *testing.T) {
	book := newTestBook(t)

	_, err := book.Add("Ali", "+964 780 333 4444")
	require.NoError(t, err)
	require.NoError(t, book.Remove("ALI"))

	contacts, err := book.List()
	require.NoError(t, err)
	assert.Empty(t, contacts)

	err = book.Remove("Ali")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestContactBook_Resolve(t *testing.T) {
	book := newTestBook(t)
	_, err := book.Add("Ali", "+964 780 333 4444")
	require.NoError(t, err)

	phone, err := book.Resolve("ali")
	require.NoError(t, err)
	assert.Equal(t, "9647803334444", phone)

	phone, err = book.Resolve("+1 555 010 9999")
	require.NoError(t, err)
	assert.Equal(t, "15550109999", phone)

	_, err = book.Resolve("nobody")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestParseSchedule(t *testing.T) {
	now := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)

	at, err := ParseSchedule("15:30", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC), at)

	// A time already past today rolls to tomorrow.
	at, err = ParseSchedule("09:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), at)

	at, err = ParseSchedule("2024-12-24 18:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 24, 18, 0, 0, 0, time.UTC), at)

	_, err = ParseSchedule("soonish", now)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestSendAt_RejectsPastTime(t *testing.T) {
	s := NewSender(t.TempDir(), true)
	now := time.Date(2024, 6, 1, 14, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	err := s.SendAt(context.Background(), "9647701234567", "hi", now.Add(-time.Minute))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}
