package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	City string  `json:"city"`
	Temp float64 `json:"temp"`
}

func TestPutGet_RoundTrip(t *testing.T) {
	c := New(t.TempDir(), time.Minute)

	require.NoError(t, c.Put("weather:baghdad", sample{City: "Baghdad", Temp: 41.5}))

	var got sample
	hit, err := c.Get("weather:baghdad", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, sample{City: "Baghdad", Temp: 41.5}, got)
}

func TestGet_MissOnAbsentKey(t *testing.T) {
	c := New(t.TempDir(), time.Minute)

	var got sample
	hit, err := c.Get("nothing", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGet_MissAfterExpiry(t *testing.T) {
	c := New(t.TempDir(), time.Minute)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Put("k", sample{City: "Erbil"}))

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	var got sample
	hit, err := c.Get("k", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestPut_OverwritesEntry(t *testing.T) {
	c := New(t.TempDir(), time.Minute)

	require.NoError(t, c.Put("k", sample{Temp: 1}))
	require.NoError(t, c.Put("k", sample{Temp: 2}))

	var got sample
	hit, err := c.Get("k", &got)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, 2.0, got.Temp)
}

func TestPurge_RemovesOnlyExpired(t *testing.T) {
	c := New(t.TempDir(), time.Minute)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return base }

	require.NoError(t, c.Put("old", sample{}))

	c.now = func() time.Time { return base.Add(90 * time.Second) }
	require.NoError(t, c.Put("fresh", sample{}))

	removed, err := c.Purge()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	var got sample
	hit, err := c.Get("fresh", &got)
	require.NoError(t, err)
	assert.True(t, hit)
}
