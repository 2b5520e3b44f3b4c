package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskninja/internal/errors"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"photo.JPG", "Images"},
		{"report.pdf", "Documents"},
		{"data.csv", "Spreadsheets"},
		{"song.mp3", "Audio"},
		{"clip.mkv", "Video"},
		{"backup.tar", "Archives"},
		{"main.go", "Code"},
		{"mystery.xyz", "Other"},
		{"noextension", "Other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFor(tt.name))
		})
	}
}

func TestLoadCategories_OverridesMapping(t *testing.T) {
	saved := categories
	t.Cleanup(func() { categories = saved })

	path := filepath.Join(t.TempDir(), "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Books": ["epub", ".MOBI"]}`), 0644))

	require.NoError(t, LoadCategories(path))
	assert.Equal(t, "Books", CategoryFor("novel.epub"))
	assert.Equal(t, "Books", CategoryFor("novel.mobi"))
	assert.Equal(t, "Other", CategoryFor("photo.jpg"))
}

func TestLoadCategories_Invalid(t *testing.T) {
	saved := categories
	t.Cleanup(func() { categories = saved })

	missing := filepath.Join(t.TempDir(), "absent.json")
	err := LoadCategories(missing)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileNotFound, apperrors.CodeOf(err))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0644))
	err = LoadCategories(bad)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileFormat, apperrors.CodeOf(err))

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0644))
	err = LoadCategories(empty)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestPlan_SkipsDirsAndHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "photo.png"))
	touch(t, filepath.Join(dir, ".hidden"))
	touch(t, filepath.Join(dir, "sub", "nested.txt"))

	moves, err := Plan(dir)
	require.NoError(t, err)
	require.Len(t, moves, 1)
	assert.Equal(t, "Images", moves[0].Category)
	assert.Equal(t, filepath.Join(dir, "Images", "photo.png"), moves[0].To)
}

func TestPlan_MissingDir(t *testing.T) {
	_, err := Plan(filepath.Join(t.TempDir(), "gone"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileNotFound, apperrors.CodeOf(err))
}

func TestOrganize_MovesFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "photo.png"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "weird.xyz"))

	moved, err := Organize(dir)
	require.NoError(t, err)
	assert.Len(t, moved, 3)

	assert.FileExists(t, filepath.Join(dir, "Images", "photo.png"))
	assert.FileExists(t, filepath.Join(dir, "Documents", "notes.txt"))
	assert.FileExists(t, filepath.Join(dir, "Other", "weird.xyz"))
	assert.NoFileExists(t, filepath.Join(dir, "photo.png"))
}

func TestOrganize_RenamesOnCollision(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "Images", "photo.png"))
	touch(t, filepath.Join(dir, "photo.png"))

	_, err := Organize(dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "Images", "photo.png"))
	assert.FileExists(t, filepath.Join(dir, "Images", "photo (1).png"))
}

func TestOrganize_EmptyDirIsNoop(t *testing.T) {
	dir := t.TempDir()

	moved, err := Organize(dir)
	require.NoError(t, err)
	assert.Empty(t, moved)
	assert.NoFileExists(t, undoLogPath(dir))
}

func TestUndo_RestoresOriginalLayout(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "photo.png"))
	touch(t, filepath.Join(dir, "notes.txt"))

	_, err := Organize(dir)
	require.NoError(t, err)

	restored, err := Undo(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)

	assert.FileExists(t, filepath.Join(dir, "photo.png"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.NoFileExists(t, undoLogPath(dir))
	assert.NoDirExists(t, filepath.Join(dir, "Images"))
}

func TestUndo_NothingToUndo(t *testing.T) {
	restored, err := Undo(t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, restored)
}

func TestUndo_StacksAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "first.png"))
	_, err := Organize(dir)
	require.NoError(t, err)

	touch(t, filepath.Join(dir, "second.txt"))
	_, err = Organize(dir)
	require.NoError(t, err)

	restored, err := Undo(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, restored)
	assert.FileExists(t, filepath.Join(dir, "first.png"))
	assert.FileExists(t, filepath.Join(dir, "second.txt"))
}

func TestWatch_RejectsNonPositiveSettle(t *testing.T) {
	for _, settle := range []time.Duration{0, -time.Second} {
		err := Watch(context.Background(), t.TempDir(), settle)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
	}
}

func TestWatch_FilesNewArrivals(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "existing.txt"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, dir, 50*time.Millisecond) }()

	// Give the watcher time for the initial pass and registration.
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "Documents", "existing.txt"))
		return err == nil
	}, 2*time.Second, 20*time.Millisecond)

	touch(t, filepath.Join(dir, "arrival.png"))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "Images", "arrival.png"))
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
