package pdftool

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "taskninja/internal/errors"
)

// writePDF builds a minimal valid PDF with the given page count, computing
// the cross-reference table by hand.
func writePDF(t *testing.T, path string, pages int) {
	t.Helper()

	var objects []string
	kids := make([]string, 0, pages)
	for i := 0; i < pages; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages),
	)
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xrefStart := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", len(objects)+1)
	b.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0644))
}

func TestInspect_CountsPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	writePDF(t, path, 3)

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.True(t, info.Valid)
	assert.Equal(t, 3, info.Pages)
}

func TestInspect_MissingFile(t *testing.T) {
	_, err := Inspect(filepath.Join(t.TempDir(), "gone.pdf"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileNotFound, apperrors.CodeOf(err))
}

func TestInspect_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("just text"), 0644))

	_, err := Inspect(path)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeFileFormat, apperrors.CodeOf(err))
}

func TestMerge_CombinesPages(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.pdf")
	b := filepath.Join(dir, "b.pdf")
	writePDF(t, a, 2)
	writePDF(t, b, 1)
	out := filepath.Join(dir, "out", "merged.pdf")

	infos, err := Merge([]string{a, b}, out)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, 2, infos[0].Pages)

	merged, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 3, merged.Pages)
}

func TestMerge_RequiresTwoInputs(t *testing.T) {
	_, err := Merge([]string{"one.pdf"}, "out.pdf")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestMerge_RejectsNonPDFOutput(t *testing.T) {
	_, err := Merge([]string{"a.pdf", "b.pdf"}, "out.txt")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.CodeOf(err))
}

func TestMerge_FailsOnBrokenInput(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.pdf")
	writePDF(t, good, 1)
	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("nope"), 0644))
	out := filepath.Join(dir, "merged.pdf")

	_, err := Merge([]string{good, bad}, out)
	require.Error(t, err)
	assert.NoFileExists(t, out)
}

func TestCollectDir(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, filepath.Join(dir, "b.pdf"), 1)
	writePDF(t, filepath.Join(dir, "a.PDF"), 1)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	pdfs, err := CollectDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.PDF"), filepath.Join(dir, "b.pdf")}, pdfs)
}
