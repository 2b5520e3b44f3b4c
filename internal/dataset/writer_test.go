package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_CSVRoundTrip(t *testing.T) {
	content := "Name,Age,City\nJohn,25,New York\nJane,30,London\n"
	in := writeFile(t, "in.csv", content)

	ds, err := Load(in)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, Write(ds, out, WriteOptions{}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, content, string(got), "load then write with no transform must round-trip")
}

func TestWrite_CSVWithBOM(t *testing.T) {
	ds := New("A")
	ds.Append(Row{"A": "1"})

	out := filepath.Join(t.TempDir(), "bom.csv")
	require.NoError(t, Write(ds, out, WriteOptions{BOM: true}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, got[:3])
}

func TestWrite_OverwritesDestination(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(out, []byte("old content"), 0644))

	ds := New("A")
	ds.Append(Row{"A": "1"})
	require.NoError(t, Write(ds, out, WriteOptions{}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "A\n1\n", string(got))
}

func TestWrite_EmptyDataset(t *testing.T) {
	ds := New("A", "B")
	out := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, Write(ds, out, WriteOptions{}))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "A,B\n", string(got), "empty input produces header-only output")
}

func TestWrite_ColumnOrderSurvivesFormatHop(t *testing.T) {
	in := writeFile(t, "in.csv", "Z,A,M\n1,2,3\n")
	ds, err := Load(in)
	require.NoError(t, err)

	xlsx := filepath.Join(t.TempDir(), "hop.xlsx")
	require.NoError(t, Write(ds, xlsx, WriteOptions{}))

	hopped, err := Load(xlsx)
	require.NoError(t, err)

	csvOut := filepath.Join(t.TempDir(), "hop.csv")
	require.NoError(t, Write(hopped, csvOut, WriteOptions{}))

	got, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "Z,A,M\n1,2,3\n", string(got))
}

func TestWrite_JSON(t *testing.T) {
	ds := New("name", "age")
	ds.Append(Row{"name": "John", "age": "25"})

	out := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, Write(ds, out, WriteOptions{}))

	loaded, err := Load(out)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 1)
	assert.Equal(t, "John", loaded.Get(0, "name"))
	assert.Equal(t, "25", loaded.Get(0, "age"))
}

func TestWrite_UnsupportedExtension(t *testing.T) {
	ds := New("A")
	err := Write(ds, filepath.Join(t.TempDir(), "out.parquet"), WriteOptions{})
	assert.Error(t, err)
}
