package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRaw() *Dataset {
	ds := New("Date", "Region", "Product", "Sales")
	ds.Append(Row{"Date": "2024-01-05", "Region": "North", "Product": "Widget", "Sales": "100"})
	ds.Append(Row{"Date": "2024-01-05", "Region": "North", "Product": "Widget", "Sales": "100"}) // duplicate
	ds.Append(Row{"Date": "01/15/2024", "Region": "South", "Product": "Gadget", "Sales": ""})
	ds.Append(Row{"Date": "2024-02-01", "Region": "", "Product": "Widget", "Sales": "50"})
	return ds
}

func cleanOpts() CleanOptions {
	return CleanOptions{
		FillNumeric: map[string]float64{"Sales": 0},
		DateColumns: []string{"Date"},
		Required:    []string{"Region", "Product"},
	}
}

func TestClean_AppliesAllSteps(t *testing.T) {
	ds := sampleRaw()
	ch := Clean(ds, cleanOpts())

	assert.Equal(t, 1, ch.DuplicatesDropped)
	assert.Equal(t, 1, ch.CellsFilled)
	assert.Equal(t, 1, ch.DatesCoerced)
	assert.Equal(t, 1, ch.RowsDropped)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, "2024-01-15", ds.Get(1, "Date"))
	assert.Equal(t, "0", ds.Get(1, "Sales"))
}

func TestClean_Idempotent(t *testing.T) {
	ds := sampleRaw()
	Clean(ds, cleanOpts())

	second := Clean(ds, cleanOpts())
	assert.Zero(t, second.Total(), "second pass over clean data must report no changes")
}

func TestClean_EmptyDataset(t *testing.T) {
	ds := New("A", "B")
	ch := Clean(ds, cleanOpts())
	assert.Zero(t, ch.Total())
	assert.Empty(t, ds.Rows)
}

func TestClean_UnparsableDateBlanks(t *testing.T) {
	ds := New("Date")
	ds.Append(Row{"Date": "not a date"})
	ch := Clean(ds, CleanOptions{DateColumns: []string{"Date"}})

	assert.Equal(t, 1, ch.DatesCoerced)
	assert.Equal(t, "", ds.Get(0, "Date"))
}

func TestClean_MissingColumnsIgnored(t *testing.T) {
	ds := New("A")
	ds.Append(Row{"A": "1"})
	ch := Clean(ds, CleanOptions{
		FillNumeric: map[string]float64{"Nope": 0},
		DateColumns: []string{"AlsoNope"},
		Required:    []string{"StillNope"},
	})
	assert.Zero(t, ch.Total())
	assert.Len(t, ds.Rows, 1)
}

func TestClean_PerColumnDefaults(t *testing.T) {
	ds := New("Qty", "Price")
	ds.Append(Row{"Qty": "", "Price": ""})
	Clean(ds, CleanOptions{FillNumeric: map[string]float64{"Qty": 1, "Price": 9.99}})

	assert.Equal(t, "1", ds.Get(0, "Qty"))
	assert.Equal(t, "9.99", ds.Get(0, "Price"))
}

func TestClean_PreservesColumnOrder(t *testing.T) {
	ds := sampleRaw()
	before := append([]string(nil), ds.Columns...)
	Clean(ds, cleanOpts())
	assert.Equal(t, before, ds.Columns)
}

func TestDescribe(t *testing.T) {
	ds := New("Date", "Sales", "Note")
	ds.Append(Row{"Date": "2024-01-05", "Sales": "10", "Note": "ok"})
	ds.Append(Row{"Date": "2024-01-06", "Sales": "", "Note": "12"})

	info := Describe(ds)
	assert.Equal(t, 2, info.Rows)
	assert.Equal(t, 3, info.Columns)
	assert.Equal(t, 1, info.Missing["Sales"])
	assert.Equal(t, KindDate, info.Kinds["Date"])
	assert.Equal(t, KindNumber, info.Kinds["Sales"])
	assert.Equal(t, KindText, info.Kinds["Note"])
}

func TestHeadTail(t *testing.T) {
	ds := New("N")
	for _, v := range []string{"1", "2", "3", "4", "5"} {
		ds.Append(Row{"N": v})
	}
	assert.Len(t, Head(ds, 2).Rows, 2)
	assert.Equal(t, "1", Head(ds, 2).Get(0, "N"))
	assert.Equal(t, "4", Tail(ds, 2).Get(0, "N"))
	assert.Len(t, Head(ds, 100).Rows, 5)
}

func TestHeadTail_NegativeN(t *testing.T) {
	ds := New("N")
	ds.Append(Row{"N": "1"})

	assert.Empty(t, Head(ds, -1).Rows)
	assert.Empty(t, Tail(ds, -3).Rows)
}
