// Package dataset implements the shared tabular engine used by the
// converter, cleaner, aggregation, report, and trend tools: whole-file
// loading of CSV/XLSX/JSON record sets, a fixed-order cleaning pipeline,
// and format-dispatched writing.
package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Row is a single record keyed by column name. Cells are kept as strings;
// numeric and date interpretation happens on demand.
type Row map[string]string

// Dataset is an ordered record set: a fixed column list plus rows.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// New creates an empty dataset with the given column order.
func New(columns ...string) *Dataset {
	return &Dataset{Columns: columns}
}

// Append adds a row, silently dropping cells for unknown columns.
func (d *Dataset) Append(row Row) {
	clean := make(Row, len(d.Columns))
	for _, col := range d.Columns {
		if v, ok := row[col]; ok {
			clean[col] = v
		}
	}
	d.Rows = append(d.Rows, clean)
}

// Get returns the cell value at row i, empty string if absent.
func (d *Dataset) Get(i int, column string) string {
	if i < 0 || i >= len(d.Rows) {
		return ""
	}
	return d.Rows[i][column]
}

// HasColumn reports whether the dataset contains the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Float parses the cell at row i as a number, tolerating thousands
// separators. Returns ok=false for empty or unparsable cells.
func (d *Dataset) Float(i int, column string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(d.Get(i, column)), ",", "")
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Date parses the cell at row i as a date, trying the ISO form first and
// then a set of common layouts.
func (d *Dataset) Date(i int, column string) (time.Time, bool) {
	return parseDate(d.Get(i, column))
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"Jan 2, 2006",
	"2 Jan 2006",
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// missingValues are raw cell spellings normalized to empty at load time.
var missingValues = map[string]struct{}{
	"":     {},
	"NULL": {},
	"null": {},
	"None": {},
	"N/A":  {},
	"NaN":  {},
}

func normalizeCell(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if _, ok := missingValues[trimmed]; ok {
		return ""
	}
	return trimmed
}
