package dataset

import (
	"log/slog"
	"strconv"
	"strings"
)

// CleanOptions selects which columns each fixed pipeline step touches.
// The step order itself is not configurable.
type CleanOptions struct {
	// FillNumeric maps a column to the default written into its missing
	// cells. A column listed with default 0 gets "0".
	FillNumeric map[string]float64
	// DateColumns are coerced to ISO 2006-01-02; unparsable values blank.
	DateColumns []string
	// Required columns: rows missing any of them are dropped.
	Required []string
}

// Changes reports what each cleaning step did.
type Changes struct {
	DuplicatesDropped int `json:"duplicates_dropped"`
	CellsFilled       int `json:"cells_filled"`
	DatesCoerced      int `json:"dates_coerced"`
	RowsDropped       int `json:"rows_dropped"`
}

// Total returns the sum of all recorded changes.
func (c Changes) Total() int {
	return c.DuplicatesDropped + c.CellsFilled + c.DatesCoerced + c.RowsDropped
}

// Clean applies the fixed transform pipeline in place: drop duplicate rows,
// fill missing numeric cells, coerce date columns, drop rows missing
// required columns. Running it again on the result reports zero changes.
func Clean(ds *Dataset, opts CleanOptions) Changes {
	var ch Changes

	ch.DuplicatesDropped = dropDuplicates(ds)
	ch.CellsFilled = fillNumeric(ds, opts.FillNumeric)
	ch.DatesCoerced = coerceDates(ds, opts.DateColumns)
	ch.RowsDropped = dropMissingRequired(ds, opts.Required)

	slog.Info("cleaned dataset",
		slog.Int("duplicates_dropped", ch.DuplicatesDropped),
		slog.Int("cells_filled", ch.CellsFilled),
		slog.Int("dates_coerced", ch.DatesCoerced),
		slog.Int("rows_dropped", ch.RowsDropped),
		slog.Int("rows_remaining", len(ds.Rows)))
	return ch
}

func dropDuplicates(ds *Dataset) int {
	seen := make(map[string]struct{}, len(ds.Rows))
	kept := ds.Rows[:0]
	dropped := 0
	for _, row := range ds.Rows {
		key := rowKey(ds.Columns, row)
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}
	ds.Rows = kept
	return dropped
}

func rowKey(columns []string, row Row) string {
	var b strings.Builder
	for _, col := range columns {
		b.WriteString(row[col])
		b.WriteByte(0x1f)
	}
	return b.String()
}

func fillNumeric(ds *Dataset, defaults map[string]float64) int {
	filled := 0
	for col, def := range defaults {
		if !ds.HasColumn(col) {
			continue
		}
		val := strconv.FormatFloat(def, 'f', -1, 64)
		for _, row := range ds.Rows {
			if row[col] == "" {
				row[col] = val
				filled++
			}
		}
	}
	return filled
}

func coerceDates(ds *Dataset, columns []string) int {
	coerced := 0
	for _, col := range columns {
		if !ds.HasColumn(col) {
			continue
		}
		for _, row := range ds.Rows {
			raw := row[col]
			if raw == "" {
				continue
			}
			t, ok := parseDate(raw)
			if !ok {
				// Unparsable dates blank out, mirroring coerce-with-NaT
				row[col] = ""
				coerced++
				continue
			}
			iso := t.Format("2006-01-02")
			if iso != raw {
				row[col] = iso
				coerced++
			}
		}
	}
	return coerced
}

func dropMissingRequired(ds *Dataset, required []string) int {
	present := make([]string, 0, len(required))
	for _, col := range required {
		if ds.HasColumn(col) {
			present = append(present, col)
		}
	}
	if len(present) == 0 {
		return 0
	}

	kept := ds.Rows[:0]
	dropped := 0
	for _, row := range ds.Rows {
		missing := false
		for _, col := range present {
			if row[col] == "" {
				missing = true
				break
			}
		}
		if missing {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	ds.Rows = kept
	return dropped
}
