// Package aggregate computes grouped summaries over a dataset: totals,
// averages, and counts by one or two key columns, with Excel workbook output.
package aggregate

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
)

// GroupRow is one output row of a grouped summary.
type GroupRow struct {
	Keys  []string `json:"keys"`
	Sum   float64  `json:"sum"`
	Mean  float64  `json:"mean"`
	Count int      `json:"count"`
}

// Summary holds grouped results together with the grouping shape.
type Summary struct {
	GroupColumns []string   `json:"group_columns"`
	ValueColumn  string     `json:"value_column"`
	Groups       []GroupRow `json:"groups"`
}

// By groups the dataset by one or more key columns and reduces the value
// column. Rows whose value cell is empty or unparsable contribute 0 to the
// sum and still count. Groups come back sorted by descending sum, ties by
// key.
func By(ds *dataset.Dataset, valueColumn string, groupColumns ...string) (*Summary, error) {
	if !ds.HasColumn(valueColumn) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("input data must contain a %q column", valueColumn))
	}
	for _, col := range groupColumns {
		if !ds.HasColumn(col) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("input data must contain a %q column", col))
		}
	}
	if len(groupColumns) == 0 {
		return nil, apperrors.InvalidInput("at least one group column is required")
	}

	type acc struct {
		keys  []string
		sum   float64
		count int
	}
	groups := map[string]*acc{}
	order := []string{}

	for i := range ds.Rows {
		keys := make([]string, len(groupColumns))
		for j, col := range groupColumns {
			keys[j] = ds.Get(i, col)
		}
		mapKey := fmt.Sprintf("%q", keys)

		a, ok := groups[mapKey]
		if !ok {
			a = &acc{keys: keys}
			groups[mapKey] = a
			order = append(order, mapKey)
		}
		v, _ := ds.Float(i, valueColumn)
		a.sum += v
		a.count++
	}

	summary := &Summary{GroupColumns: groupColumns, ValueColumn: valueColumn}
	for _, k := range order {
		a := groups[k]
		mean := 0.0
		if a.count > 0 {
			mean = a.sum / float64(a.count)
		}
		summary.Groups = append(summary.Groups, GroupRow{Keys: a.keys, Sum: a.sum, Mean: mean, Count: a.count})
	}

	sort.SliceStable(summary.Groups, func(i, j int) bool {
		gi, gj := summary.Groups[i], summary.Groups[j]
		if gi.Sum != gj.Sum {
			return gi.Sum > gj.Sum
		}
		return fmt.Sprint(gi.Keys) < fmt.Sprint(gj.Keys)
	})

	slog.Info("aggregated dataset",
		slog.String("value_column", valueColumn),
		slog.Any("group_columns", groupColumns),
		slog.Int("groups", len(summary.Groups)))
	return summary, nil
}

// Dataset converts the summary into a record set with one column per group
// key plus Total, Average, and Count columns.
func (s *Summary) Dataset() *dataset.Dataset {
	columns := append([]string{}, s.GroupColumns...)
	columns = append(columns, "Total "+s.ValueColumn, "Average "+s.ValueColumn, "Count")

	ds := dataset.New(columns...)
	for _, g := range s.Groups {
		row := dataset.Row{}
		for i, col := range s.GroupColumns {
			row[col] = g.Keys[i]
		}
		row["Total "+s.ValueColumn] = formatFloat(g.Sum)
		row["Average "+s.ValueColumn] = formatFloat(g.Mean)
		row["Count"] = fmt.Sprintf("%d", g.Count)
		ds.Append(row)
	}
	return ds
}

// Top returns the group with the largest sum, or nil when empty.
func (s *Summary) Top() *GroupRow {
	if len(s.Groups) == 0 {
		return nil
	}
	return &s.Groups[0]
}

// formatFloat rounds to two decimals and trims trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
