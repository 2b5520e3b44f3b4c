// Package report generates a formatted Excel workbook from raw tabular
// data: the untouched records on one sheet and a grouped summary on
// another, with bold headers, sized columns, and the top group highlighted.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"taskninja/internal/aggregate"
	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
)

const (
	rawSheet     = "Raw Data"
	summarySheet = "Summary"

	minColumnWidth = 12
	highlightColor = "FFFF99"
)

// Options selects the grouping for the summary sheet.
type Options struct {
	GroupColumn string
	ValueColumn string
}

// Generate writes the report workbook to outPath and returns the summary
// used for the Summary sheet.
func Generate(ds *dataset.Dataset, outPath string, opts Options) (*aggregate.Summary, error) {
	summary, err := aggregate.By(ds, opts.ValueColumn, opts.GroupColumn)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rawSheet); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to name sheet", err)
	}
	if err := writeSheet(f, rawSheet, ds); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to create summary sheet", err)
	}
	summaryData := summaryDataset(summary, opts)
	if err := writeSheet(f, summarySheet, summaryData); err != nil {
		return nil, err
	}
	if err := styleSummary(f, summaryData, len(summary.Groups)); err != nil {
		return nil, err
	}

	if err := f.SaveAs(outPath); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to save %s", outPath), err)
	}

	slog.Info("generated report",
		slog.String("path", outPath),
		slog.String("group_column", opts.GroupColumn),
		slog.String("value_column", opts.ValueColumn),
		slog.Int("groups", len(summary.Groups)))
	return summary, nil
}

// summaryDataset keeps only the group key and its total, matching the
// two-column summary layout.
func summaryDataset(summary *aggregate.Summary, opts Options) *dataset.Dataset {
	totalCol := "Total " + opts.ValueColumn
	ds := dataset.New(opts.GroupColumn, totalCol)
	full := summary.Dataset()
	for i := range full.Rows {
		ds.Append(dataset.Row{
			opts.GroupColumn: full.Get(i, opts.GroupColumn),
			totalCol:         full.Get(i, totalCol),
		})
	}
	return ds
}

func writeSheet(f *excelize.File, sheet string, ds *dataset.Dataset) error {
	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write header", err)
	}
	for i, row := range ds.Rows {
		cells := make([]any, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = row[col]
		}
		addr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write row", err)
		}
	}
	return nil
}

func styleSummary(f *excelize.File, ds *dataset.Dataset, groups int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create header style", err)
	}

	lastCol, _ := excelize.ColumnNumberToName(len(ds.Columns))
	if err := f.SetCellStyle(summarySheet, "A1", lastCol+"1", bold); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to style header", err)
	}

	for i, col := range ds.Columns {
		width := float64(minColumnWidth)
		if w := float64(len(col) + 2); w > width {
			width = w
		}
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(summarySheet, name, name, width); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to size column", err)
		}
	}

	// Groups arrive sorted by descending total, so row 2 is the top group
	if groups > 0 {
		fill, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1},
		})
		if err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to create highlight style", err)
		}
		if err := f.SetCellStyle(summarySheet, "A2", lastCol+"2", fill); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to highlight top row", err)
		}
	}
	return nil
}
