package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "taskninja/internal/errors"
)

// WriteOptions configures serialization behavior.
type WriteOptions struct {
	// BOM prefixes CSV output with a UTF-8 BOM for Excel compatibility.
	BOM bool
	// Sheet names the worksheet for Excel output. Defaults to "Sheet1".
	Sheet string
}

// Write serializes the dataset to path, dispatching on the extension.
// The destination is overwritten unconditionally.
func Write(ds *Dataset, path string, opts WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create output directory", err)
	}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = writeCSV(ds, path, opts)
	case ".xlsx":
		err = writeExcel(ds, path, opts)
	case ".json":
		err = writeJSON(ds, path)
	default:
		return apperrors.FileFormat(path, fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
	if err != nil {
		return err
	}

	slog.Info("wrote dataset",
		slog.String("path", path),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("columns", len(ds.Columns)))
	return nil
}

func writeCSV(ds *Dataset, path string, opts WriteOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to create %s", path), err)
	}
	defer file.Close()

	if opts.BOM {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write BOM", err)
		}
	}

	w := csv.NewWriter(file)
	if err := w.Write(ds.Columns); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write header", err)
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write record", err)
		}
	}
	w.Flush()
	return w.Error()
}

func writeExcel(ds *Dataset, path string, opts WriteOptions) error {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = "Sheet1"
	}

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to name sheet", err)
		}
	}

	header := make([]any, len(ds.Columns))
	for i, col := range ds.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write header row", err)
	}

	for i, row := range ds.Rows {
		cells := make([]any, len(ds.Columns))
		for j, col := range ds.Columns {
			cells[j] = cellValue(row[col])
		}
		addr, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write data row", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to save %s", path), err)
	}
	return nil
}

// cellValue maps numeric-looking strings to numbers so Excel cells get a
// numeric type instead of text.
func cellValue(raw string) any {
	if raw == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == raw {
		return f
	}
	return raw
}

func writeJSON(ds *Dataset, path string) error {
	records := make([]map[string]string, 0, len(ds.Rows))
	for _, row := range ds.Rows {
		rec := make(map[string]string, len(ds.Columns))
		for _, col := range ds.Columns {
			rec[col] = row[col]
		}
		records = append(records, rec)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode JSON", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}
