package aggregate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"taskninja/internal/dataset"
	apperrors "taskninja/internal/errors"
)

// Sheet pairs a worksheet name with its record set.
type Sheet struct {
	Name string
	Data *dataset.Dataset
}

// WriteWorkbook writes one worksheet per sheet into a single Excel file,
// overwriting the destination.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return apperrors.InvalidInput("workbook needs at least one sheet")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create output directory", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := sheet.Name
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "failed to name sheet", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to create sheet %s", name), err)
			}
		}

		header := make([]any, len(sheet.Data.Columns))
		for j, col := range sheet.Data.Columns {
			header[j] = col
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return apperrors.Wrap(apperrors.CodeIO, "failed to write header", err)
		}

		for r, row := range sheet.Data.Rows {
			cells := make([]any, len(sheet.Data.Columns))
			for c, col := range sheet.Data.Columns {
				cells[c] = row[col]
			}
			addr, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, addr, &cells); err != nil {
				return apperrors.Wrap(apperrors.CodeIO, "failed to write row", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to save %s", path), err)
	}

	slog.Info("wrote workbook", slog.String("path", path), slog.Int("sheets", len(sheets)))
	return nil
}
