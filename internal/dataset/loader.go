package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "taskninja/internal/errors"
)

// Load reads a record set fully into memory, dispatching on the file
// extension (.csv, .xlsx, .json). A missing file yields FILE_NOT_FOUND;
// unparsable content or an unsupported extension yields FILE_FORMAT.
func Load(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(path, err)
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot stat %s", path), err)
	}

	var (
		ds  *Dataset
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds, err = loadCSV(path)
	case ".xlsx", ".xls":
		ds, err = loadExcel(path)
	case ".json":
		ds, err = loadJSON(path)
	default:
		return nil, apperrors.FileFormat(path, fmt.Errorf("unsupported extension %q", filepath.Ext(path)))
	}
	if err != nil {
		return nil, err
	}

	slog.Info("loaded dataset",
		slog.String("path", path),
		slog.Int("rows", len(ds.Rows)),
		slog.Int("columns", len(ds.Columns)))
	return ds, nil
}

func loadCSV(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", path), err)
	}
	// Tolerate a UTF-8 BOM, commonly present in Excel-exported CSVs
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, apperrors.FileFormat(path, err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}
	ds := New(columns...)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.FileFormat(path, err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = normalizeCell(record[i])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func loadExcel(path string) (*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.FileFormat(path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return New(), nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.FileFormat(path, err)
	}
	if len(rows) == 0 {
		return New(), nil
	}

	columns := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		columns[i] = strings.TrimSpace(h)
	}
	ds := New(columns...)

	for _, raw := range rows[1:] {
		row := make(Row, len(columns))
		empty := true
		for i, col := range columns {
			if i < len(raw) {
				cell := normalizeCell(raw[i])
				row[col] = cell
				if cell != "" {
					empty = false
				}
			}
		}
		// Excel sheets often carry trailing blank rows
		if empty {
			continue
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func loadJSON(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", path), err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, apperrors.FileFormat(path, fmt.Errorf("expected an array of flat objects: %w", err))
	}

	// First-seen order across records, so all keys appear even when the
	// first record is sparse.
	var columns []string
	seen := map[string]struct{}{}
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				columns = append(columns, k)
			}
		}
	}

	ds := New(columns...)
	for _, rec := range records {
		row := make(Row, len(columns))
		for _, col := range columns {
			if v, ok := rec[col]; ok {
				row[col] = normalizeCell(stringifyJSON(v))
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds, nil
}

func stringifyJSON(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
