// Package pdftool merges and inspects PDF files.
package pdftool

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	apperrors "taskninja/internal/errors"
)

// FileInfo describes one input PDF.
type FileInfo struct {
	Path  string `json:"path"`
	Pages int    `json:"pages"`
	Valid bool   `json:"valid"`
}

// Inspect validates a PDF and counts its pages.
func Inspect(path string) (FileInfo, error) {
	if _, err := os.Stat(path); err != nil {
		return FileInfo{}, apperrors.FileNotFound(path, err)
	}
	info := FileInfo{Path: path}
	if err := api.ValidateFile(path, nil); err != nil {
		return info, apperrors.FileFormat(path, err)
	}
	info.Valid = true
	pages, err := api.PageCountFile(path)
	if err != nil {
		return info, apperrors.FileFormat(path, err)
	}
	info.Pages = pages
	return info, nil
}

// Merge concatenates the inputs into outPath in the given order. Inputs are
// validated first so one bad file fails the whole merge up front.
func Merge(inputs []string, outPath string) ([]FileInfo, error) {
	if len(inputs) < 2 {
		return nil, apperrors.InvalidInput("merge needs at least two input files")
	}
	if !strings.EqualFold(filepath.Ext(outPath), ".pdf") {
		return nil, apperrors.InvalidInput(fmt.Sprintf("output %q must end in .pdf", outPath))
	}

	infos := make([]FileInfo, 0, len(inputs))
	for _, in := range inputs {
		info, err := Inspect(in)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to create output directory", err)
	}
	if err := api.MergeCreateFile(inputs, outPath, false, nil); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to merge into %s", outPath), err)
	}

	total := 0
	for _, info := range infos {
		total += info.Pages
	}
	slog.Info("merged PDFs",
		slog.Int("inputs", len(inputs)),
		slog.Int("pages", total),
		slog.String("out", outPath))
	return infos, nil
}

// CollectDir returns every PDF directly inside dir, sorted by name. Handy
// for merging a scan folder without typing each file.
func CollectDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(dir, err)
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", dir), err)
	}
	var pdfs []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		pdfs = append(pdfs, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(pdfs)
	return pdfs, nil
}
