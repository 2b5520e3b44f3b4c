// Package organizer sorts a directory's files into category subdirectories
// by extension, with a dry-run plan, an undo log, and a watch mode that
// files new arrivals as they land.
package organizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "taskninja/internal/errors"
)

const undoLogName = ".taskninja-undo.json"

// categories maps a destination folder to the extensions it collects.
// Anything unmatched goes to Other.
var categories = map[string][]string{
	"Images":       {".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".webp", ".ico"},
	"Documents":    {".pdf", ".doc", ".docx", ".txt", ".md", ".rtf", ".odt"},
	"Spreadsheets": {".xls", ".xlsx", ".csv", ".ods"},
	"Audio":        {".mp3", ".wav", ".flac", ".ogg", ".m4a"},
	"Video":        {".mp4", ".mkv", ".avi", ".mov", ".webm"},
	"Archives":     {".zip", ".tar", ".gz", ".rar", ".7z", ".bz2"},
	"Code":         {".go", ".py", ".js", ".ts", ".html", ".css", ".json", ".yaml", ".yml", ".sh"},
}

// LoadCategories replaces the mapping with one read from a JSON file of the
// shape {"Folder": [".ext", ...]}. Extensions are lowercased and given a
// leading dot if missing.
func LoadCategories(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.FileNotFound(path, err)
		}
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", path), err)
	}
	var custom map[string][]string
	if err := json.Unmarshal(data, &custom); err != nil {
		return apperrors.FileFormat(path, err)
	}
	if len(custom) == 0 {
		return apperrors.InvalidInput(fmt.Sprintf("%s defines no categories", path))
	}
	for category, exts := range custom {
		for i, e := range exts {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" && !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts[i] = e
		}
		custom[category] = exts
	}
	categories = custom
	return nil
}

// CategoryFor returns the destination folder for a filename.
func CategoryFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for category, exts := range categories {
		for _, e := range exts {
			if e == ext {
				return category
			}
		}
	}
	return "Other"
}

// Move is one planned or performed file move.
type Move struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Category string `json:"category"`
}

// Plan lists the moves organizing a directory would perform. Subdirectories,
// hidden files, and the undo log are left alone.
func Plan(dir string) ([]Move, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.FileNotFound(dir, err)
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("cannot read %s", dir), err)
	}

	var moves []Move
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		category := CategoryFor(entry.Name())
		from := filepath.Join(dir, entry.Name())
		to := resolveCollision(filepath.Join(dir, category, entry.Name()))
		moves = append(moves, Move{From: from, To: to, Category: category})
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].From < moves[j].From })
	return moves, nil
}

// resolveCollision appends " (n)" before the extension until the target
// path is free.
func resolveCollision(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// Execute performs the planned moves and writes an undo log into dir.
func Execute(dir string, moves []Move) ([]Move, error) {
	var done []Move
	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.To), 0755); err != nil {
			return done, apperrors.Wrap(apperrors.CodeIO, "failed to create category directory", err)
		}
		if err := os.Rename(m.From, m.To); err != nil {
			slog.Warn("skipping file",
				slog.String("file", m.From),
				slog.String("error", err.Error()))
			continue
		}
		done = append(done, m)
	}
	if len(done) > 0 {
		if err := writeUndoLog(dir, done); err != nil {
			return done, err
		}
	}
	slog.Info("organized directory", slog.String("dir", dir), slog.Int("moved", len(done)))
	return done, nil
}

// Organize plans and executes in one step.
func Organize(dir string) ([]Move, error) {
	moves, err := Plan(dir)
	if err != nil {
		return nil, err
	}
	return Execute(dir, moves)
}

func undoLogPath(dir string) string {
	return filepath.Join(dir, undoLogName)
}

func writeUndoLog(dir string, moves []Move) error {
	// New moves stack on top of whatever an earlier run left behind.
	existing, _ := readUndoLog(dir)
	all := append(existing, moves...)
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode undo log", err)
	}
	if err := os.WriteFile(undoLogPath(dir), data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write undo log", err)
	}
	return nil
}

func readUndoLog(dir string) ([]Move, error) {
	data, err := os.ReadFile(undoLogPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to read undo log", err)
	}
	var moves []Move
	if err := json.Unmarshal(data, &moves); err != nil {
		return nil, apperrors.FileFormat(undoLogPath(dir), err)
	}
	return moves, nil
}

// Undo reverses the moves in the undo log, newest first, then removes the
// log and any category directories left empty.
func Undo(dir string) (int, error) {
	moves, err := readUndoLog(dir)
	if err != nil {
		return 0, err
	}
	if len(moves) == 0 {
		return 0, nil
	}

	restored := 0
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		if err := os.Rename(m.To, m.From); err != nil {
			slog.Warn("cannot restore file",
				slog.String("file", m.To),
				slog.String("error", err.Error()))
			continue
		}
		restored++
	}
	if err := os.Remove(undoLogPath(dir)); err != nil && !os.IsNotExist(err) {
		return restored, apperrors.Wrap(apperrors.CodeIO, "failed to remove undo log", err)
	}
	for _, m := range moves {
		// Ignored when the directory still has files.
		_ = os.Remove(filepath.Dir(m.To))
	}
	return restored, nil
}

// Watch organizes dir once, then keeps filing new arrivals until ctx is
// canceled. settle is how long a new file must sit quiet before it is moved,
// so half-written downloads are not filed mid-copy.
func Watch(ctx context.Context, dir string, settle time.Duration) error {
	if settle <= 0 {
		return apperrors.InvalidInput("settle must be a positive duration")
	}
	if _, err := Organize(dir); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create watcher", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, fmt.Sprintf("failed to watch %s", dir), err)
	}
	slog.Info("watching directory", slog.String("dir", dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, ".") {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			pending[event.Name] = time.Now()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < settle {
					continue
				}
				delete(pending, path)
				category := CategoryFor(path)
				to := resolveCollision(filepath.Join(dir, category, filepath.Base(path)))
				if _, err := Execute(dir, []Move{{From: path, To: to, Category: category}}); err != nil {
					slog.Warn("failed to file new arrival",
						slog.String("file", path),
						slog.String("error", err.Error()))
				}
			}
		}
	}
}
