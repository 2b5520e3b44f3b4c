package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for every file and directory the tools
// read or write. All locations hang off one base directory.
type Paths struct {
	BaseDir    string
	DataDir    string
	ReportsDir string
	ChartsDir  string
	CacheDir   string
	LogsDir    string

	// Well-known flat files
	TasksFile     string
	ContactsFile  string
	FavoritesFile string
	HistoryDir    string
}

// NewPaths builds the path set rooted at baseDir. An empty baseDir resolves
// to "taskninja" under the user cache-friendly current working directory.
func NewPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
		baseDir = filepath.Join(wd, "taskninja")
	}

	p := &Paths{
		BaseDir:    baseDir,
		DataDir:    filepath.Join(baseDir, "data"),
		ReportsDir: filepath.Join(baseDir, "reports"),
		ChartsDir:  filepath.Join(baseDir, "charts"),
		CacheDir:   filepath.Join(baseDir, "cache"),
		LogsDir:    filepath.Join(baseDir, "logs"),
	}
	p.TasksFile = filepath.Join(p.DataDir, "tasks.json")
	p.ContactsFile = filepath.Join(p.DataDir, "contacts.json")
	p.FavoritesFile = filepath.Join(p.DataDir, "favorite_pairs.json")
	p.HistoryDir = filepath.Join(p.DataDir, "history")
	return p, nil
}

// EnsureDirectories creates every directory the application needs.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		p.BaseDir,
		p.DataDir,
		p.ReportsDir,
		p.ChartsDir,
		p.CacheDir,
		p.LogsDir,
		p.HistoryDir,
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataPath returns the path of a file inside the data directory.
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetReportPath returns the path of a file inside the reports directory.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetChartPath returns the path of a file inside the charts directory.
func (p *Paths) GetChartPath(filename string) string {
	return filepath.Join(p.ChartsDir, filename)
}

// GetCachePath returns the path of a file inside the cache directory.
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetLogPath returns the path of a file inside the logs directory.
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetHistoryPath returns the path of a file inside the history directory.
func (p *Paths) GetHistoryPath(filename string) string {
	return filepath.Join(p.HistoryDir, filename)
}

// FileExists reports whether the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
