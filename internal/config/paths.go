package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains the application paths. This is the single source of
// truth for file paths in the application.
type Paths struct {
	ExecutableDir string
	LogsDir       string
}

// GetPaths returns the application paths relative to the executable
// location, never the current working directory. The tool ships as a
// single binary dropped next to the user's data, so everything it
// creates stays beside it.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	exeDir := filepath.Dir(exe)

	return &Paths{
		ExecutableDir: exeDir,
		LogsDir:       filepath.Join(exeDir, "logs"),
	}, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// GetLogPath returns the full path for a log file name
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// BuildOutputPath derives the report path for an input export:
// "<input stem> - report.xlsx" in the same directory as the input.
func BuildOutputPath(inputPath string) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+" - report.xlsx")
}
