package logging

import (
	"os"
	"path/filepath"
)

// cacheDir returns ${XDG_CACHE_HOME:-~/.cache}/qmd, the root of all
// qmd on-disk state (section 6: Filesystem).
func cacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "qmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "qmd")
	}
	return filepath.Join(home, ".cache", "qmd")
}

// DefaultLogDir returns the default log directory, ${XDG_CACHE_HOME:-~/.cache}/qmd/logs.
func DefaultLogDir() string {
	return filepath.Join(cacheDir(), "logs")
}

// DefaultLogPath returns the default engine log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "qmd.log")
}

// DefaultDataDir returns the directory holding the index database and model cache.
func DefaultDataDir() string {
	return cacheDir()
}

// DefaultIndexPath returns the path to the SQLite index database
// (${XDG_CACHE_HOME:-~/.cache}/qmd/index.sqlite).
func DefaultIndexPath() string {
	return filepath.Join(cacheDir(), "index.sqlite")
}

// DefaultModelsDir returns the model cache directory
// (${XDG_CACHE_HOME:-~/.cache}/qmd/models/).
func DefaultModelsDir() string {
	return filepath.Join(cacheDir(), "models")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
