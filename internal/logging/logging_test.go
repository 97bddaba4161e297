package logging

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, parseLevel("info"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warn"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}

func TestLevelFromStringMatchesParseLevel(t *testing.T) {
	assert.Equal(t, parseLevel("debug"), LevelFromString("debug"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, 10, cfg.MaxSizeMB)
	assert.Equal(t, 5, cfg.MaxFiles)
	assert.True(t, cfg.WriteToStderr)
	assert.Equal(t, DefaultLogPath(), cfg.FilePath)
}

func TestDebugConfigOverridesLevel(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, "debug", cfg.Level)
}

func TestSetupWritesJSONLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "qmd.log")

	cfg := Config{
		Level:         "debug",
		FilePath:      logPath,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	}

	logger, cleanup, err := Setup(cfg)
	require.NoError(t, err)
	require.NotNil(t, logger)
	defer cleanup()

	logger.Info("index ready", "documents", 12)
	cleanup()

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "index ready", entry["msg"])
	assert.Equal(t, float64(12), entry["documents"])
}

func TestSetupCreatesMissingDirectory(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "nested", "logs", "qmd.log")

	_, cleanup, err := Setup(Config{
		Level:    "info",
		FilePath: nested,
	})
	require.NoError(t, err)
	defer cleanup()

	_, statErr := os.Stat(nested)
	assert.NoError(t, statErr)
}

func TestDefaultPathsAreRootedUnderCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/qmd-xdg-test")

	assert.Equal(t, "/tmp/qmd-xdg-test/qmd", cacheDir())
	assert.Equal(t, "/tmp/qmd-xdg-test/qmd/logs", DefaultLogDir())
	assert.Equal(t, "/tmp/qmd-xdg-test/qmd/logs/qmd.log", DefaultLogPath())
	assert.Equal(t, "/tmp/qmd-xdg-test/qmd/index.sqlite", DefaultIndexPath())
	assert.Equal(t, "/tmp/qmd-xdg-test/qmd/models", DefaultModelsDir())
}

func TestEnsureLogDirCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	require.NoError(t, EnsureLogDir())

	info, err := os.Stat(DefaultLogDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
