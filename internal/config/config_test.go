package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, "local", cfg.Embeddings.Provider)
	assert.Equal(t, 60, cfg.Fusion.RRFConstant)
	assert.Equal(t, 2, cfg.Fusion.ExpansionFanout)
	assert.Equal(t, 2, cfg.Fusion.OriginalWeight)
	assert.Equal(t, 30, cfg.Fusion.FusionKeepTop)
	assert.Equal(t, 800, cfg.Chunk.TokenTarget)
	assert.Equal(t, 3200, cfg.Chunk.CharTarget)
	assert.InDelta(t, 0.15, cfg.Chunk.OverlapFraction, 0.0001)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultPathsRespectXDGCacheHome(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/qmd-cache-test")

	cfg := NewConfig()
	assert.Equal(t, "/tmp/qmd-cache-test/qmd/index.sqlite", cfg.Paths.IndexPath)
	assert.Equal(t, "/tmp/qmd-cache-test/qmd/models", cfg.Paths.ModelsDir)
	assert.Equal(t, "/tmp/qmd-cache-test/qmd/daemon.sock", cfg.Paths.DaemonSock)
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := NewConfig()
	cfg.Embeddings.Provider = "carrier-pigeon"
	assert.Error(t, cfg.Validate())
}

func TestValidateRequiresOpenAIKey(t *testing.T) {
	cfg := NewConfig()
	cfg.Embeddings.Provider = "openai"
	assert.Error(t, cfg.Validate())

	cfg.Embeddings.OpenAIAPIKey = "sk-test"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRequiresGeminiKey(t *testing.T) {
	cfg := NewConfig()
	cfg.Embeddings.Provider = "gemini"
	assert.Error(t, cfg.Validate())

	cfg.Embeddings.GeminiAPIKey = "gm-test"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadChunkOverlap(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunk.OverlapFraction = 1.5
	assert.Error(t, cfg.Validate())

	cfg.Chunk.OverlapFraction = -0.1
	assert.Error(t, cfg.Validate())
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("QMD_EMBEDDING_PROVIDER", "openai")
	t.Setenv("QMD_EMBEDDING_MODEL", "text-embedding-3-large")
	t.Setenv("OPENAI_API_KEY", "sk-env-test")
	t.Setenv("QMD_RRF_CONSTANT", "42")

	cfg := NewConfig()
	cfg.applyEnvOverrides()

	assert.Equal(t, "openai", cfg.Embeddings.Provider)
	assert.Equal(t, "text-embedding-3-large", cfg.Embeddings.Model)
	assert.Equal(t, "sk-env-test", cfg.Embeddings.OpenAIAPIKey)
	assert.Equal(t, 42, cfg.Fusion.RRFConstant)
}

func TestLoadWithUserConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_CACHE_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "qmd")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := "version: 1\nembeddings:\n  provider: local\n  model: custom-model\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "custom-model", cfg.Embeddings.Model)
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := NewConfig()
	cfg.Embeddings.Model = "round-trip-model"
	require.NoError(t, cfg.WriteYAML(path))

	loaded := NewConfig()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, loaded.loadYAML(path))
	assert.Equal(t, "round-trip-model", loaded.Embeddings.Model)
	assert.NotEmpty(t, data)
}
