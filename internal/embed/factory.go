package embed

import (
	"fmt"

	"github.com/qmd-engine/qmd/internal/config"
)

// New constructs the Embedder named by cfg.Provider/cfg.Model. Misconfiguration
// (missing API key, unknown provider) fails here, at construction time,
// rather than surfacing as a transient per-call error later.
func New(cfg config.EmbeddingsConfig) (Embedder, error) {
	inner, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}

func newProvider(cfg config.EmbeddingsConfig) (Embedder, error) {
	switch cfg.Provider {
	case "local":
		return NewLocalEmbedder(LocalConfig{
			Endpoint:  cfg.LocalEndpoint,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		}), nil

	case "openai":
		return NewOpenAIEmbedder(OpenAIConfig{
			BaseURL:   cfg.OpenAIBaseURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		})

	case "gemini":
		return NewGeminiEmbedder(GeminiConfig{
			APIKey:    cfg.GeminiAPIKey,
			Model:     cfg.Model,
			BatchSize: cfg.BatchSize,
		})

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// NewWithOverride builds a one-off Embedder for a temporary provider/model
// override without mutating any shared singleton. base supplies endpoint and
// API key defaults for the overridden provider; provider/model replace its
// selection.
func NewWithOverride(base config.EmbeddingsConfig, provider, model string) (Embedder, error) {
	override := base
	override.Provider = provider
	override.Model = model
	return New(override)
}
