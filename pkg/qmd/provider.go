package qmd

import (
	"fmt"

	"github.com/qmd-engine/qmd/internal/embed"
)

// ProviderInfo reports the active embedding provider/model pair.
type ProviderInfo struct {
	Provider string
	Model    string
}

// Provider returns the active provider/model pair, from settings if
// present, otherwise the configured default.
func (e *Engine) Provider() (ProviderInfo, error) {
	provider, ok, err := e.Store.GetSetting("embedding_provider")
	if err != nil {
		return ProviderInfo{}, err
	}
	if !ok {
		provider = e.Config.Embeddings.Provider
	}
	model, ok, err := e.Store.GetSetting("embedding_model")
	if err != nil {
		return ProviderInfo{}, err
	}
	if !ok {
		model = e.Config.Embeddings.Model
	}
	return ProviderInfo{Provider: provider, Model: model}, nil
}

// ProviderSet switches the active provider/model pair, constructing a
// fresh provider instance and persisting the choice to settings. The
// previous embedder is closed. A temporary per-call override should use
// embed.NewWithOverride directly instead of mutating the engine.
func (e *Engine) ProviderSet(provider, model string) error {
	cfg := e.Config.Embeddings
	cfg.Provider = provider
	if model != "" {
		cfg.Model = model
	}

	newEmbedder, err := embed.New(cfg)
	if err != nil {
		return fmt.Errorf("construct provider %s: %w", provider, err)
	}

	if e.embedder != nil {
		_ = e.embedder.Close()
	}
	e.embedder = newEmbedder
	e.Config.Embeddings = cfg

	if err := e.Store.SetSetting("embedding_provider", provider); err != nil {
		return err
	}
	return e.Store.SetSetting("embedding_model", newEmbedder.ModelID())
}
