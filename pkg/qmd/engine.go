// Package qmd is the embeddable facade wiring internal/store,
// internal/chunk, internal/embed, internal/llmhost and internal/search
// into the operations the CLI exposes (section 6 of the external
// interfaces contract): search, vsearch, query, get, multi-get,
// collection/context management, embed, update, status, cleanup and
// provider selection.
package qmd

import (
	"fmt"
	"log/slog"

	"github.com/qmd-engine/qmd/internal/config"
	"github.com/qmd-engine/qmd/internal/embed"
	"github.com/qmd-engine/qmd/internal/llmhost"
	"github.com/qmd-engine/qmd/internal/search"
	"github.com/qmd-engine/qmd/internal/store"
)

// Engine owns one index's store, the active embedding provider, the
// shared LLM host, and the hybrid search pipeline built on top of them.
type Engine struct {
	Config   *config.Config
	Store    *store.Store
	Host     *llmhost.Host
	embedder embed.Embedder // active provider; nil when misconfigured/unavailable
}

// Open opens (creating if absent) the index at cfg.Paths.IndexPath and
// constructs the active embedding provider and LLM host. A provider
// construction failure is logged and leaves the engine's embedder nil
// rather than failing Open -- only config parsing and database-open
// errors are fatal at startup (7. ERROR HANDLING DESIGN).
func Open(cfg *config.Config) (*Engine, error) {
	s, err := store.Open(cfg.Paths.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	e := &Engine{
		Config: cfg,
		Store:  s,
		Host:   llmhost.New(llmhost.Config(cfg.LLMHost)),
	}

	if embedder, embedErr := embed.New(cfg.Embeddings); embedErr != nil {
		slog.Warn("embedding provider unavailable", slog.String("error", embedErr.Error()))
	} else {
		e.embedder = embedder
	}

	if err := e.syncActiveProviderSetting(); err != nil {
		_ = s.Close()
		return nil, err
	}

	return e, nil
}

// Close releases the engine's store and LLM host resources.
func (e *Engine) Close() error {
	e.Host.Close()
	if e.embedder != nil {
		_ = e.embedder.Close()
	}
	return e.Store.Close()
}

// Embedder returns the active embedding provider, or nil if none is
// configured/available.
func (e *Engine) Embedder() embed.Embedder {
	return e.embedder
}

// syncActiveProviderSetting persists the configured provider/model pair
// to settings on first open, so status() and vsearch's default
// namespace resolve without requiring a prior `provider set` call.
func (e *Engine) syncActiveProviderSetting() error {
	if _, ok, err := e.Store.GetSetting("embedding_provider"); err != nil {
		return err
	} else if ok {
		return nil
	}
	if err := e.Store.SetSetting("embedding_provider", e.Config.Embeddings.Provider); err != nil {
		return err
	}
	return e.Store.SetSetting("embedding_model", e.Config.Embeddings.Model)
}

// pipeline builds a hybrid search Pipeline wired to the engine's current
// store, embedder, and LLM-host-backed expander/reranker. Built fresh
// per call since the active embedder/model pair can change between
// calls (provider set).
func (e *Engine) pipeline() *search.Pipeline {
	var expander search.Expander
	var reranker search.Reranker = search.NoOpReranker{}

	if e.Host != nil {
		expander = search.NewHostExpander(e.Host, e.Store, e.modelKey())
		if e.Config.LLMHost.RerankEndpoint != "" {
			reranker = search.NewHostReranker(e.Host, e.Store, e.modelKey())
		}
	}

	return &search.Pipeline{
		Store:    e.Store,
		Embedder: e.embedder,
		Expander: expander,
		Reranker: reranker,
		Fusion:   e.Config.Fusion,
	}
}

// modelKey identifies the active provider/model pair for LLM cache
// namespacing (distinct from the embedding vector namespace).
func (e *Engine) modelKey() string {
	if e.embedder != nil {
		return e.embedder.Name() + "/" + e.embedder.ModelID()
	}
	return "default"
}
