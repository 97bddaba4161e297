// Package llmhost manages the GGUF model instances (embedding, reranker,
// generator) a local qmd process talks to over HTTP, serializing calls per
// model and evicting idle contexts after a configured timeout.
package llmhost

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Slot names the three model roles qmd hosts per process.
type Slot string

const (
	SlotEmbedding Slot = "embedding"
	SlotReranker  Slot = "reranker"
	SlotGenerator Slot = "generator"
)

// Config configures the host's idle-eviction behavior and endpoints.
type Config struct {
	IdleTimeout    time.Duration
	RerankEndpoint string
	GenEndpoint    string
}

// slotState tracks one model role's lazily-created HTTP context. mu
// serializes calls against this slot: at most one outstanding call per
// model context (4.D concurrency contract).
type slotState struct {
	mu       sync.Mutex
	client   *http.Client
	lastUsed time.Time
	loaded   bool
}

// Host is the process-wide singleton managing model contexts. Zero value
// is not usable; construct with New.
type Host struct {
	cfg Config

	mu    sync.Mutex
	slots map[Slot]*slotState
}

// New creates a Host. Model contexts are created lazily on first Acquire.
func New(cfg Config) *Host {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 5 * time.Minute
	}
	return &Host{
		cfg:   cfg,
		slots: make(map[Slot]*slotState),
	}
}

func (h *Host) stateFor(slot Slot) *slotState {
	h.mu.Lock()
	defer h.mu.Unlock()
	st, ok := h.slots[slot]
	if !ok {
		st = &slotState{}
		h.slots[slot] = st
	}
	return st
}

// Acquire locks the named slot for the duration of one call and returns an
// HTTP client plus a release function. The release function is idempotent
// and must be deferred immediately so the slot releases on every exit path,
// including cancellation and panics recovered upstream. If the slot's
// context has been idle longer than IdleTimeout, it's rebuilt transparently
// (the ~1s reload penalty is paid by the server on its next request, not by
// this call directly).
func (h *Host) Acquire(ctx context.Context, slot Slot) (*http.Client, func(), error) {
	st := h.stateFor(slot)
	st.mu.Lock()

	now := time.Now()
	if st.loaded && now.Sub(st.lastUsed) > h.cfg.IdleTimeout {
		if st.client != nil {
			if t, ok := st.client.Transport.(*http.Transport); ok {
				t.CloseIdleConnections()
			}
		}
		st.loaded = false
	}

	if !st.loaded {
		st.client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     h.cfg.IdleTimeout,
			},
		}
		st.loaded = true
	}

	select {
	case <-ctx.Done():
		st.mu.Unlock()
		return nil, func() {}, ctx.Err()
	default:
	}

	client := st.client
	released := false
	release := func() {
		if released {
			return
		}
		released = true
		st.lastUsed = time.Now()
		st.mu.Unlock()
	}
	return client, release, nil
}

// Close releases idle connections for every slot. Called on process shutdown.
func (h *Host) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, st := range h.slots {
		st.mu.Lock()
		if st.client != nil {
			if t, ok := st.client.Transport.(*http.Transport); ok {
				t.CloseIdleConnections()
			}
		}
		st.loaded = false
		st.mu.Unlock()
	}
}
