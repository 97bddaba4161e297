package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// LocalConfig configures the local GGUF embedding provider.
type LocalConfig struct {
	Endpoint   string // base URL of the local embedding server
	Model      string
	Dimensions int // 0 = auto-detect from first response
	BatchSize  int
	Timeout    time.Duration
}

// LocalEmbedder talks to a locally-running GGUF embedding server over HTTP.
// Batches are sent sequentially: the local server is single-threaded model
// inference, so concurrent requests would only queue behind each other.
type LocalEmbedder struct {
	client *http.Client
	config LocalConfig

	mu   sync.RWMutex
	dims int
}

var _ Embedder = (*LocalEmbedder)(nil)

func NewLocalEmbedder(cfg LocalConfig) *LocalEmbedder {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	dims := cfg.Dimensions
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &LocalEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		dims:   dims,
	}
}

func (e *LocalEmbedder) Name() string    { return "local" }
func (e *LocalEmbedder) ModelID() string { return e.config.Model }

func (e *LocalEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

func (e *LocalEmbedder) HasTokenizer() bool { return false }

func (e *LocalEmbedder) FormatQuery(text string) string {
	return fmt.Sprintf("task: search result | query: %s", text)
}

func (e *LocalEmbedder) FormatDocument(text string) string {
	title := "none"
	if nl := strings.IndexByte(text, '\n'); nl > 0 {
		title = strings.TrimSpace(text[:nl])
	}
	return fmt.Sprintf("title: %s | text: %s", title, text)
}

func (e *LocalEmbedder) format(text string, task TaskType) string {
	if task == TaskQuery {
		return e.FormatQuery(text)
	}
	return e.FormatDocument(text)
}

type localEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type localEmbedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func (e *LocalEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text}, task)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}

func (e *LocalEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	formatted := make([]string, len(texts))
	for i, t := range texts {
		formatted[i] = e.format(t, task)
	}

	size := batchSize(e.config.BatchSize)
	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(formatted); start += size {
		end := start + size
		if end > len(formatted) {
			end = len(formatted)
		}
		vectors, err := e.doEmbed(ctx, formatted[start:end])
		if err != nil {
			return nil, &ProviderError{Provider: e.Name(), Err: err}
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (e *LocalEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(localEmbedRequest{Model: e.config.Model, Input: texts})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.Endpoint+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("local embedding server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result localEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding local embedding response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("local embedding server returned %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	if len(result.Embeddings) > 0 {
		e.mu.Lock()
		e.dims = len(result.Embeddings[0])
		e.mu.Unlock()
	}

	for i, v := range result.Embeddings {
		result.Embeddings[i] = normalizeVector(v)
	}
	return result.Embeddings, nil
}

func (e *LocalEmbedder) Close() error { return nil }
