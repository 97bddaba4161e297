package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// openaiKnownDimensions maps well-known OpenAI-compatible model ids to their
// embedding dimension, avoiding a round trip for the common case.
var openaiKnownDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIConfig configures an OpenAI-compatible embeddings endpoint.
type OpenAIConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int // 0 = look up openaiKnownDimensions, else auto-detect
	BatchSize  int
	MaxRetries int
	Timeout    time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible `/embeddings` endpoint.
type OpenAIEmbedder struct {
	client *http.Client
	config OpenAIConfig

	mu   sync.RWMutex
	dims int
}

var _ Embedder = (*OpenAIEmbedder)(nil)

func NewOpenAIEmbedder(cfg OpenAIConfig) (*OpenAIEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai embedding provider requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("openai embedding provider requires a model id")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	dims := cfg.Dimensions
	if dims <= 0 {
		dims = openaiKnownDimensions[cfg.Model]
	}

	return &OpenAIEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		dims:   dims,
	}, nil
}

func (e *OpenAIEmbedder) Name() string    { return "openai" }
func (e *OpenAIEmbedder) ModelID() string { return e.config.Model }

func (e *OpenAIEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

func (e *OpenAIEmbedder) HasTokenizer() bool { return true }

// OpenAI's embeddings endpoint takes raw input with no prompt formatting.
func (e *OpenAIEmbedder) FormatQuery(text string) string    { return text }
func (e *OpenAIEmbedder) FormatDocument(text string) string { return text }

type openaiEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text}, task)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	size := batchSize(e.config.BatchSize)
	results := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.doEmbedWithRetry(ctx, texts[start:end])
		if err != nil {
			return nil, &ProviderError{Provider: e.Name(), Err: err}
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (e *OpenAIEmbedder) doEmbedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		vectors, retryAfter, err := e.doEmbed(ctx, texts)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if retryAfter <= 0 {
			return nil, err
		}
		if attempt >= e.config.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryAfter):
		}
	}
	return nil, lastErr
}

// doEmbed returns a positive retryAfter when the caller should retry the
// request (HTTP 429), zero otherwise.
func (e *OpenAIEmbedder) doEmbed(ctx context.Context, texts []string) ([][]float32, time.Duration, error) {
	body, err := json.Marshal(openaiEmbedRequest{Model: e.config.Model, Input: texts})
	if err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.config.APIKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, retryAfterDuration(resp.Header.Get("Retry-After")), fmt.Errorf("rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("openai embeddings returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result openaiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decoding openai embeddings response: %w", err)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			continue
		}
		vectors[item.Index] = item.Embedding
	}

	if len(vectors) > 0 && len(vectors[0]) > 0 {
		e.mu.Lock()
		e.dims = len(vectors[0])
		e.mu.Unlock()
	}

	return vectors, 0, nil
}

// retryAfterDuration parses a Retry-After header (seconds form), falling
// back to a 1s default when absent or unparseable. The result is always
// positive so a 429 stays retryable; "0" (or less) means retry at once.
func retryAfterDuration(header string) time.Duration {
	if header == "" {
		return time.Second
	}
	if secs, err := strconv.Atoi(header); err == nil {
		if secs <= 0 {
			return time.Nanosecond
		}
		return time.Duration(secs) * time.Second
	}
	return time.Second
}

func (e *OpenAIEmbedder) Close() error { return nil }
