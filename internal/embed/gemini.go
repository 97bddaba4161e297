package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const geminiDefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiConfig configures the Gemini batch-embed-contents provider.
type GeminiConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Dimensions int
	BatchSize  int
	MaxRetries int
	Timeout    time.Duration
}

// GeminiEmbedder calls Gemini's batchEmbedContents endpoint.
type GeminiEmbedder struct {
	client *http.Client
	config GeminiConfig

	mu   sync.RWMutex
	dims int
}

var _ Embedder = (*GeminiEmbedder)(nil)

func NewGeminiEmbedder(cfg GeminiConfig) (*GeminiEmbedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini embedding provider requires an API key")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("gemini embedding provider requires a model id")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = geminiDefaultBaseURL
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
	return &GeminiEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		config: cfg,
		dims:   cfg.Dimensions,
	}, nil
}

func (e *GeminiEmbedder) Name() string    { return "gemini" }
func (e *GeminiEmbedder) ModelID() string { return e.config.Model }

func (e *GeminiEmbedder) Dimensions() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dims
}

func (e *GeminiEmbedder) HasTokenizer() bool { return false }

func (e *GeminiEmbedder) FormatQuery(text string) string    { return text }
func (e *GeminiEmbedder) FormatDocument(text string) string { return text }

func (e *GeminiEmbedder) taskType(task TaskType) string {
	if task == TaskQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}

type geminiContentPart struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiBatchRequest struct {
	Requests []geminiEmbedRequest `json:"requests"`
}

type geminiEmbedRequest struct {
	Model    string            `json:"model"`
	Content  geminiContentPart `json:"content"`
	TaskType string            `json:"taskType"`
}

type geminiBatchResponse struct {
	Embeddings []geminiEmbeddingValue `json:"embeddings"`
}

type geminiEmbeddingValue struct {
	Values []float32 `json:"values"`
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string, task TaskType) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text}, task)
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	return vectors[0], nil
}

func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
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
		vectors, err := e.doEmbedWithRetry(ctx, texts[start:end], task)
		if err != nil {
			return nil, &ProviderError{Provider: e.Name(), Err: err}
		}
		results = append(results, vectors...)
	}
	return results, nil
}

func (e *GeminiEmbedder) doEmbedWithRetry(ctx context.Context, texts []string, task TaskType) ([][]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		vectors, retryAfter, err := e.doEmbed(ctx, texts, task)
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

func (e *GeminiEmbedder) doEmbed(ctx context.Context, texts []string, task TaskType) ([][]float32, time.Duration, error) {
	modelPath := "models/" + e.config.Model
	reqs := make([]geminiEmbedRequest, len(texts))
	for i, t := range texts {
		reqs[i] = geminiEmbedRequest{
			Model:    modelPath,
			Content:  geminiContentPart{Parts: []geminiPart{{Text: t}}},
			TaskType: e.taskType(task),
		}
	}

	body, err := json.Marshal(geminiBatchRequest{Requests: reqs})
	if err != nil {
		return nil, 0, err
	}

	url := fmt.Sprintf("%s/%s:batchEmbedContents?key=%s", e.config.BaseURL, modelPath, e.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")

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
		return nil, 0, fmt.Errorf("gemini batchEmbedContents returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result geminiBatchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, 0, fmt.Errorf("decoding gemini embeddings response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, 0, fmt.Errorf("gemini returned %d vectors for %d inputs", len(result.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, v := range result.Embeddings {
		vectors[i] = v.Values
	}

	if len(vectors) > 0 && len(vectors[0]) > 0 {
		e.mu.Lock()
		e.dims = len(vectors[0])
		e.mu.Unlock()
	}

	return vectors, 0, nil
}

func (e *GeminiEmbedder) Close() error { return nil }
