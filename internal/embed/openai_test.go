package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIEmbedderRequiresAPIKey(t *testing.T) {
	_, err := NewOpenAIEmbedder(OpenAIConfig{Model: "text-embedding-3-small"})
	require.Error(t, err)
}

func TestNewOpenAIEmbedderLooksUpKnownDimensions(t *testing.T) {
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "sk-test", Model: "text-embedding-3-large"})
	require.NoError(t, err)
	assert.Equal(t, 3072, e.Dimensions())
}

func TestOpenAIEmbedderDoesNotFormatInput(t *testing.T) {
	e, err := NewOpenAIEmbedder(OpenAIConfig{APIKey: "sk-test", Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "raw query text", e.FormatQuery("raw query text"))
}

func TestOpenAIEmbedderEmbedBatchPostsToEmbeddingsEndpoint(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req openaiEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := openaiEmbedResponse{}
		for i := range req.Input {
			resp.Data = append(resp.Data, struct {
				Embedding []float32 `json:"embedding"`
				Index     int       `json:"index"`
			}{Embedding: []float32{0.1, 0.2}, Index: i})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "m"})
	require.NoError(t, err)

	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b"}, TaskDocument)
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, "Bearer sk-test", gotAuth)
}

func TestOpenAIEmbedderRetriesOn429ThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(openaiEmbedResponse{Data: []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}{{Embedding: []float32{1, 2}, Index: 0}}})
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "m", MaxRetries: 3})
	require.NoError(t, err)

	vectors, err := e.Embed(context.Background(), "x", TaskQuery)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2}, vectors)
	assert.Equal(t, 2, attempts)
}

func TestOpenAIEmbedderFailsAfterExhaustingRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, APIKey: "sk-test", Model: "m", MaxRetries: 2})
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "x", TaskQuery)
	require.Error(t, err)
	var perr *ProviderError
	assert.ErrorAs(t, err, &perr)
}
