package llmhost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
)

type rerankRequest struct {
	Query    string `json:"query"`
	Document string `json:"document"`
}

// rerankResponse carries the cross-encoder's yes/no judgement. LogprobYes is
// the log-probability the model assigned the "yes" token; Text is a
// fallback when the host only exposes a text response, scored by whether
// it starts with "yes" or "no".
type rerankResponse struct {
	LogprobYes *float64 `json:"logprob_yes"`
	Text       string   `json:"text"`
}

// Score returns a single (query, document) relevance judgement in [0,1].
// score = p_yes, read directly from the model's yes-token log-probability
// when the host exposes it; otherwise 1 if the text response starts with
// "yes", 0 if it starts with "no", and 0.5 for anything else.
func (h *Host) Score(ctx context.Context, query, document string) (float64, error) {
	client, release, err := h.Acquire(ctx, SlotReranker)
	if err != nil {
		return 0, err
	}
	defer release()

	body, err := json.Marshal(rerankRequest{Query: query, Document: document})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.RerankEndpoint+"/rerank-score", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("reranker returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result rerankResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("decoding reranker response: %w", err)
	}

	if result.LogprobYes != nil {
		return logprobToProbability(*result.LogprobYes), nil
	}
	return textFallbackScore(result.Text), nil
}

func logprobToProbability(logprob float64) float64 {
	if logprob > 0 {
		return 1
	}
	p := math.Exp(logprob)
	if p > 1 {
		return 1
	}
	return p
}

func textFallbackScore(text string) float64 {
	trimmed := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.HasPrefix(trimmed, "yes"):
		return 1
	case strings.HasPrefix(trimmed, "no"):
		return 0
	default:
		return 0.5
	}
}
