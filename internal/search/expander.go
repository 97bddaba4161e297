package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/qmd-engine/qmd/internal/llmhost"
	"github.com/qmd-engine/qmd/internal/store"
)

const (
	expandCachePurpose = "expand"
	expandMaxTokens    = 128
)

// Expander generates alternate phrasings of a query for the hybrid
// pipeline's fan-out (4.G). Expand returns up to fanout variants, or an
// empty slice when expansion is unavailable -- callers fall back to the
// original query alone.
type Expander interface {
	Expand(ctx context.Context, query string, fanout int) ([]string, error)
}

// HostExpander generates query variants through the shared llmhost.Host's
// generator slot, caching the raw response per (model, query) so repeat
// searches skip the model call.
type HostExpander struct {
	host  *llmhost.Host
	store *store.Store
	model string
}

// NewHostExpander builds an Expander backed by host, caching under model's
// name.
func NewHostExpander(host *llmhost.Host, s *store.Store, model string) *HostExpander {
	return &HostExpander{host: host, store: s, model: model}
}

// Expand asks the generator for up to fanout alternate phrasings of
// query, one per line, and returns them in the order the model produced
// them. A transient generator failure yields (nil, nil): the caller
// treats this exactly like an empty expansion rather than aborting the
// search.
func (e *HostExpander) Expand(ctx context.Context, query string, fanout int) ([]string, error) {
	if e.host == nil || fanout <= 0 {
		return nil, nil
	}

	if cached, ok, err := e.store.GetLLMCache(e.model, expandCachePurpose, query); err != nil {
		return nil, err
	} else if ok {
		return parseExpansionLines(cached, fanout), nil
	}

	prompt := fmt.Sprintf(
		"Rewrite the following search query as %d alternate phrasings that preserve its meaning. "+
			"Reply with exactly one phrasing per line and nothing else.\n\nQuery: %s", fanout, query)

	text, err := e.host.Generate(ctx, prompt, expandMaxTokens)
	if err != nil {
		return nil, nil // transient host failure: fall back to the original query only
	}

	if putErr := e.store.PutLLMCache(e.model, expandCachePurpose, query, text); putErr != nil {
		return nil, putErr
	}
	return parseExpansionLines(text, fanout), nil
}

func parseExpansionLines(text string, fanout int) []string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	variants := make([]string, 0, fanout)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789. )")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		variants = append(variants, line)
		if len(variants) == fanout {
			break
		}
	}
	return variants
}
