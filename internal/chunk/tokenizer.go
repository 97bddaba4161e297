package chunk

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingCache   = map[string]*tiktoken.Tiktoken{}
	encodingCacheMu sync.RWMutex
)

// encodingForModel returns a cached tiktoken encoding for model, falling
// back to cl100k_base when the model isn't recognized by tiktoken-go.
func encodingForModel(model string) (*tiktoken.Tiktoken, error) {
	encodingCacheMu.RLock()
	cached, ok := encodingCache[model]
	encodingCacheMu.RUnlock()
	if ok {
		return cached, nil
	}

	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}

	encodingCacheMu.Lock()
	encodingCache[model] = enc
	encodingCacheMu.Unlock()
	return enc, nil
}
