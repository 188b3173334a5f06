// Package llm talks to the generative text backend and turns its free-text
// replies into structured values.
package llm

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Completer sends one system+user prompt pair and returns the completion text.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const (
	// MaxRateLimitRetries is how many times a 429 is retried before giving up.
	MaxRateLimitRetries = 3

	defaultMaxTokens        = 1500
	defaultTopP             = 0.9
	defaultFrequencyPenalty = 0.5
	defaultPresencePenalty  = 0.5
)

// backoff returns the wait before retry number attempt (1-based) when the
// server gave no Retry-After hint: 1s, 2s, 4s.
func backoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt-1)) * time.Second
}

type sleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// temperature draws a sampling temperature in [0.8, 1.0) so repeated prompts
// produce varied output.
type temperature struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newTemperature(rng *rand.Rand) *temperature {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &temperature{rng: rng}
}

func (t *temperature) next() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return 0.8 + t.rng.Float64()*0.2
}
