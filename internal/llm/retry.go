package llm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Retrying re-issues failed Generate calls with linear backoff and jitter.
type Retrying struct {
	Provider
	attempts  int
	baseDelay time.Duration
}

// NewRetrying wraps p. attempts counts the first call.
func NewRetrying(p Provider, attempts int, baseDelay time.Duration) *Retrying {
	if attempts < 1 {
		attempts = 1
	}
	return &Retrying{Provider: p, attempts: attempts, baseDelay: baseDelay}
}

func (r *Retrying) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		var out string
		out, err = r.Provider.Generate(ctx, prompt, s)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil || attempt == r.attempts {
			break
		}

		backoff := time.Duration(attempt) * r.baseDelay
		if r.baseDelay > 0 {
			backoff += rand.N(r.baseDelay)
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("llm.Retrying: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}
	return "", fmt.Errorf("llm.Retrying: after %d attempts: %w", r.attempts, err)
}
