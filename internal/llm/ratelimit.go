package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Default request rate toward a provider.
const (
	DefaultRatePerSecond = 3
	DefaultBurst         = 5
)

// RateLimited blocks each Generate call on a shared token bucket.
type RateLimited struct {
	Provider
	limiter *rate.Limiter
}

// NewRateLimited wraps p. A non-positive perSecond disables limiting.
func NewRateLimited(p Provider, perSecond float64, burst int) *RateLimited {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{Provider: p, limiter: rate.NewLimiter(limit, burst)}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string, s Settings) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm.RateLimited: %w", err)
	}
	return r.Provider.Generate(ctx, prompt, s)
}
