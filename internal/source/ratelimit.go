package source

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sightlinehq/sightline/internal/signal"
)

// RateLimited wraps an adapter with a token-bucket limiter so polite
// adapters never hammer their platform, even when the orchestrator
// retries or runs back-to-back.
type RateLimited struct {
	inner   Adapter
	limiter *rate.Limiter
}

// NewRateLimited wraps inner, allowing rps requests per second with the
// given burst.
func NewRateLimited(inner Adapter, rps float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) Name() string              { return r.inner.Name() }
func (r *RateLimited) Tier() signal.PlatformTier { return r.inner.Tier() }

// Fetch waits for limiter capacity (bounded by ctx) before delegating.
func (r *RateLimited) Fetch(ctx context.Context, q Query) ([]signal.RawRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Fetch(ctx, q)
}
