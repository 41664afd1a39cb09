package embed

import (
	"context"

	"golang.org/x/time/rate"
)

// LimitedProvider throttles calls to a remote embedding provider so batch
// runs with many workers stay inside provider quotas.
type LimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewLimitedProvider wraps the inner provider with a token-bucket limiter
func NewLimitedProvider(inner Provider, requestsPerSecond float64, burst int) *LimitedProvider {
	if burst <= 0 {
		burst = 5
	}

	return &LimitedProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the inner provider name
func (p *LimitedProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable delegates to the inner provider
func (p *LimitedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Embed waits for rate limit clearance, then delegates. One wait covers the
// whole batch - a verification makes a single provider call.
func (p *LimitedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.inner.Embed(ctx, texts)
}
