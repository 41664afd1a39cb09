package embed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/veridoc/veridoc/internal/cache"
)

// CachedProvider wraps a Provider with a vector cache. Embeddings are pure
// functions of (provider, model, text), so cached vectors never go stale in
// the usual sense; the TTL only bounds disk growth.
type CachedProvider struct {
	inner Provider
	store cache.Cache
	ttl   time.Duration
	scope string // provider:model prefix isolating cache entries
}

// NewCachedProvider wraps the inner provider with the given cache
func NewCachedProvider(inner Provider, store cache.Cache, modelName string, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		store: store,
		ttl:   ttl,
		scope: inner.Name() + ":" + modelName + ":",
	}
}

// Name returns the inner provider name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// IsAvailable delegates to the inner provider
func (p *CachedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}

// Embed serves what it can from the cache and batches the misses into a
// single inner call
func (p *CachedProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	var missing []string
	var missingAt []int
	for i, text := range texts {
		if vec, ok := p.lookup(text); ok {
			vectors[i] = vec
			continue
		}
		missing = append(missing, text)
		missingAt = append(missingAt, i)
	}

	if len(missing) == 0 {
		return vectors, nil
	}

	fresh, err := p.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missing) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(fresh), len(missing))
	}

	for j, vec := range fresh {
		vectors[missingAt[j]] = vec
		p.save(missing[j], vec)
	}

	return vectors, nil
}

func (p *CachedProvider) lookup(text string) ([]float32, bool) {
	data, found := p.store.Get(cache.Key(p.scope + text))
	if !found {
		return nil, false
	}

	var vec []float32
	if err := json.Unmarshal(data, &vec); err != nil {
		return nil, false
	}
	return vec, true
}

func (p *CachedProvider) save(text string, vec []float32) {
	data, err := json.Marshal(vec)
	if err != nil {
		return
	}
	_ = p.store.Set(cache.Key(p.scope+text), data, p.ttl)
}
