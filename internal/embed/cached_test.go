package embed

import (
	"context"
	"testing"
	"time"

	"github.com/veridoc/veridoc/internal/cache"
)

// countingProvider wraps HashProvider and counts Embed calls and texts
type countingProvider struct {
	inner Provider
	calls int
	texts int
}

func (p *countingProvider) Name() string { return p.inner.Name() }

func (p *countingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	p.calls++
	p.texts += len(texts)
	return p.inner.Embed(ctx, texts)
}

func (p *countingProvider) IsAvailable(ctx context.Context) bool { return true }

func TestCachedProvider_ServesHits(t *testing.T) {
	counting := &countingProvider{inner: NewHashProvider(DefaultConfig())}
	store := cache.NewMemoryCache(time.Hour, time.Hour)
	cached := NewCachedProvider(counting, store, "test-model", time.Hour)
	ctx := context.Background()

	first, err := cached.Embed(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if counting.calls != 1 || counting.texts != 2 {
		t.Errorf("cold cache: calls=%d texts=%d, want 1 call with 2 texts", counting.calls, counting.texts)
	}

	second, err := cached.Embed(ctx, []string{"alpha", "beta"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if counting.calls != 1 {
		t.Errorf("warm cache: inner provider called %d times, want 1", counting.calls)
	}

	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("cached vector differs at [%d][%d]", i, j)
			}
		}
	}
}

func TestCachedProvider_BatchesMisses(t *testing.T) {
	counting := &countingProvider{inner: NewHashProvider(DefaultConfig())}
	store := cache.NewMemoryCache(time.Hour, time.Hour)
	cached := NewCachedProvider(counting, store, "test-model", time.Hour)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	// alpha is cached, beta and gamma go to the inner provider in one call
	vecs, err := cached.Embed(ctx, []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if counting.calls != 2 {
		t.Errorf("inner provider called %d times, want 2", counting.calls)
	}
	if counting.texts != 3 {
		t.Errorf("inner provider embedded %d texts, want 3", counting.texts)
	}
	for i, vec := range vecs {
		if len(vec) != hashDimensions {
			t.Errorf("vector %d has %d dimensions, want %d", i, len(vec), hashDimensions)
		}
	}
}

// shortProvider returns fewer vectors than texts
type shortProvider struct{}

func (shortProvider) Name() string { return "short" }

func (shortProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1, 0}}, nil
}

func (shortProvider) IsAvailable(ctx context.Context) bool { return true }

func TestCachedProvider_RejectsShortFill(t *testing.T) {
	store := cache.NewMemoryCache(time.Hour, time.Hour)
	cached := NewCachedProvider(shortProvider{}, store, "test-model", time.Hour)

	if _, err := cached.Embed(context.Background(), []string{"alpha", "beta"}); err == nil {
		t.Fatal("expected error when the inner provider returns fewer vectors than texts")
	}
}

func TestCachedProvider_ScopedByModel(t *testing.T) {
	inner := NewHashProvider(DefaultConfig())
	store := cache.NewMemoryCache(time.Hour, time.Hour)
	ctx := context.Background()

	a := &countingProvider{inner: inner}
	cachedA := NewCachedProvider(a, store, "model-a", time.Hour)
	if _, err := cachedA.Embed(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	// Same text under another model must not reuse model-a's entry
	b := &countingProvider{inner: inner}
	cachedB := NewCachedProvider(b, store, "model-b", time.Hour)
	if _, err := cachedB.Embed(ctx, []string{"alpha"}); err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if b.calls != 1 {
		t.Errorf("model-b inner provider called %d times, want 1", b.calls)
	}
}
