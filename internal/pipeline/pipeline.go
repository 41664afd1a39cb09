package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veridoc/veridoc/internal/cache"
	"github.com/veridoc/veridoc/internal/embed"
	"github.com/veridoc/veridoc/internal/extract"
	"github.com/veridoc/veridoc/internal/model"
	"github.com/veridoc/veridoc/internal/verify"
)

// Pipeline orchestrates the complete verification process: source analysis,
// candidate normalization, fidelity scoring, and report assembly
type Pipeline struct {
	extractor *extract.Extractor
	scorer    *verify.Scorer
	renderer  *Renderer
	provider  embed.Provider
	config    *model.Config
}

// NewPipeline creates a pipeline with the given configuration
func NewPipeline(cfg *model.Config) (*Pipeline, error) {
	provider, err := embed.NewProvider(embed.ConfigFromModel(cfg.Embedding))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}

	// Remote providers get throttled and cached; the hash provider is an
	// in-process computation and needs neither.
	if provider.Name() != "hash" {
		if cfg.RateLimit.RequestsPerSecond > 0 {
			provider = embed.NewLimitedProvider(provider, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
		}
		if cfg.Cache.Enabled {
			provider = embed.NewCachedProvider(provider, newVectorCache(cfg.Cache), cfg.Embedding.Model, cfg.Cache.MemoryTTL)
		}
	}

	return &Pipeline{
		extractor: extract.NewExtractor(extract.DefaultLexicon()),
		scorer:    verify.NewScorer(provider, verify.DefaultOptions()),
		renderer:  NewRenderer(cfg.Output.IncludeFooter),
		provider:  provider,
		config:    cfg,
	}, nil
}

// newVectorCache builds the vector cache layers from configuration
func newVectorCache(cfg model.CacheConfig) cache.Cache {
	dir := cfg.Dir
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".veridoc", "cache")
		}
	}
	if dir == "" {
		return cache.NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return cache.NewLayeredCache(cfg.MemoryTTL, dir, cfg.DiskTTL)
}

// Verify runs one complete verification of a candidate SSD against its
// source text. Provider failures never escape as errors: the unit's report
// carries the error status so a batch of N inputs yields N records.
func (p *Pipeline) Verify(ctx context.Context, index int, sourceText string, rawCandidate map[string]interface{}) *model.Report {
	inventory := p.extractor.Extract(sourceText)
	candidate := model.CandidateFromMap(rawCandidate)

	report := &model.Report{
		Index:          index,
		SourceDocument: sourceText,
		Candidate:      candidate,
		SourceAnalysis: inventory,
		Provider:       p.provider.Name(),
		Model:          p.config.Embedding.Model,
		VerifiedAt:     time.Now().UTC(),
	}

	verdict, err := p.scorer.Verify(ctx, inventory, candidate, sourceText)
	if err != nil {
		report.Status = model.StatusError
		report.Error = err.Error()
		return report
	}

	report.Verdict = verdict
	report.Status = model.StatusFor(verdict.OverallFidelity)
	return report
}

// Reporter returns the pipeline's report renderer
func (p *Pipeline) Reporter() *Renderer {
	return p.renderer
}
