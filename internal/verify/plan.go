package verify

import (
	"context"

	"github.com/veridoc/veridoc/internal/embed"
)

// span addresses a contiguous slice of the batched embedding call
type span struct {
	start int
	n     int
}

// embedPlan accumulates every string a verification needs vectors for, so
// the provider sees exactly one call per verification (or none, when every
// category resolves by empty-set rule).
type embedPlan struct {
	texts []string
	vecs  [][]float32
}

func newEmbedPlan() *embedPlan {
	return &embedPlan{}
}

// addPair reserves spans for a source/candidate category pair. Vectors are
// only needed when both sides are non-empty; otherwise the category scores
// by rule and both spans stay empty.
func (p *embedPlan) addPair(src, cand []string) (span, span) {
	if len(src) == 0 || len(cand) == 0 {
		return span{}, span{}
	}
	return p.add(src), p.add(cand)
}

func (p *embedPlan) add(items []string) span {
	s := span{start: len(p.texts), n: len(items)}
	p.texts = append(p.texts, items...)
	return s
}

// run executes the batched embedding call
func (p *embedPlan) run(ctx context.Context, provider embed.Provider) error {
	if len(p.texts) == 0 {
		return nil
	}

	vectors, err := provider.Embed(ctx, p.texts)
	if err != nil {
		return err
	}
	p.vecs = vectors
	return nil
}

// vectors returns the embedded vectors for a span
func (p *embedPlan) vectors(s span) [][]float32 {
	if s.n == 0 {
		return nil
	}
	return p.vecs[s.start : s.start+s.n]
}
