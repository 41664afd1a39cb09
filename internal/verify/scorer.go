package verify

import (
	"context"
	"fmt"
	"strings"

	"github.com/veridoc/veridoc/internal/embed"
	"github.com/veridoc/veridoc/internal/model"
)

// Options holds the tunable matching thresholds
type Options struct {
	// EquationThreshold is the minimum cosine similarity for an equation
	// pair to count as a match
	EquationThreshold float64

	// SentenceThreshold is the minimum cosine similarity for assumption and
	// constraint sentences. Lower than equations: phrasing varies more.
	SentenceThreshold float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		EquationThreshold: 0.7,
		SentenceThreshold: 0.6,
	}
}

// Scorer checks a candidate SSD against a source inventory along four
// independent axes and combines them into one verdict.
//
// Matching is greedy per item (max similarity against the other side), not a
// one-to-one bipartite assignment. A single strong source equation may cover
// several candidate paraphrases and vice versa. That leniency is deliberate;
// tightening it would change scores on near-duplicate equations.
type Scorer struct {
	provider embed.Provider
	opts     Options
}

// NewScorer creates a scorer backed by the given embedding provider
func NewScorer(provider embed.Provider, opts Options) *Scorer {
	return &Scorer{provider: provider, opts: opts}
}

// Verify scores the candidate document against the source inventory.
// sourceText is the raw source, consulted for the loose parameter-extra
// check. All strings that need vectors go to the provider in one batch; a
// provider failure is returned as an error for this unit alone.
func (s *Scorer) Verify(ctx context.Context, inv model.SourceInventory, doc model.CandidateDocument, sourceText string) (*model.Verdict, error) {
	candEquations := doc.EquationExpressions()
	candParameters := doc.ParameterSymbols()

	// Plan one batched embedding call covering every string that needs a
	// vector. Categories with an empty side resolve by rule, without vectors.
	plan := newEmbedPlan()
	eqSrc, eqCand := plan.addPair(inv.Equations, candEquations)
	asSrc, asCand := plan.addPair(inv.Assumptions, doc.Assumptions)
	coSrc, coCand := plan.addPair(inv.Constraints, doc.Constraints)

	if err := plan.run(ctx, s.provider); err != nil {
		return nil, fmt.Errorf("embed verification strings: %w", err)
	}

	equationScore, missingEqs, extraEqs := s.verifyEquations(
		inv.Equations, candEquations, plan.vectors(eqSrc), plan.vectors(eqCand))

	parameterScore, missingParams, extraParams := s.verifyParameters(
		inv.Parameters, candParameters, sourceText)

	assumptionScore, missingAssumptions := s.verifySentences(
		inv.Assumptions, doc.Assumptions, plan.vectors(asSrc), plan.vectors(asCand),
		"Assumption", 0.0)

	// Empty-candidate constraints score 0.5 where assumptions score 0.0.
	// The asymmetry is intentional: constraints are often implicit in a
	// domain, dropped assumptions are genuine information loss.
	constraintScore, missingConstraints := s.verifySentences(
		inv.Constraints, doc.Constraints, plan.vectors(coSrc), plan.vectors(coCand),
		"Constraint", 0.5)

	overall := equationScore*model.WeightEquations +
		parameterScore*model.WeightParameters +
		assumptionScore*model.WeightAssumptions +
		constraintScore*model.WeightConstraints

	var missing []string
	missing = append(missing, missingEqs...)
	missing = append(missing, missingParams...)
	missing = append(missing, missingAssumptions...)
	missing = append(missing, missingConstraints...)

	var extra []string
	extra = append(extra, extraEqs...)
	extra = append(extra, extraParams...)

	return &model.Verdict{
		EquationAccuracy:       equationScore,
		ParameterCompleteness:  parameterScore,
		AssumptionCompleteness: assumptionScore,
		ConstraintAccuracy:     constraintScore,
		MissingElements:        missing,
		ExtraElements:          extra,
		OverallFidelity:        overall,
	}, nil
}

// verifyEquations scores equations bidirectionally: recall over source
// equations, precision over candidate equations, averaged.
func (s *Scorer) verifyEquations(srcEqs, candEqs []string, srcVecs, candVecs [][]float32) (float64, []string, []string) {
	var missing, extra []string

	if len(srcEqs) == 0 && len(candEqs) == 0 {
		return 1.0, nil, nil
	}

	if len(srcEqs) == 0 {
		// Source mentions no equations yet the candidate declares some:
		// every one is a possible hallucination
		for _, eq := range candEqs {
			extra = append(extra, "Equation: "+eq)
		}
		return 0.5, nil, extra
	}

	if len(candEqs) == 0 {
		// Complete miss, but "no equations claimed" is not a contradiction,
		// and there is nothing on the candidate side to enumerate against
		return 0.5, nil, nil
	}

	// Recall: is every source equation covered by some candidate equation?
	matchedSource := 0
	for i, srcVec := range srcVecs {
		if maxSimilarity(srcVec, candVecs) > s.opts.EquationThreshold {
			matchedSource++
		} else {
			missing = append(missing, "Equation: "+srcEqs[i])
		}
	}

	// Precision: is every candidate equation traceable to the source?
	matchedCand := 0
	for j, candVec := range candVecs {
		if maxSimilarity(candVec, srcVecs) > s.opts.EquationThreshold {
			matchedCand++
		} else {
			extra = append(extra, "Equation: "+candEqs[j])
		}
	}

	precision := float64(matchedCand) / float64(len(candEqs))
	recall := float64(matchedSource) / float64(len(srcEqs))

	return (precision + recall) / 2, missing, extra
}

// verifyParameters scores parameters lexically - symbol names carry little
// for an embedding model to work with
func (s *Scorer) verifyParameters(srcParams, candParams []string, sourceText string) (float64, []string, []string) {
	var missing, extra []string

	candLower := make(map[string]bool, len(candParams))
	for _, p := range candParams {
		candLower[strings.ToLower(p)] = true
	}
	srcLower := make(map[string]bool, len(srcParams))
	for _, p := range srcParams {
		srcLower[strings.ToLower(p)] = true
	}

	// Missing: not an exact candidate symbol and not a substring of one
	for _, param := range srcParams {
		lower := strings.ToLower(param)
		if candLower[lower] {
			continue
		}
		found := false
		for _, cp := range candParams {
			if strings.Contains(strings.ToLower(cp), lower) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, "Parameter: "+param)
		}
	}

	// Extra: not in the source inventory and not anywhere in the raw source
	// text (parameter names often appear inline without satisfying the
	// extraction heuristics)
	textLower := strings.ToLower(sourceText)
	for _, param := range candParams {
		lower := strings.ToLower(param)
		if srcLower[lower] {
			continue
		}
		if !strings.Contains(textLower, lower) {
			extra = append(extra, "Parameter: "+param)
		}
	}

	var score float64
	if len(srcParams) == 0 {
		// The candidate introducing standard domain constants is tolerated
		if len(candParams) == 0 {
			score = 1.0
		} else {
			score = 0.8
		}
	} else {
		matched := 0
		for _, param := range srcParams {
			if candLower[strings.ToLower(param)] {
				matched++
			}
		}
		score = float64(matched) / float64(len(srcParams))
	}

	if len(extra) > 0 {
		score *= 0.8
	}

	return score, missing, extra
}

// verifySentences scores assumptions or constraints, source side only: the
// candidate phrasing a statement more fully than the source is legitimate,
// so no extras are tracked.
func (s *Scorer) verifySentences(src, cand []string, srcVecs, candVecs [][]float32, label string, emptyCandScore float64) (float64, []string) {
	if len(src) == 0 {
		return 1.0, nil
	}

	if len(cand) == 0 {
		missing := make([]string, 0, len(src))
		for _, sentence := range src {
			missing = append(missing, label+": "+sentence)
		}
		return emptyCandScore, missing
	}

	var missing []string
	matched := 0
	for i, srcVec := range srcVecs {
		if maxSimilarity(srcVec, candVecs) > s.opts.SentenceThreshold {
			matched++
		} else {
			missing = append(missing, label+": "+src[i])
		}
	}

	return float64(matched) / float64(len(src)), missing
}

// maxSimilarity returns the highest cosine similarity between vec and any
// vector in others
func maxSimilarity(vec []float32, others [][]float32) float64 {
	maxSim := 0.0
	for _, other := range others {
		if sim := embed.Cosine(vec, other); sim > maxSim {
			maxSim = sim
		}
	}
	return maxSim
}
