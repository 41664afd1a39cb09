package verify

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/veridoc/veridoc/internal/embed"
	"github.com/veridoc/veridoc/internal/model"
)

func newTestScorer() *Scorer {
	provider := embed.NewHashProvider(embed.DefaultConfig())
	return NewScorer(provider, DefaultOptions())
}

func approx(got, want float64) bool {
	return math.Abs(got-want) < 1e-9
}

func candidateWith(equations, parameters, assumptions, constraints []string) model.CandidateDocument {
	doc := model.CandidateDocument{
		Assumptions: assumptions,
		Constraints: constraints,
	}
	for _, eq := range equations {
		doc.Equations = append(doc.Equations, model.Equation{Expression: eq})
	}
	for _, p := range parameters {
		doc.Parameters = append(doc.Parameters, model.Parameter{Symbol: p})
	}
	return doc
}

func TestVerify_BothEmpty(t *testing.T) {
	s := newTestScorer()

	verdict, err := s.Verify(context.Background(), model.SourceInventory{}, model.CandidateDocument{}, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if verdict.EquationAccuracy != 1.0 {
		t.Errorf("equation accuracy = %v, want 1.0", verdict.EquationAccuracy)
	}
	if verdict.ParameterCompleteness != 1.0 {
		t.Errorf("parameter completeness = %v, want 1.0", verdict.ParameterCompleteness)
	}
	if verdict.AssumptionCompleteness != 1.0 {
		t.Errorf("assumption completeness = %v, want 1.0", verdict.AssumptionCompleteness)
	}
	if verdict.ConstraintAccuracy != 1.0 {
		t.Errorf("constraint accuracy = %v, want 1.0", verdict.ConstraintAccuracy)
	}
	if !approx(verdict.OverallFidelity, 1.0) {
		t.Errorf("overall fidelity = %v, want 1.0", verdict.OverallFidelity)
	}
	if len(verdict.MissingElements) != 0 || len(verdict.ExtraElements) != 0 {
		t.Errorf("unexpected missing %v or extra %v", verdict.MissingElements, verdict.ExtraElements)
	}
}

func TestVerify_IdenticalEquations(t *testing.T) {
	s := newTestScorer()

	inv := model.SourceInventory{Equations: []string{"x = v*t"}}
	doc := candidateWith([]string{"x = v*t"}, nil, nil, nil)

	verdict, err := s.Verify(context.Background(), inv, doc, "x = v*t")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if verdict.EquationAccuracy != 1.0 {
		t.Errorf("equation accuracy = %v, want 1.0", verdict.EquationAccuracy)
	}
	if len(verdict.MissingElements) != 0 {
		t.Errorf("unexpected missing elements: %v", verdict.MissingElements)
	}
}

func TestVerify_UnrelatedEquations(t *testing.T) {
	s := newTestScorer()

	inv := model.SourceInventory{Equations: []string{"x = v*t"}}
	doc := candidateWith([]string{"alpha + beta"}, nil, nil, nil)

	verdict, err := s.Verify(context.Background(), inv, doc, "x = v*t")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if verdict.EquationAccuracy != 0.0 {
		t.Errorf("equation accuracy = %v, want 0.0", verdict.EquationAccuracy)
	}
	if !containsElement(verdict.MissingElements, "Equation: x = v*t") {
		t.Errorf("missing elements %v should contain the source equation", verdict.MissingElements)
	}
	if !containsElement(verdict.ExtraElements, "Equation: alpha + beta") {
		t.Errorf("extra elements %v should contain the candidate equation", verdict.ExtraElements)
	}
}

func TestVerify_EquationEmptySides(t *testing.T) {
	s := newTestScorer()

	// Source has equations, candidate declares none: half credit, nothing
	// enumerated on either side
	inv := model.SourceInventory{Equations: []string{"x = v*t"}}
	verdict, err := s.Verify(context.Background(), inv, model.CandidateDocument{}, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.EquationAccuracy != 0.5 {
		t.Errorf("empty candidate: equation accuracy = %v, want 0.5", verdict.EquationAccuracy)
	}
	if len(verdict.MissingElements) != 0 || len(verdict.ExtraElements) != 0 {
		t.Errorf("empty candidate: unexpected missing %v or extra %v", verdict.MissingElements, verdict.ExtraElements)
	}

	// Source has no equations, candidate declares one: half credit, every
	// candidate equation flagged extra
	doc := candidateWith([]string{"y = a*x"}, nil, nil, nil)
	verdict, err = s.Verify(context.Background(), model.SourceInventory{}, doc, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.EquationAccuracy != 0.5 {
		t.Errorf("empty source: equation accuracy = %v, want 0.5", verdict.EquationAccuracy)
	}
	if !containsElement(verdict.ExtraElements, "Equation: y = a*x") {
		t.Errorf("empty source: extra elements %v should contain the candidate equation", verdict.ExtraElements)
	}
}

func TestVerify_Parameters(t *testing.T) {
	s := newTestScorer()
	ctx := context.Background()

	// Exact lexical match
	inv := model.SourceInventory{Parameters: []string{"m", "v"}}
	doc := candidateWith(nil, []string{"m", "v"}, nil, nil)
	verdict, err := s.Verify(ctx, inv, doc, "m = 10, v = 3")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.ParameterCompleteness != 1.0 {
		t.Errorf("parameter completeness = %v, want 1.0", verdict.ParameterCompleteness)
	}

	// Substring grace: v covered by v0, so not missing, but exact-match
	// scoring still counts it unmatched
	inv = model.SourceInventory{Parameters: []string{"v"}}
	doc = candidateWith(nil, []string{"v0"}, nil, nil)
	verdict, err = s.Verify(ctx, inv, doc, "x(t) = v0*t")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.ParameterCompleteness != 0.0 {
		t.Errorf("parameter completeness = %v, want 0.0", verdict.ParameterCompleteness)
	}
	if containsElement(verdict.MissingElements, "Parameter: v") {
		t.Errorf("v is a substring of v0 and should not be missing: %v", verdict.MissingElements)
	}

	// Extra parameter absent from the raw source text: penalized and flagged
	doc = candidateWith(nil, []string{"q"}, nil, nil)
	verdict, err = s.Verify(ctx, model.SourceInventory{}, doc, "nothing relevant")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !approx(verdict.ParameterCompleteness, 0.8*0.8) {
		t.Errorf("parameter completeness = %v, want 0.64", verdict.ParameterCompleteness)
	}
	if !containsElement(verdict.ExtraElements, "Parameter: q") {
		t.Errorf("extra elements %v should contain q", verdict.ExtraElements)
	}

	// Extra parameter that does appear inline in the source: tolerated
	doc = candidateWith(nil, []string{"g"}, nil, nil)
	verdict, err = s.Verify(ctx, model.SourceInventory{}, doc, "under gravity g the body falls")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !approx(verdict.ParameterCompleteness, 0.8) {
		t.Errorf("parameter completeness = %v, want 0.8", verdict.ParameterCompleteness)
	}
	if len(verdict.ExtraElements) != 0 {
		t.Errorf("unexpected extra elements: %v", verdict.ExtraElements)
	}
}

func TestVerify_SentenceFloors(t *testing.T) {
	s := newTestScorer()
	ctx := context.Background()

	inv := model.SourceInventory{
		Assumptions: []string{"Assume no air resistance"},
		Constraints: []string{"The speed must be positive"},
	}

	verdict, err := s.Verify(ctx, inv, model.CandidateDocument{}, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	// Dropped assumptions floor at 0.0, dropped constraints at 0.5
	if verdict.AssumptionCompleteness != 0.0 {
		t.Errorf("assumption completeness = %v, want 0.0", verdict.AssumptionCompleteness)
	}
	if verdict.ConstraintAccuracy != 0.5 {
		t.Errorf("constraint accuracy = %v, want 0.5", verdict.ConstraintAccuracy)
	}
	if !containsElement(verdict.MissingElements, "Assumption: Assume no air resistance") {
		t.Errorf("missing elements %v should contain the assumption", verdict.MissingElements)
	}
	if !containsElement(verdict.MissingElements, "Constraint: The speed must be positive") {
		t.Errorf("missing elements %v should contain the constraint", verdict.MissingElements)
	}
}

func TestVerify_SentenceMatching(t *testing.T) {
	s := newTestScorer()
	ctx := context.Background()

	inv := model.SourceInventory{Assumptions: []string{"Assume no air resistance"}}

	// Paraphrase sharing most tokens clears the 0.6 threshold
	doc := candidateWith(nil, nil, []string{"no air resistance"}, nil)
	verdict, err := s.Verify(ctx, inv, doc, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.AssumptionCompleteness != 1.0 {
		t.Errorf("assumption completeness = %v, want 1.0", verdict.AssumptionCompleteness)
	}

	// Unrelated sentence does not
	doc = candidateWith(nil, nil, []string{"totally unrelated words here"}, nil)
	verdict, err = s.Verify(ctx, inv, doc, "")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if verdict.AssumptionCompleteness != 0.0 {
		t.Errorf("assumption completeness = %v, want 0.0", verdict.AssumptionCompleteness)
	}
	if !containsElement(verdict.MissingElements, "Assumption: Assume no air resistance") {
		t.Errorf("missing elements %v should contain the assumption", verdict.MissingElements)
	}
}

func TestVerify_OverallWeights(t *testing.T) {
	s := newTestScorer()

	// eq 1.0, param 0.0, assumption 0.0, constraint 0.5
	inv := model.SourceInventory{
		Equations:   []string{"x = v*t"},
		Parameters:  []string{"zz"},
		Assumptions: []string{"Assume no air resistance"},
		Constraints: []string{"The speed must be positive"},
	}
	doc := candidateWith([]string{"x = v*t"}, nil, nil, nil)

	verdict, err := s.Verify(context.Background(), inv, doc, "x = v*t")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	want := 1.0*model.WeightEquations +
		0.0*model.WeightParameters +
		0.0*model.WeightAssumptions +
		0.5*model.WeightConstraints
	if !approx(verdict.OverallFidelity, want) {
		t.Errorf("overall fidelity = %v, want %v", verdict.OverallFidelity, want)
	}
}

func TestVerify_Idempotent(t *testing.T) {
	s := newTestScorer()
	ctx := context.Background()

	inv := model.SourceInventory{
		Equations:   []string{"x t v0*t", "v0*t"},
		Parameters:  []string{"v"},
		Assumptions: []string{"Assume no air resistance"},
		Constraints: []string{"The speed must be positive"},
	}
	doc := candidateWith([]string{"x(t) = v0*t"}, []string{"v0"}, []string{"no air resistance"}, []string{"v0 > 0"})
	sourceText := "The speed must be positive. Assume no air resistance. x(t) = v0*t"

	first, err := s.Verify(ctx, inv, doc, sourceText)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	second, err := s.Verify(ctx, inv, doc, sourceText)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	if first.OverallFidelity != second.OverallFidelity {
		t.Errorf("overall fidelity not stable: %v vs %v", first.OverallFidelity, second.OverallFidelity)
	}
	if strings.Join(first.MissingElements, "|") != strings.Join(second.MissingElements, "|") {
		t.Errorf("missing elements not stable: %v vs %v", first.MissingElements, second.MissingElements)
	}

	// Known scores for this fixture
	if first.EquationAccuracy != 1.0 {
		t.Errorf("equation accuracy = %v, want 1.0", first.EquationAccuracy)
	}
	if first.AssumptionCompleteness != 1.0 {
		t.Errorf("assumption completeness = %v, want 1.0", first.AssumptionCompleteness)
	}
	if first.ConstraintAccuracy != 0.0 {
		t.Errorf("constraint accuracy = %v, want 0.0", first.ConstraintAccuracy)
	}
	if !approx(first.OverallFidelity, 0.6) {
		t.Errorf("overall fidelity = %v, want 0.6", first.OverallFidelity)
	}
	if model.StatusFor(first.OverallFidelity) != model.StatusNeedsReview {
		t.Errorf("status = %v, want needs_review", model.StatusFor(first.OverallFidelity))
	}
}

// failingProvider returns an error on every Embed call
type failingProvider struct{}

func (p *failingProvider) Name() string { return "failing" }

func (p *failingProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider down")
}

func (p *failingProvider) IsAvailable(ctx context.Context) bool { return false }

func TestVerify_ProviderFailure(t *testing.T) {
	s := NewScorer(&failingProvider{}, DefaultOptions())

	inv := model.SourceInventory{Equations: []string{"x = v*t"}}
	doc := candidateWith([]string{"x = v*t"}, nil, nil, nil)

	if _, err := s.Verify(context.Background(), inv, doc, ""); err == nil {
		t.Fatal("expected error from failing provider")
	}

	// When every category resolves by rule no embedding call happens, so the
	// failing provider is never reached
	verdict, err := s.Verify(context.Background(), model.SourceInventory{}, model.CandidateDocument{}, "")
	if err != nil {
		t.Fatalf("Verify should not touch the provider: %v", err)
	}
	if !approx(verdict.OverallFidelity, 1.0) {
		t.Errorf("overall fidelity = %v, want 1.0", verdict.OverallFidelity)
	}
}

func containsElement(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
