package extract

import "regexp"

// Lexicon is the immutable pattern/keyword configuration driving the fact
// extractor. It is injected at construction so domains and languages can be
// extended without touching the matching logic.
type Lexicon struct {
	// EquationPatterns are applied in order; each submatch group set joins
	// into one normalized equation string.
	EquationPatterns []*regexp.Regexp

	// MathExpression catches bare arithmetic (identifier op operand) that
	// lacks an explicit equals sign.
	MathExpression *regexp.Regexp

	// ParameterPattern matches identifiers with an assigned value or a
	// parenthesized unit.
	ParameterPattern *regexp.Regexp

	// AssumptionKeywords flag a sentence as an assumption. Assumption
	// classification takes precedence over constraints.
	AssumptionKeywords []string

	// ConstraintKeywords flag a remaining sentence as a constraint.
	ConstraintKeywords []string

	// StructureMarkers boost extraction confidence when present in the text.
	StructureMarkers []string

	// DomainVocabulary is the controlled keyword list matched case-insensitively
	// as substrings of the full text.
	DomainVocabulary []string
}

// DefaultLexicon returns the built-in physics/engineering lexicon
func DefaultLexicon() Lexicon {
	return Lexicon{
		EquationPatterns: []*regexp.Regexp{
			regexp.MustCompile(`([a-zA-Z_]\w*)\(([^)]*)\)\s*=\s*(.+)`), // function form: f(x) = ...
			regexp.MustCompile(`([a-zA-Z_]\w*)\s*=\s*([^=]+)`),         // assignment form: x = ...
			regexp.MustCompile(`d([a-zA-Z])/d([a-zA-Z])\s*=\s*(.+)`),   // derivative: dx/dt = ...
			regexp.MustCompile(`∂([a-zA-Z])/∂([a-zA-Z])\s*=\s*(.+)`),   // partial: ∂x/∂t = ...
		},
		MathExpression:   regexp.MustCompile(`[a-zA-Z_]\w*\s*[+\-*/^]\s*[a-zA-Z_0-9().]+`),
		ParameterPattern: regexp.MustCompile(`\b([a-zA-Z_][a-zA-Z_0-9]*)\s*[=:]?\s*\d+|\b([a-zA-Z_][a-zA-Z_0-9]*)\s+\([\w\s/^]+\)`),
		AssumptionKeywords: []string{
			"assume", "assuming", "assumption", "ignore", "negligible",
			"ideal", "constant", "uniform", "steady", "homogeneous",
			"consider", "treat as", "approximate", "neglect",
		},
		ConstraintKeywords: []string{
			"must", "should", "assume", "given", "where", "such that",
			"constraint", "condition", "requirement", "limit", "range",
			"greater than", "less than", "between", "when", "if",
		},
		StructureMarkers: []string{"equation", "formula", "where", "given"},
		DomainVocabulary: []string{
			// physics
			"velocity", "acceleration", "force", "mass", "energy", "momentum",
			"friction", "gravity", "projectile", "pendulum", "wave", "motion",
			// electrical
			"voltage", "current", "resistance", "capacitor", "inductor",
			"circuit", "RC", "RL", "power", "frequency", "impedance",
			// biology
			"population", "growth", "species", "carrying capacity", "epidemic",
			"infection", "susceptible", "recovery", "SIR", "logistic",
			// mechanical
			"stress", "strain", "heat", "temperature", "thermal", "conduction",
			"pressure", "fluid", "flow", "deformation",
		},
	}
}
