package extract

import (
	"strings"

	"github.com/veridoc/veridoc/internal/model"
)

// Extractor converts unstructured source text into a SourceInventory using
// deterministic pattern and keyword matching. No learned model is involved,
// so every extracted fact is explainable by the lexicon entry that matched.
type Extractor struct {
	lexicon Lexicon
}

// NewExtractor creates an extractor with the given lexicon
func NewExtractor(lexicon Lexicon) *Extractor {
	return &Extractor{lexicon: lexicon}
}

// Extract analyzes the source text. It never fails: malformed or empty input
// yields empty collections and baseline confidence.
func (e *Extractor) Extract(sourceText string) model.SourceInventory {
	equations := e.extractEquations(sourceText)
	parameters := e.extractParameters(sourceText)
	assumptions, constraints := e.classifySentences(sourceText)

	return model.SourceInventory{
		Equations:      equations,
		Parameters:     parameters,
		Assumptions:    assumptions,
		Constraints:    constraints,
		DomainKeywords: e.extractDomainKeywords(sourceText),
		Confidence:     e.confidence(sourceText, equations, parameters),
	}
}

// extractEquations applies each equation pattern in order, then scans for
// bare arithmetic expressions. The union is deduplicated, preserving
// first-seen order for stable output.
func (e *Extractor) extractEquations(text string) []string {
	var equations []string

	for _, pattern := range e.lexicon.EquationPatterns {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			// Join capture groups with a space, skipping the full match
			equations = append(equations, strings.Join(match[1:], " "))
		}
	}

	// Inline formulas without an explicit equals sign
	equations = append(equations, e.lexicon.MathExpression.FindAllString(text, -1)...)

	return dedupe(equations)
}

// extractParameters finds identifiers immediately followed by =, :, a
// numeral, or a parenthesized unit
func (e *Extractor) extractParameters(text string) []string {
	var parameters []string

	for _, match := range e.lexicon.ParameterPattern.FindAllStringSubmatch(text, -1) {
		if match[1] != "" {
			parameters = append(parameters, match[1])
		} else if match[2] != "" {
			parameters = append(parameters, match[2])
		}
	}

	return dedupe(parameters)
}

// classifySentences splits the text on '.' and classifies each sentence.
// Assumption keywords win: a sentence flagged as an assumption is never
// reclassified as a constraint.
func (e *Extractor) classifySentences(text string) (assumptions, constraints []string) {
	sentences := strings.Split(text, ".")

	assumed := make(map[string]bool)
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if containsAny(strings.ToLower(sentence), e.lexicon.AssumptionKeywords) {
			assumptions = append(assumptions, sentence)
			assumed[sentence] = true
		}
	}

	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" || assumed[sentence] {
			continue
		}
		if containsAny(strings.ToLower(sentence), e.lexicon.ConstraintKeywords) {
			constraints = append(constraints, sentence)
		}
	}

	return assumptions, constraints
}

// extractDomainKeywords returns vocabulary entries present in the text
// (case-insensitive substring match)
func (e *Extractor) extractDomainKeywords(text string) []string {
	textLower := strings.ToLower(text)

	var found []string
	for _, keyword := range e.lexicon.DomainVocabulary {
		if strings.Contains(textLower, strings.ToLower(keyword)) {
			found = append(found, keyword)
		}
	}
	return found
}

// confidence is a coarse self-assessment of extraction quality. It is
// surfaced for diagnostics only and never feeds the fidelity math.
func (e *Extractor) confidence(text string, equations, parameters []string) float64 {
	score := 0.5 // baseline

	if len(equations) > 0 {
		score += 0.2
	}
	if len(parameters) > 0 {
		score += 0.15
	}
	if containsAny(strings.ToLower(text), e.lexicon.StructureMarkers) {
		score += 0.15
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// containsAny reports whether s contains any of the keywords
func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}

// dedupe removes exact duplicates, keeping first-seen order
func dedupe(items []string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			unique = append(unique, item)
		}
	}

	return unique
}
