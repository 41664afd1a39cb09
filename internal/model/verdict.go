package model

import "time"

// Fixed category weights for the overall fidelity score
const (
	WeightEquations   = 0.4
	WeightParameters  = 0.3
	WeightAssumptions = 0.2
	WeightConstraints = 0.1
)

// Verdict is the multi-dimensional result of checking a candidate SSD
// against the source inventory
type Verdict struct {
	EquationAccuracy       float64  `json:"equation_accuracy"`
	ParameterCompleteness  float64  `json:"parameter_completeness"`
	AssumptionCompleteness float64  `json:"assumption_completeness"`
	ConstraintAccuracy     float64  `json:"constraint_accuracy"`
	MissingElements        []string `json:"missing_elements"`
	ExtraElements          []string `json:"extra_elements"`
	OverallFidelity        float64  `json:"overall_fidelity"`
}

// Status is the discrete label derived from overall fidelity
type Status string

const (
	StatusHighFidelity Status = "high_fidelity" // overall >= 0.9
	StatusAcceptable   Status = "acceptable"    // 0.7 <= overall < 0.9
	StatusNeedsReview  Status = "needs_review"  // overall < 0.7
	StatusError        Status = "error"         // could not score (provider failure)
)

// StatusFor maps an overall fidelity score to its status label.
// A failed verification must use StatusError instead: a score of 0.0 from a
// true full mismatch is indistinguishable from one faked by a failure.
func StatusFor(overallFidelity float64) Status {
	switch {
	case overallFidelity >= 0.9:
		return StatusHighFidelity
	case overallFidelity >= 0.7:
		return StatusAcceptable
	default:
		return StatusNeedsReview
	}
}

// Report is the complete per-unit verification record. In batch mode one
// report is emitted per input line, in input order, whether the unit
// succeeded or failed.
type Report struct {
	Index          int               `json:"index"`                // Position in the batch input (0-based)
	SourceDocument string            `json:"source_document"`      // Original source text
	Candidate      CandidateDocument `json:"ssd_document"`         // Normalized candidate SSD
	SourceAnalysis SourceInventory   `json:"source_analysis"`      // Extraction Engine output
	Verdict        *Verdict          `json:"verdict,omitempty"`    // Nil when Status == error
	Status         Status            `json:"status"`               // Derived status label
	Provider       string            `json:"provider,omitempty"`   // Embedding provider used
	Model          string            `json:"model,omitempty"`      // Embedding model used
	VerifiedAt     time.Time         `json:"verified_at"`          // When the verification ran
	Error          string            `json:"error,omitempty"`      // Per-unit failure, flagged for retry
}
