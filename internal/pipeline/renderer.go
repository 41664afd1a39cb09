package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/veridoc/veridoc/internal/model"
)

// Renderer writes verification reports as JSON, JSONL, or Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON to the given path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// RenderJSONL writes the report as a single JSON line. Batch output is one
// line per input, in input order.
func (r *Renderer) RenderJSONL(w io.Writer, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write report line: %w", err)
	}

	return nil
}

// RenderMarkdown writes a human-readable report to the given path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	name := report.Candidate.Name
	if name == "" {
		name = "Unnamed simulation"
	}

	fmt.Fprintf(&b, "# Fidelity Report: %s\n\n", name)
	fmt.Fprintf(&b, "- **Status**: %s\n", report.Status)
	fmt.Fprintf(&b, "- **Verified**: %s\n", report.VerifiedAt.Format("2006-01-02 15:04:05 UTC"))
	if report.Provider != "" {
		fmt.Fprintf(&b, "- **Embedding**: %s", report.Provider)
		if report.Model != "" {
			fmt.Fprintf(&b, " (%s)", report.Model)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if report.Error != "" {
		fmt.Fprintf(&b, "## Error\n\n%s\n\nThis unit could not be scored and should be retried.\n", report.Error)
	}

	if v := report.Verdict; v != nil {
		b.WriteString("## Scores\n\n")
		fmt.Fprintf(&b, "| Category | Score |\n|---|---|\n")
		fmt.Fprintf(&b, "| Equation accuracy | %.2f |\n", v.EquationAccuracy)
		fmt.Fprintf(&b, "| Parameter completeness | %.2f |\n", v.ParameterCompleteness)
		fmt.Fprintf(&b, "| Assumption completeness | %.2f |\n", v.AssumptionCompleteness)
		fmt.Fprintf(&b, "| Constraint accuracy | %.2f |\n", v.ConstraintAccuracy)
		fmt.Fprintf(&b, "| **Overall fidelity** | **%.2f** |\n\n", v.OverallFidelity)

		if len(v.MissingElements) > 0 {
			b.WriteString("## Missing from candidate\n\n")
			for _, m := range v.MissingElements {
				fmt.Fprintf(&b, "- %s\n", m)
			}
			b.WriteString("\n")
		}

		if len(v.ExtraElements) > 0 {
			b.WriteString("## Not traceable to source\n\n")
			for _, e := range v.ExtraElements {
				fmt.Fprintf(&b, "- %s\n", e)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Source analysis\n\n")
	fmt.Fprintf(&b, "- Equations: %d\n", len(report.SourceAnalysis.Equations))
	fmt.Fprintf(&b, "- Parameters: %d\n", len(report.SourceAnalysis.Parameters))
	fmt.Fprintf(&b, "- Assumptions: %d\n", len(report.SourceAnalysis.Assumptions))
	fmt.Fprintf(&b, "- Constraints: %d\n", len(report.SourceAnalysis.Constraints))
	fmt.Fprintf(&b, "- Extraction confidence: %.2f\n", report.SourceAnalysis.Confidence)

	if r.includeFooter {
		b.WriteString("\n---\n*Generated by veridoc. Fidelity measures traceability to the source text, not physical correctness.*\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}

	return nil
}

// RenderSummary prints a one-screen summary to stdout
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println("  Verification Summary")
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()

	if report.Error != "" {
		fmt.Printf("  Status:   %s\n", report.Status)
		fmt.Printf("  Error:    %s\n", report.Error)
		fmt.Println()
		return
	}

	v := report.Verdict
	fmt.Printf("  Status:                  %s\n", report.Status)
	fmt.Printf("  Overall fidelity:        %.2f\n", v.OverallFidelity)
	fmt.Printf("  Equation accuracy:       %.2f\n", v.EquationAccuracy)
	fmt.Printf("  Parameter completeness:  %.2f\n", v.ParameterCompleteness)
	fmt.Printf("  Assumption completeness: %.2f\n", v.AssumptionCompleteness)
	fmt.Printf("  Constraint accuracy:     %.2f\n", v.ConstraintAccuracy)
	fmt.Printf("  Missing elements:        %d\n", len(v.MissingElements))
	fmt.Printf("  Extra elements:          %d\n", len(v.ExtraElements))
	fmt.Println()
}
