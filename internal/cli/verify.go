package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/veridoc/veridoc/internal/model"
	"github.com/veridoc/veridoc/internal/pipeline"
)

var (
	sourcePath    string
	ssdPath       string
	outJSON       string
	outMD         string
	timeout       time.Duration
	noCache       bool
	noFooter      bool
	embedProvider string
	embedModel    string
	embedBaseURL  string
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a single SSD document against its source text",
	Long: `Verify analyzes one (source, SSD) pair:
- Extract equations, parameters, assumptions, and constraints from the source
- Score the SSD's declared content against the extracted inventory
- Report missing elements and possible hallucinations
- Derive a fidelity status (high_fidelity, acceptable, needs_review)

The source may be plain text or an HTML file (stripped to visible text).

Example:
  veridoc verify --source worksheet.txt --ssd projectile.json
  veridoc verify --source worksheet.txt --ssd projectile.json --json report.json --md report.md
  veridoc verify --source worksheet.txt --ssd projectile.json --embed openai`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	// Input flags
	verifyCmd.Flags().StringVar(&sourcePath, "source", "", "source document path (text or HTML)")
	verifyCmd.Flags().StringVar(&ssdPath, "ssd", "", "candidate SSD document path (JSON)")
	_ = verifyCmd.MarkFlagRequired("source")
	_ = verifyCmd.MarkFlagRequired("ssd")

	// Output flags
	verifyCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	verifyCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	verifyCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// Verification flags
	verifyCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall verification timeout")
	verifyCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding vector cache")

	// Embedding flags
	verifyCmd.Flags().StringVar(&embedProvider, "embed", "hash", "embedding provider (openai, ollama, hash)")
	verifyCmd.Flags().StringVar(&embedModel, "embed-model", "", "embedding model name (provider default if empty)")
	verifyCmd.Flags().StringVar(&embedBaseURL, "embed-url", "", "custom embedding endpoint URL")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose
	cfg.Output.IncludeFooter = !noFooter
	if err := applyEmbeddingFlags(cfg); err != nil {
		return err
	}

	// Load inputs
	sourceText, err := pipeline.LoadSource(sourcePath)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}

	ssdData, err := os.ReadFile(ssdPath)
	if err != nil {
		return fmt.Errorf("read SSD document: %w", err)
	}

	var rawCandidate map[string]interface{}
	if err := json.Unmarshal(ssdData, &rawCandidate); err != nil {
		return fmt.Errorf("parse SSD document: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Source:    %s (%d bytes)\n", sourcePath, len(sourceText))
		fmt.Fprintf(os.Stderr, "SSD:       %s\n", ssdPath)
		fmt.Fprintf(os.Stderr, "Embedding: %s\n", cfg.Embedding.Provider)
		fmt.Fprintln(os.Stderr)
	}

	// Create pipeline
	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}

	// Verify
	report := p.Verify(ctx, 0, sourceText, rawCandidate)

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extracted %d equations\n", len(report.SourceAnalysis.Equations))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d parameters\n", len(report.SourceAnalysis.Parameters))
		fmt.Fprintf(os.Stderr, "✓ Extracted %d assumptions, %d constraints\n",
			len(report.SourceAnalysis.Assumptions), len(report.SourceAnalysis.Constraints))
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	renderer := p.Reporter()
	if outJSON != "" {
		if err := renderer.RenderJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := renderer.RenderMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}
	renderer.RenderSummary(report)

	if report.Status == model.StatusError {
		return fmt.Errorf("verification failed: %s", report.Error)
	}

	return nil
}

// applyEmbeddingFlags fills the embedding config from flags and environment
func applyEmbeddingFlags(cfg *model.Config) error {
	cfg.Embedding.Provider = embedProvider
	cfg.Embedding.Model = embedModel
	cfg.Embedding.BaseURL = embedBaseURL

	switch embedProvider {
	case "openai":
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Embedding.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = baseURL
		}
	}

	return nil
}
