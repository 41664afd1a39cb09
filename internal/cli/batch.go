package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/veridoc/veridoc/internal/model"
	"github.com/veridoc/veridoc/internal/pipeline"
	"github.com/veridoc/veridoc/internal/worker"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <pairs.jsonl>",
	Short: "Verify many SSD documents from a JSONL file in parallel",
	Long: `Batch verifies multiple (source, SSD) pairs concurrently:
- Read pairs from a JSONL input file, one JSON object per line
  ({"source_document": "...", "ssd_document": {...}})
- Verify pairs in parallel with a configurable worker count
- Write one verification record per input line, preserving input order
- Failed units are reported inline, never aborting the batch

Example:
  veridoc batch pairs.jsonl
  veridoc batch pairs.jsonl --concurrency 10 --output results.jsonl
  veridoc batch pairs.jsonl --embed ollama --embed-model nomic-embed-text`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputFile, "output", "results.jsonl", "output JSONL path")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the embedding vector cache")

	// Embedding flags
	batchCmd.Flags().StringVar(&embedProvider, "embed", "hash", "embedding provider (openai, ollama, hash)")
	batchCmd.Flags().StringVar(&embedModel, "embed-model", "", "embedding model name (provider default if empty)")
	batchCmd.Flags().StringVar(&embedBaseURL, "embed-url", "", "custom embedding endpoint URL")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Veridoc Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output:       %s\n", outputFile)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Build configuration
	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = !noCache
	cfg.Concurrency.Workers = concurrency
	cfg.Output.Verbose = verbose
	if err := applyEmbeddingFlags(cfg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  Embedding:    %s\n\n", cfg.Embedding.Provider)

	// Create pipeline and batch processor
	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return fmt.Errorf("initialize pipeline: %w", err)
	}
	processor := worker.NewBatchProcessor(p, concurrency)

	// Process pairs
	fmt.Fprintf(os.Stderr, "⚙️  Reading pairs from file...\n")
	reports, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Verified %d pairs\n\n", len(reports))

	// Write results, one line per input, in input order
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	renderer := p.Reporter()
	successCount := 0
	failureCount := 0

	for _, report := range reports {
		if err := renderer.RenderJSONL(out, report); err != nil {
			return fmt.Errorf("write result: %w", err)
		}

		if report.Status == model.StatusError {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ unit %d: %s\n", report.Index, report.Error)
			continue
		}

		successCount++
		name := report.Candidate.Name
		if name == "" {
			name = fmt.Sprintf("unit %d", report.Index)
		}
		fmt.Fprintf(os.Stderr, "✓ %s (fidelity: %.2f, %s)\n", name, report.Verdict.OverallFidelity, report.Status)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d pairs\n", len(reports))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputFile)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
