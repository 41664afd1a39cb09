package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/veridoc/veridoc/internal/model"
)

// Verifier runs one verification unit
type Verifier interface {
	Verify(ctx context.Context, index int, sourceText string, rawCandidate map[string]interface{}) *model.Report
}

// Pair is one batch input unit: a source document and its candidate SSD.
// ParseErr carries a per-line decode failure so the unit still yields an
// outcome record instead of being dropped.
type Pair struct {
	Index          int
	SourceDocument string
	SSDDocument    map[string]interface{}
	ParseErr       error
}

// pairLine is the JSONL wire format of a batch input line
type pairLine struct {
	SourceDocument string                 `json:"source_document"`
	SSDDocument    map[string]interface{} `json:"ssd_document"`
	SSDOutput      map[string]interface{} `json:"ssd_output"` // legacy field name
}

// VerifyJob wraps one pair for the worker pool
type VerifyJob struct {
	Pair     Pair
	Verifier Verifier
}

// Execute runs the verification for one pair. Pairs that failed to parse
// become error reports; nothing aborts the batch.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	if j.Pair.ParseErr != nil {
		return &VerifyResult{
			Index: j.Pair.Index,
			Report: &model.Report{
				Index:      j.Pair.Index,
				Status:     model.StatusError,
				Error:      j.Pair.ParseErr.Error(),
				VerifiedAt: time.Now().UTC(),
			},
		}
	}

	report := j.Verifier.Verify(ctx, j.Pair.Index, j.Pair.SourceDocument, j.Pair.SSDDocument)
	return &VerifyResult{Index: j.Pair.Index, Report: report}
}

// VerifyResult is the result of one verification job
type VerifyResult struct {
	Index  int
	Report *model.Report
}

// GetIndex returns the unit's position in the batch input
func (r *VerifyResult) GetIndex() int {
	return r.Index
}

// GetError surfaces the unit's failure, if any
func (r *VerifyResult) GetError() error {
	if r.Report != nil && r.Report.Error != "" {
		return fmt.Errorf("%s", r.Report.Error)
	}
	return nil
}

// BatchProcessor verifies many (source, candidate) pairs concurrently
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessPairs verifies all pairs concurrently and returns one report per
// pair, in input order. Cancelling ctx stops in-flight work; units that never
// ran still get an error record, so N inputs always yield N reports.
func (b *BatchProcessor) ProcessPairs(ctx context.Context, pairs []Pair) []*model.Report {
	if len(pairs) == 0 {
		return []*model.Report{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	// Submit from a separate goroutine while Wait drains below. Both pool
	// channels are bounded: submitting everything up front would fill the
	// results buffer, stall the workers, and then block Submit for good once
	// the batch outgrows the buffers.
	go func() {
		for _, pair := range pairs {
			if !pool.Submit(&VerifyJob{Pair: pair, Verifier: b.verifier}) {
				return
			}
		}
		pool.Close()
	}()

	results := pool.Wait()

	// Restore input order. Pair.Index is the position in pairs.
	reports := make([]*model.Report, len(pairs))
	for _, result := range results {
		res := result.(*VerifyResult)
		if res.Index < 0 || res.Index >= len(reports) {
			continue
		}
		reports[res.Index] = res.Report
	}

	// A cancelled run leaves units unexecuted; they still get a record
	for i, report := range reports {
		if report != nil {
			continue
		}
		msg := "verification did not complete"
		if err := ctx.Err(); err != nil {
			msg = "verification cancelled: " + err.Error()
		}
		reports[i] = &model.Report{
			Index:      i,
			Status:     model.StatusError,
			Error:      msg,
			VerifiedAt: time.Now().UTC(),
		}
	}

	return reports
}

// ProcessFile reads pairs from a JSONL file and verifies them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*model.Report, error) {
	pairs, err := ReadPairsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}

	return b.ProcessPairs(ctx, pairs), nil
}

// ReadPairsFromFile reads verification pairs from a JSONL file, one JSON
// object per line. Blank lines and # comments are skipped; lines that fail
// to decode become pairs carrying a ParseErr, keeping the one-record-per-
// input contract.
func ReadPairsFromFile(filePath string) ([]Pair, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var pairs []Pair

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024) // Source documents can be long
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		index := len(pairs)

		var parsed pairLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			pairs = append(pairs, Pair{
				Index:    index,
				ParseErr: fmt.Errorf("line %d: %w", lineNum, err),
			})
			continue
		}

		ssd := parsed.SSDDocument
		if ssd == nil {
			ssd = parsed.SSDOutput
		}

		pairs = append(pairs, Pair{
			Index:          index,
			SourceDocument: parsed.SourceDocument,
			SSDDocument:    ssd,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return pairs, nil
}
