// Package pipeline sequences the extraction, classification, and weekly
// summary stages into a single run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/notion-insights/internal/classify"
	"github.com/jonathan/notion-insights/internal/extract"
	"github.com/jonathan/notion-insights/internal/summary"
)

// Extractor runs the extraction stage.
type Extractor interface {
	Run(ctx context.Context, limit int) (*extract.Result, error)
}

// Classifier runs one classification batch.
type Classifier interface {
	Run(ctx context.Context) (*classify.Result, error)
}

// Summarizer runs the weekly aggregation stage.
type Summarizer interface {
	Run(ctx context.Context, weekID string) (*summary.Result, error)
}

// RunOptions configures a full pipeline run.
type RunOptions struct {
	ExtractLimit int    // 0 extracts everything
	WeekID       string // empty targets the current week
	Verbose      bool
}

// Result aggregates the per-stage outcomes of a full run.
type Result struct {
	Extract  *extract.Result
	Classify *classify.Result
	Summary  *summary.Result
	Duration time.Duration
}

// RunAll executes extract, classify, and summarize in order. Classification
// batches repeat until no eligible documents remain, so a full run drains
// the backlog instead of processing a single batch. A stage error stops the
// run; everything committed so far stays committed.
func RunAll(ctx context.Context, extractor Extractor, classifier Classifier, summarizer Summarizer, opts RunOptions) (*Result, error) {
	started := time.Now()
	result := &Result{}

	fmt.Printf("Step 1/3: Extracting documents...\n")
	extractResult, err := extractor.Run(ctx, opts.ExtractLimit)
	result.Extract = extractResult
	if err != nil {
		return result, fmt.Errorf("extraction failed: %w", err)
	}
	fmt.Printf("  %d created, %d updated (%d pages)\n",
		extractResult.Created, extractResult.Updated, extractResult.Pages)

	fmt.Printf("Step 2/3: Classifying documents...\n")
	total := &classify.Result{}
	for {
		batch, err := classifier.Run(ctx)
		if batch != nil {
			total.Classified += batch.Classified
			total.Fallback += batch.Fallback
			total.Failed += batch.Failed
		}
		result.Classify = total
		if err != nil {
			return result, fmt.Errorf("classification failed: %w", err)
		}
		processed := batch.Classified + batch.Fallback + batch.Failed
		if processed == 0 {
			break
		}
		if opts.Verbose {
			fmt.Printf("[VERBOSE] Batch: %d classified, %d fallback, %d failed\n",
				batch.Classified, batch.Fallback, batch.Failed)
		}
	}
	fmt.Printf("  %d classified, %d fallback, %d failed\n",
		total.Classified, total.Fallback, total.Failed)
	if total.Failed > 0 {
		fmt.Printf("Warning: %d documents failed classification and will be retried\n", total.Failed)
	}

	fmt.Printf("Step 3/3: Building weekly summary...\n")
	summaryResult, err := summarizer.Run(ctx, opts.WeekID)
	result.Summary = summaryResult
	if err != nil {
		return result, fmt.Errorf("summary failed: %w", err)
	}
	if summaryResult.Summary == nil {
		fmt.Printf("  no classified documents in %s, nothing to summarize\n", summaryResult.WeekID)
	} else {
		fmt.Printf("  %s: %d documents summarized\n", summaryResult.WeekID, summaryResult.Documents)
	}

	result.Duration = time.Since(started)
	fmt.Printf("Done in %s\n", result.Duration.Round(time.Millisecond))
	return result, nil
}
