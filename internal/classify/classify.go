package classify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/notion-insights/internal/db"
	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/prompts"
	"github.com/jonathan/notion-insights/internal/taxonomy"
)

// FallbackRationale marks classifications produced by the fallback policy
// instead of an accepted model judgment.
const FallbackRationale = "fallback: model response rejected or below confidence threshold"

// Store persists classification outcomes and record transitions.
type Store interface {
	ClaimForClassification(ctx context.Context, batchSize, maxAttempts int) ([]db.SourceDocument, error)
	CompleteClassification(ctx context.Context, cls *db.Classification) error
	MarkClassifyFailed(ctx context.Context, documentID, errMsg string) error
}

// Limiter gates outbound API calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Options tune one classification run.
type Options struct {
	BatchSize           int
	Workers             int
	MaxAttempts         int
	MaxContentChars     int
	ConfidenceThreshold float64
}

// Result reports what one classification run did.
type Result struct {
	Classified int // accepted model judgments
	Fallback   int // fallback policy applied, record still done
	Failed     int // transport errors, record failed and retryable
}

// Orchestrator runs the classification stage.
type Orchestrator struct {
	store   Store
	client  llm.Client
	limiter Limiter
	opts    Options
}

// NewOrchestrator wires a classification run. Workers below one run
// sequentially.
func NewOrchestrator(store Store, client llm.Client, limiter Limiter, opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Orchestrator{store: store, client: client, limiter: limiter, opts: opts}
}

// Run claims one batch of eligible documents and classifies them with
// bounded parallelism. Model responses that fail validation or fall below
// the confidence threshold are recorded via the fallback policy and still
// advance the record; transport errors mark the record failed for retry.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	docs, err := o.store.ClaimForClassification(ctx, o.opts.BatchSize, o.opts.MaxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to claim batch: %w", err)
	}

	result := &Result{}
	if len(docs) == 0 {
		return result, nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for i := range docs {
		doc := docs[i]
		g.Go(func() error {
			outcome, err := o.classifyOne(gctx, &doc)
			if err != nil {
				return err
			}
			mu.Lock()
			switch outcome {
			case outcomeClassified:
				result.Classified++
			case outcomeFallback:
				result.Fallback++
			case outcomeFailed:
				result.Failed++
			}
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

type outcome int

const (
	outcomeClassified outcome = iota
	outcomeFallback
	outcomeFailed
)

// classifyOne processes a single claimed document. The returned error is
// reserved for storage failures; model and parse problems are absorbed into
// the outcome per policy.
func (o *Orchestrator) classifyOne(ctx context.Context, doc *db.SourceDocument) (outcome, error) {
	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return outcomeFailed, fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	content := truncateContent(doc.Content, o.opts.MaxContentChars)

	prompt := prompts.Format(prompts.MustGet("classification.json", "classify-document"), map[string]string{
		"Title":   doc.Title,
		"Content": content,
	})

	raw, err := o.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		if markErr := o.store.MarkClassifyFailed(ctx, doc.ID, err.Error()); markErr != nil {
			return outcomeFailed, fmt.Errorf("failed to mark %s failed: %w", doc.ID, markErr)
		}
		return outcomeFailed, nil
	}

	judgment, parseErr := ParseJudgment(raw)
	accepted := parseErr == nil && judgment.Confidence >= o.opts.ConfidenceThreshold

	cls := &db.Classification{
		DocumentID: doc.ID,
		Model:      o.client.Model(llm.TierLite),
	}
	if accepted {
		cls.Category = string(judgment.Category)
		cls.Subcategory = string(judgment.Subcategory)
		cls.Confidence = judgment.Confidence
		cls.Rationale = judgment.Rationale
	} else {
		cls.Category = string(taxonomy.CategoryKnowledge)
		cls.Subcategory = string(taxonomy.SubDocumentation)
		cls.Confidence = 0
		cls.Rationale = FallbackRationale
	}

	if err := o.store.CompleteClassification(ctx, cls); err != nil {
		return outcomeFailed, fmt.Errorf("failed to store classification for %s: %w", doc.ID, err)
	}

	if accepted {
		return outcomeClassified, nil
	}
	return outcomeFallback, nil
}

// truncateContent cuts content to at most maxBytes without splitting a
// multi-byte rune. A non-positive limit leaves content untouched.
func truncateContent(content string, maxBytes int) string {
	if maxBytes <= 0 || len(content) <= maxBytes {
		return content
	}
	cut := maxBytes
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	return content[:cut]
}

// IsParseError reports whether err is (or wraps) a response parse failure.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
