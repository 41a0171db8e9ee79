package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/notion-insights/internal/db"
	"github.com/jonathan/notion-insights/internal/llm"
	"github.com/jonathan/notion-insights/internal/prompts"
	"github.com/jonathan/notion-insights/internal/schemas"
	"github.com/jonathan/notion-insights/internal/taxonomy"
)

// maxTitleSample bounds how many document titles are sent to the model.
const maxTitleSample = 20

// Store persists weekly summaries and summarize-stage transitions.
type Store interface {
	ListClassifiedBetween(ctx context.Context, start, end time.Time) ([]db.ClassifiedDocument, error)
	ClaimForSummary(ctx context.Context, documentIDs []string, maxAttempts int) ([]string, error)
	MarkSummaryDone(ctx context.Context, documentIDs []string) error
	MarkSummaryFailed(ctx context.Context, documentIDs []string, errMsg string) error
	SaveWeeklySummary(ctx context.Context, summary *db.WeeklySummary) error
}

// Limiter gates outbound API calls.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Result reports what one summary run did.
type Result struct {
	WeekID    string
	Documents int
	Summary   *db.WeeklySummary // nil when the week had no classified documents
}

// Engine runs the weekly aggregation stage.
type Engine struct {
	store       Store
	client      llm.Client
	limiter     Limiter
	maxAttempts int
	now         func() time.Time
}

// NewEngine wires a summary run.
func NewEngine(store Store, client llm.Client, limiter Limiter, maxAttempts int) *Engine {
	return &Engine{
		store:       store,
		client:      client,
		limiter:     limiter,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// summaryResponse mirrors the JSON shape the model is prompted to return.
type summaryResponse struct {
	SummaryText string   `json:"summary_text"`
	KeyInsights []string `json:"key_insights"`
}

// Run aggregates one ISO week. An empty weekID targets the week containing
// the current time. A week with no classified documents is a no-op: no row
// is written and no record is touched. Regenerating an existing week
// overwrites its summary.
func (e *Engine) Run(ctx context.Context, weekID string) (*Result, error) {
	if weekID == "" {
		weekID = WeekID(e.now())
	}
	start, end, err := WeekBounds(weekID)
	if err != nil {
		return nil, err
	}

	docs, err := e.store.ListClassifiedBetween(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents for %s: %w", weekID, err)
	}

	result := &Result{WeekID: weekID, Documents: len(docs)}
	if len(docs) == 0 {
		return result, nil
	}

	categoryCounts := map[taxonomy.Category]int{}
	subCounts := map[taxonomy.Subcategory]int{}
	ids := make([]string, 0, len(docs))
	titles := make([]string, 0, len(docs))
	for _, cd := range docs {
		categoryCounts[taxonomy.Category(cd.Classification.Category)]++
		subCounts[taxonomy.Subcategory(cd.Classification.Subcategory)]++
		ids = append(ids, cd.Document.ID)
		titles = append(titles, cd.Document.Title)
	}
	if len(titles) > maxTitleSample {
		titles = titles[:maxTitleSample]
	}

	claimed, err := e.store.ClaimForSummary(ctx, ids, e.maxAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to claim records for %s: %w", weekID, err)
	}

	response, err := e.generate(ctx, weekID, len(docs), categoryCounts, subCounts, titles)
	if err != nil {
		if markErr := e.store.MarkSummaryFailed(ctx, claimed, err.Error()); markErr != nil {
			return nil, fmt.Errorf("failed to mark summary failed for %s: %w", weekID, markErr)
		}
		return nil, err
	}

	summary := &db.WeeklySummary{
		WeekID:            weekID,
		DocumentIDs:       ids,
		CategoryCounts:    stringCategoryCounts(categoryCounts),
		SubcategoryCounts: stringSubcategoryCounts(subCounts),
		MindsetIndicators: MindsetIndicators(subCounts, len(docs)),
		SummaryText:       response.SummaryText,
		KeyInsights:       response.KeyInsights,
	}
	if err := e.store.SaveWeeklySummary(ctx, summary); err != nil {
		return nil, fmt.Errorf("failed to save summary for %s: %w", weekID, err)
	}
	if err := e.store.MarkSummaryDone(ctx, claimed); err != nil {
		return nil, fmt.Errorf("failed to mark summary done for %s: %w", weekID, err)
	}

	result.Summary = summary
	return result, nil
}

// generate asks the model for the narrative summary and validates its
// response.
func (e *Engine) generate(ctx context.Context, weekID string, total int,
	categoryCounts map[taxonomy.Category]int, subCounts map[taxonomy.Subcategory]int,
	titles []string) (*summaryResponse, error) {

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter interrupted: %w", err)
		}
	}

	prompt := prompts.Format(prompts.MustGet("summary.json", "weekly-report"), map[string]string{
		"Week":              weekID,
		"Total":             fmt.Sprintf("%d", total),
		"CategoryCounts":    formatCategoryCounts(categoryCounts),
		"SubcategoryCounts": formatSubcategoryCounts(subCounts),
		"Documents":         "- " + strings.Join(titles, "\n- "),
	})

	raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}
	if err := schemas.Validate(schemas.SummaryResponse, raw); err != nil {
		return nil, fmt.Errorf("summary response failed validation: %w", err)
	}

	var resp summaryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse summary response: %w", err)
	}
	return &resp, nil
}

// SortedSubcategoryCounts orders counts descending, breaking ties by
// taxonomy declaration order.
func SortedSubcategoryCounts(subCounts map[taxonomy.Subcategory]int) []taxonomy.Subcategory {
	subs := make([]taxonomy.Subcategory, 0, len(subCounts))
	for sub := range subCounts {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		if subCounts[subs[i]] != subCounts[subs[j]] {
			return subCounts[subs[i]] > subCounts[subs[j]]
		}
		return taxonomy.DeclarationIndex(subs[i]) < taxonomy.DeclarationIndex(subs[j])
	})
	return subs
}

// SortedCategoryCounts orders counts descending, breaking ties by
// taxonomy declaration order.
func SortedCategoryCounts(categoryCounts map[taxonomy.Category]int) []taxonomy.Category {
	cats := make([]taxonomy.Category, 0, len(categoryCounts))
	for c := range categoryCounts {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if categoryCounts[cats[i]] != categoryCounts[cats[j]] {
			return categoryCounts[cats[i]] > categoryCounts[cats[j]]
		}
		return taxonomy.CategoryIndex(cats[i]) < taxonomy.CategoryIndex(cats[j])
	})
	return cats
}

func formatCategoryCounts(categoryCounts map[taxonomy.Category]int) string {
	parts := make([]string, 0, len(categoryCounts))
	for _, c := range SortedCategoryCounts(categoryCounts) {
		parts = append(parts, fmt.Sprintf("%s: %d", c, categoryCounts[c]))
	}
	return strings.Join(parts, ", ")
}

func formatSubcategoryCounts(subCounts map[taxonomy.Subcategory]int) string {
	parts := make([]string, 0, len(subCounts))
	for _, s := range SortedSubcategoryCounts(subCounts) {
		parts = append(parts, fmt.Sprintf("%s: %d", s, subCounts[s]))
	}
	return strings.Join(parts, ", ")
}

func stringCategoryCounts(categoryCounts map[taxonomy.Category]int) map[string]int {
	out := make(map[string]int, len(categoryCounts))
	for c, n := range categoryCounts {
		out[string(c)] = n
	}
	return out
}

func stringSubcategoryCounts(subCounts map[taxonomy.Subcategory]int) map[string]int {
	out := make(map[string]int, len(subCounts))
	for s, n := range subCounts {
		out[string(s)] = n
	}
	return out
}
