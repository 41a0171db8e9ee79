package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestStatusConstants(t *testing.T) {
	assert.Equal(t, "pending", StatusPending)
	assert.Equal(t, "in_progress", StatusInProgress)
	assert.Equal(t, "done", StatusDone)
	assert.Equal(t, "failed", StatusFailed)
}

func TestStageConstants(t *testing.T) {
	assert.Equal(t, "extract", StageExtract)
	assert.Equal(t, "classify", StageClassify)
	assert.Equal(t, "summarize", StageSummarize)
}

func TestProcessingRecord_ZeroValueIsFresh(t *testing.T) {
	rec := ProcessingRecord{DocumentID: "doc-1"}

	assert.Zero(t, rec.ClassifyAttempts)
	assert.Zero(t, rec.SummarizeAttempts)
	assert.Nil(t, rec.LastError)
	assert.Nil(t, rec.ClassifiedAt)
	assert.Nil(t, rec.SummarizedAt)
}

func TestClassification_Fields(t *testing.T) {
	now := time.Now()
	cls := Classification{
		ID:           uuid.New(),
		DocumentID:   "doc-1",
		Category:     "knowledge",
		Subcategory:  "tutorial",
		Confidence:   0.92,
		Rationale:    "step-by-step walkthrough",
		Model:        "gemini-2.5-flash-lite",
		ClassifiedAt: now,
	}

	assert.NotEqual(t, uuid.Nil, cls.ID)
	assert.Equal(t, "doc-1", cls.DocumentID)
	assert.Equal(t, "knowledge", cls.Category)
	assert.Equal(t, "tutorial", cls.Subcategory)
	assert.InDelta(t, 0.92, cls.Confidence, 1e-9)
}

func TestWeeklySummary_Fields(t *testing.T) {
	summary := WeeklySummary{
		WeekID:            "2024-W01",
		DocumentIDs:       []string{"a", "b"},
		CategoryCounts:    map[string]int{"project": 2},
		SubcategoryCounts: map[string]int{"planning": 2},
		MindsetIndicators: map[string]float64{"project_orientation": 1.0},
		SummaryText:       "Two planning documents.",
		KeyInsights:       []string{"planning heavy"},
	}

	assert.Equal(t, "2024-W01", summary.WeekID)
	assert.Len(t, summary.DocumentIDs, 2)
	assert.Equal(t, 2, summary.CategoryCounts["project"])
	assert.InDelta(t, 1.0, summary.MindsetIndicators["project_orientation"], 1e-9)
}
