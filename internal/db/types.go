package db

import (
	"time"

	"github.com/google/uuid"
)

// Stage status constants shared by all processing stages
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusFailed     = "failed"
)

// Stage name constants
const (
	StageExtract   = "extract"
	StageClassify  = "classify"
	StageSummarize = "summarize"
)

// SourceDocument is a raw workspace document as stored after extraction
type SourceDocument struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
	EditedAt   time.Time `json:"edited_at"`
	IngestedAt time.Time `json:"ingested_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Classification is the current classification of a document. A document
// has at most one row; re-classification replaces it.
type Classification struct {
	ID           uuid.UUID `json:"id"`
	DocumentID   string    `json:"document_id"`
	Category     string    `json:"category"`
	Subcategory  string    `json:"subcategory"`
	Confidence   float64   `json:"confidence"`
	Rationale    string    `json:"rationale"`
	Model        string    `json:"model"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// ProcessingRecord tracks a document's progress through the pipeline stages
type ProcessingRecord struct {
	DocumentID        string     `json:"document_id"`
	ExtractStatus     string     `json:"extract_status"`
	ClassifyStatus    string     `json:"classify_status"`
	SummarizeStatus   string     `json:"summarize_status"`
	ClassifyAttempts  int        `json:"classify_attempts"`
	SummarizeAttempts int        `json:"summarize_attempts"`
	LastError         *string    `json:"last_error,omitempty"`
	ExtractedAt       *time.Time `json:"extracted_at,omitempty"`
	ClassifiedAt      *time.Time `json:"classified_at,omitempty"`
	SummarizedAt      *time.Time `json:"summarized_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ClassifiedDocument joins a document with its current classification
type ClassifiedDocument struct {
	Document       SourceDocument `json:"document"`
	Classification Classification `json:"classification"`
}

// WeeklySummary is the aggregated report for one ISO week
type WeeklySummary struct {
	WeekID            string             `json:"week_id"`
	DocumentIDs       []string           `json:"document_ids"`
	CategoryCounts    map[string]int     `json:"category_counts"`
	SubcategoryCounts map[string]int     `json:"subcategory_counts"`
	MindsetIndicators map[string]float64 `json:"mindset_indicators"`
	SummaryText       string             `json:"summary_text"`
	KeyInsights       []string           `json:"key_insights"`
	GeneratedAt       time.Time          `json:"generated_at"`
}

// Stats summarizes pipeline progress across all processing records
type Stats struct {
	TotalDocuments     int `json:"total_documents"`
	ClassifyPending    int `json:"classify_pending"`
	ClassifyDone       int `json:"classify_done"`
	ClassifyFailed     int `json:"classify_failed"`
	ClassifyExhausted  int `json:"classify_exhausted"`
	SummarizePending   int `json:"summarize_pending"`
	SummarizeDone      int `json:"summarize_done"`
	SummarizeFailed    int `json:"summarize_failed"`
	WeeklySummaryCount int `json:"weekly_summary_count"`
}
