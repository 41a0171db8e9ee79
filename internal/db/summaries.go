package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// SaveWeeklySummary inserts or overwrites the summary for a week
func (db *DB) SaveWeeklySummary(ctx context.Context, summary *WeeklySummary) error {
	categoryJSON, err := json.Marshal(summary.CategoryCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal category counts: %w", err)
	}
	subcategoryJSON, err := json.Marshal(summary.SubcategoryCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal subcategory counts: %w", err)
	}
	indicatorJSON, err := json.Marshal(summary.MindsetIndicators)
	if err != nil {
		return fmt.Errorf("failed to marshal mindset indicators: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO weekly_summaries
		 	(week_id, document_ids, category_counts, subcategory_counts, mindset_indicators, summary_text, key_insights)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (week_id) DO UPDATE SET
		 	document_ids = $2, category_counts = $3, subcategory_counts = $4,
		 	mindset_indicators = $5, summary_text = $6, key_insights = $7,
		 	generated_at = NOW()`,
		summary.WeekID, summary.DocumentIDs, categoryJSON, subcategoryJSON,
		indicatorJSON, summary.SummaryText, summary.KeyInsights,
	)
	if err != nil {
		return fmt.Errorf("failed to save weekly summary %s: %w", summary.WeekID, err)
	}
	return nil
}

// GetWeeklySummary retrieves the summary for a week, or nil if none exists
func (db *DB) GetWeeklySummary(ctx context.Context, weekID string) (*WeeklySummary, error) {
	var summary WeeklySummary
	var categoryJSON, subcategoryJSON, indicatorJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT week_id, document_ids, category_counts, subcategory_counts,
		        mindset_indicators, summary_text, key_insights, generated_at
		 FROM weekly_summaries
		 WHERE week_id = $1`,
		weekID,
	).Scan(&summary.WeekID, &summary.DocumentIDs, &categoryJSON, &subcategoryJSON,
		&indicatorJSON, &summary.SummaryText, &summary.KeyInsights, &summary.GeneratedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get weekly summary %s: %w", weekID, err)
	}

	if err := json.Unmarshal(categoryJSON, &summary.CategoryCounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category counts: %w", err)
	}
	if err := json.Unmarshal(subcategoryJSON, &summary.SubcategoryCounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subcategory counts: %w", err)
	}
	if err := json.Unmarshal(indicatorJSON, &summary.MindsetIndicators); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mindset indicators: %w", err)
	}
	return &summary, nil
}

// ListWeeklySummaries returns all stored summaries, newest week first
func (db *DB) ListWeeklySummaries(ctx context.Context) ([]WeeklySummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT week_id, document_ids, summary_text, key_insights, generated_at
		 FROM weekly_summaries
		 ORDER BY week_id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list weekly summaries: %w", err)
	}
	defer rows.Close()

	var summaries []WeeklySummary
	for rows.Next() {
		var s WeeklySummary
		if err := rows.Scan(&s.WeekID, &s.DocumentIDs, &s.SummaryText, &s.KeyInsights, &s.GeneratedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weekly summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read weekly summaries: %w", err)
	}
	return summaries, nil
}
