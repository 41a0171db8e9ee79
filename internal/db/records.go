package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ClaimTimeout is how long an in_progress claim is honored. A run that was
// interrupted after claiming (crash, context cancel) leaves its rows
// in_progress; once the timeout passes they become claimable again, so an
// interrupted run is always resumable.
const ClaimTimeout = 15 * time.Minute

// EnsureRecord guarantees a processing record exists for a document after
// extraction. A new record starts with extract done and the later stages
// pending; an existing record keeps its downstream state untouched.
func (db *DB) EnsureRecord(ctx context.Context, documentID string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO processing_records (document_id, extract_status, extracted_at)
		 VALUES ($1, 'done', NOW())
		 ON CONFLICT (document_id) DO UPDATE SET
		 	extract_status = 'done', updated_at = NOW()`,
		documentID,
	)
	if err != nil {
		return fmt.Errorf("failed to ensure record for %s: %w", documentID, err)
	}
	return nil
}

// GetRecord retrieves a processing record by document ID, or nil if missing
func (db *DB) GetRecord(ctx context.Context, documentID string) (*ProcessingRecord, error) {
	var rec ProcessingRecord
	err := db.pool.QueryRow(ctx,
		`SELECT document_id, extract_status, classify_status, summarize_status,
		        classify_attempts, summarize_attempts, last_error,
		        extracted_at, classified_at, summarized_at, updated_at
		 FROM processing_records
		 WHERE document_id = $1`,
		documentID,
	).Scan(&rec.DocumentID, &rec.ExtractStatus, &rec.ClassifyStatus, &rec.SummarizeStatus,
		&rec.ClassifyAttempts, &rec.SummarizeAttempts, &rec.LastError,
		&rec.ExtractedAt, &rec.ClassifiedAt, &rec.SummarizedAt, &rec.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get record %s: %w", documentID, err)
	}
	return &rec, nil
}

// ClaimForClassification atomically moves up to batchSize eligible records
// to classify in_progress and returns their documents. Eligible means
// extract done, classify pending or failed (or an expired in_progress
// claim), and fewer than maxAttempts attempts. Concurrent claimers never
// receive the same document.
func (db *DB) ClaimForClassification(ctx context.Context, batchSize, maxAttempts int) ([]SourceDocument, error) {
	staleBefore := time.Now().Add(-ClaimTimeout)
	rows, err := db.pool.Query(ctx,
		`UPDATE processing_records pr
		 SET classify_status = 'in_progress', updated_at = NOW()
		 FROM (
		 	SELECT document_id FROM processing_records
		 	WHERE extract_status = 'done'
		 	  AND (classify_status IN ('pending', 'failed')
		 	       OR (classify_status = 'in_progress' AND updated_at < $3))
		 	  AND classify_attempts < $1
		 	ORDER BY updated_at
		 	LIMIT $2
		 	FOR UPDATE SKIP LOCKED
		 ) candidate
		 WHERE pr.document_id = candidate.document_id
		 RETURNING pr.document_id`,
		maxAttempts, batchSize, staleBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim documents for classification: %w", err)
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan claimed document ID: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed document IDs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	docRows, err := db.pool.Query(ctx,
		`SELECT id, title, content, url, created_at, edited_at, ingested_at, last_seen_at
		 FROM source_documents
		 WHERE id = ANY($1)
		 ORDER BY created_at`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load claimed documents: %w", err)
	}
	defer docRows.Close()

	var docs []SourceDocument
	for docRows.Next() {
		var d SourceDocument
		if err := docRows.Scan(&d.ID, &d.Title, &d.Content, &d.URL,
			&d.CreatedAt, &d.EditedAt, &d.IngestedAt, &d.LastSeenAt); err != nil {
			return nil, fmt.Errorf("failed to scan claimed document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := docRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed documents: %w", err)
	}
	return docs, nil
}

// CompleteClassification stores the classification result and marks the
// record's classify stage done in one transaction, so a done record always
// has a current classification row.
func (db *DB) CompleteClassification(ctx context.Context, cls *Classification) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if cls.ID == uuid.Nil {
		cls.ID = uuid.New()
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO classifications (id, document_id, category, subcategory, confidence, rationale, model)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (document_id) DO UPDATE SET
		 	category = $3, subcategory = $4, confidence = $5, rationale = $6,
		 	model = $7, classified_at = NOW()`,
		cls.ID, cls.DocumentID, cls.Category, cls.Subcategory, cls.Confidence, cls.Rationale, cls.Model,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification for %s: %w", cls.DocumentID, err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE processing_records
		 SET classify_status = 'done', classified_at = NOW(), last_error = NULL, updated_at = NOW()
		 WHERE document_id = $1`,
		cls.DocumentID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark classify done for %s: %w", cls.DocumentID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit classification for %s: %w", cls.DocumentID, err)
	}
	return nil
}

// MarkClassifyFailed records a failed classification attempt
func (db *DB) MarkClassifyFailed(ctx context.Context, documentID, errMsg string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE processing_records
		 SET classify_status = 'failed', classify_attempts = classify_attempts + 1,
		     last_error = $2, updated_at = NOW()
		 WHERE document_id = $1`,
		documentID, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to mark classify failed for %s: %w", documentID, err)
	}
	return nil
}

// ClaimForSummary atomically moves the summarize stage of the given
// documents to in_progress. Only records whose summarize stage is pending
// or failed (or holds an expired in_progress claim) with attempts below
// maxAttempts are claimed; already-done records are skipped so re-running a
// week does not inflate attempts. Returns the IDs actually claimed.
func (db *DB) ClaimForSummary(ctx context.Context, documentIDs []string, maxAttempts int) ([]string, error) {
	staleBefore := time.Now().Add(-ClaimTimeout)
	rows, err := db.pool.Query(ctx,
		`UPDATE processing_records
		 SET summarize_status = 'in_progress', updated_at = NOW()
		 WHERE document_id = ANY($1)
		   AND (summarize_status IN ('pending', 'failed')
		        OR (summarize_status = 'in_progress' AND updated_at < $3))
		   AND summarize_attempts < $2
		 RETURNING document_id`,
		documentIDs, maxAttempts, staleBefore,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to claim documents for summary: %w", err)
	}
	defer rows.Close()

	var claimed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan claimed document ID: %w", err)
		}
		claimed = append(claimed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read claimed document IDs: %w", err)
	}
	return claimed, nil
}

// MarkSummaryDone marks the summarize stage done for the given documents
func (db *DB) MarkSummaryDone(ctx context.Context, documentIDs []string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE processing_records
		 SET summarize_status = 'done', summarized_at = NOW(), last_error = NULL, updated_at = NOW()
		 WHERE document_id = ANY($1)`,
		documentIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to mark summary done: %w", err)
	}
	return nil
}

// MarkSummaryFailed records a failed summary attempt for the given documents
func (db *DB) MarkSummaryFailed(ctx context.Context, documentIDs []string, errMsg string) error {
	if len(documentIDs) == 0 {
		return nil
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE processing_records
		 SET summarize_status = 'failed', summarize_attempts = summarize_attempts + 1,
		     last_error = $2, updated_at = NOW()
		 WHERE document_id = ANY($1)`,
		documentIDs, errMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to mark summary failed: %w", err)
	}
	return nil
}

// ResetFailed returns failed and in_progress stages to pending and zeroes
// their attempt counters, making exhausted or stranded documents eligible
// again. Resetting in_progress is an operator decision: do not run it while
// a pipeline run is active, or its claimed batch may be processed twice.
// With an empty documentID every matching record is reset; otherwise only
// the given one. Returns the number of records touched.
func (db *DB) ResetFailed(ctx context.Context, documentID string) (int64, error) {
	query := `UPDATE processing_records
	          SET classify_status = CASE WHEN classify_status IN ('failed', 'in_progress') THEN 'pending' ELSE classify_status END,
	              summarize_status = CASE WHEN summarize_status IN ('failed', 'in_progress') THEN 'pending' ELSE summarize_status END,
	              classify_attempts = CASE WHEN classify_status IN ('failed', 'in_progress') THEN 0 ELSE classify_attempts END,
	              summarize_attempts = CASE WHEN summarize_status IN ('failed', 'in_progress') THEN 0 ELSE summarize_attempts END,
	              last_error = NULL, updated_at = NOW()
	          WHERE (classify_status IN ('failed', 'in_progress') OR summarize_status IN ('failed', 'in_progress'))`
	args := []interface{}{}
	if documentID != "" {
		query += ` AND document_id = $1`
		args = append(args, documentID)
	}

	tag, err := db.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to reset failed records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetStats aggregates pipeline progress across all records
func (db *DB) GetStats(ctx context.Context, maxAttempts int) (*Stats, error) {
	var stats Stats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE classify_status IN ('pending', 'in_progress')),
		        COUNT(*) FILTER (WHERE classify_status = 'done'),
		        COUNT(*) FILTER (WHERE classify_status = 'failed'),
		        COUNT(*) FILTER (WHERE classify_status = 'failed' AND classify_attempts >= $1),
		        COUNT(*) FILTER (WHERE summarize_status IN ('pending', 'in_progress')),
		        COUNT(*) FILTER (WHERE summarize_status = 'done'),
		        COUNT(*) FILTER (WHERE summarize_status = 'failed')
		 FROM processing_records`,
		maxAttempts,
	).Scan(&stats.TotalDocuments,
		&stats.ClassifyPending, &stats.ClassifyDone, &stats.ClassifyFailed, &stats.ClassifyExhausted,
		&stats.SummarizePending, &stats.SummarizeDone, &stats.SummarizeFailed)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	err = db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM weekly_summaries`).Scan(&stats.WeeklySummaryCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count weekly summaries: %w", err)
	}
	return &stats, nil
}
