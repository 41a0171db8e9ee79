package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetClassification retrieves the current classification for a document,
// or nil if the document has not been classified
func (db *DB) GetClassification(ctx context.Context, documentID string) (*Classification, error) {
	var cls Classification
	err := db.pool.QueryRow(ctx,
		`SELECT id, document_id, category, subcategory, confidence, rationale, model, classified_at
		 FROM classifications
		 WHERE document_id = $1`,
		documentID,
	).Scan(&cls.ID, &cls.DocumentID, &cls.Category, &cls.Subcategory,
		&cls.Confidence, &cls.Rationale, &cls.Model, &cls.ClassifiedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get classification for %s: %w", documentID, err)
	}
	return &cls, nil
}

// ListClassifiedBetween returns all documents created in [start, end) that
// have a done classification, joined with that classification, ordered by
// creation time
func (db *DB) ListClassifiedBetween(ctx context.Context, start, end time.Time) ([]ClassifiedDocument, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT d.id, d.title, d.content, d.url, d.created_at, d.edited_at, d.ingested_at, d.last_seen_at,
		        c.id, c.document_id, c.category, c.subcategory, c.confidence, c.rationale, c.model, c.classified_at
		 FROM source_documents d
		 JOIN classifications c ON c.document_id = d.id
		 JOIN processing_records r ON r.document_id = d.id
		 WHERE r.classify_status = 'done'
		   AND d.created_at >= $1 AND d.created_at < $2
		 ORDER BY d.created_at`,
		start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list classified documents: %w", err)
	}
	defer rows.Close()

	var docs []ClassifiedDocument
	for rows.Next() {
		var cd ClassifiedDocument
		d, c := &cd.Document, &cd.Classification
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Content, &d.URL, &d.CreatedAt, &d.EditedAt, &d.IngestedAt, &d.LastSeenAt,
			&c.ID, &c.DocumentID, &c.Category, &c.Subcategory, &c.Confidence, &c.Rationale, &c.Model, &c.ClassifiedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classified document: %w", err)
		}
		docs = append(docs, cd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read classified documents: %w", err)
	}
	return docs, nil
}
