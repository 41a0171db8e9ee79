package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertDocument inserts or refreshes a document keyed by its source page ID.
// ingested_at is preserved across re-extraction; last_seen_at always moves
// forward. Returns true when the document was newly created.
func (db *DB) UpsertDocument(ctx context.Context, doc *SourceDocument) (bool, error) {
	var created bool
	err := db.pool.QueryRow(ctx,
		`INSERT INTO source_documents (id, title, content, url, created_at, edited_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO UPDATE SET
		 	title = $2, content = $3, url = $4, edited_at = $6, last_seen_at = NOW()
		 RETURNING (xmax = 0)`,
		doc.ID, doc.Title, doc.Content, doc.URL, doc.CreatedAt, doc.EditedAt,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert document %s: %w", doc.ID, err)
	}
	return created, nil
}

// GetDocument retrieves a document by ID, or nil if it does not exist
func (db *DB) GetDocument(ctx context.Context, id string) (*SourceDocument, error) {
	var doc SourceDocument
	err := db.pool.QueryRow(ctx,
		`SELECT id, title, content, url, created_at, edited_at, ingested_at, last_seen_at
		 FROM source_documents
		 WHERE id = $1`,
		id,
	).Scan(&doc.ID, &doc.Title, &doc.Content, &doc.URL,
		&doc.CreatedAt, &doc.EditedAt, &doc.IngestedAt, &doc.LastSeenAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return &doc, nil
}

// CountDocuments returns the number of stored documents
func (db *DB) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM source_documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}
