package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    owner_id,
    title,
    category,
    content,
    metadata,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OwnerID,
		doc.Title,
		doc.Category,
		doc.Content,
		metadata,
		doc.CreatedAt,
	)
	return err
}

// GetByID returns a document owned by ownerID.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, documentID string) (Document, error) {
	const query = `
SELECT id, owner_id, title, category, content, metadata, created_at
FROM documents
WHERE id = $1 AND owner_id = $2 AND deleted_at IS NULL`

	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByOwner returns documents newest first. An empty category matches all.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID, category string, limit, offset int) ([]Document, error) {
	const query = `
SELECT id, owner_id, title, category, content, metadata, created_at
FROM documents
WHERE owner_id = $1 AND deleted_at IS NULL AND ($2 = '' OR category = $2)
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, ownerID, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var metadata []byte
	if err := row.Scan(
		&doc.ID,
		&doc.OwnerID,
		&doc.Title,
		&doc.Category,
		&doc.Content,
		&metadata,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return Document{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return doc, nil
}

func encodeMetadata(m map[string]string) ([]byte, error) {
	if m == nil {
		m = map[string]string{}
	}
	return json.Marshal(m)
}

var _ DocumentsRepo = (*PGRepo)(nil)
