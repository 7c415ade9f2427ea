package exports

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an export row.
func (r *PGRepo) Create(ctx context.Context, export Export) error {
	const query = `
INSERT INTO exports (
    id, owner_id, title, category, file_name, storage_key, content_type, size_bytes, item_count, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.DB.ExecContext(ctx, query,
		export.ID,
		export.OwnerID,
		export.Title,
		export.Category,
		export.FileName,
		export.StorageKey,
		export.ContentType,
		export.SizeBytes,
		export.ItemCount,
		export.CreatedAt,
	)
	return err
}

// GetByID returns an export by ID for an owner.
func (r *PGRepo) GetByID(ctx context.Context, ownerID, exportID string) (Export, error) {
	const query = `
SELECT id, owner_id, title, category, file_name, storage_key, content_type, size_bytes, item_count, created_at
FROM exports
WHERE id = $1 AND deleted_at IS NULL
LIMIT 1`
	export, err := scanExport(r.DB.QueryRowContext(ctx, query, exportID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Export{}, ErrNotFound
		}
		return Export{}, err
	}
	if export.OwnerID != ownerID {
		return Export{}, ErrForbidden
	}
	return export, nil
}

// ListByOwner lists exports ordered newest-first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Export, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, owner_id, title, category, file_name, storage_key, content_type, size_bytes, item_count, created_at
FROM exports
WHERE owner_id = $1 AND deleted_at IS NULL
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Export, 0)
	for rows.Next() {
		export, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, export)
	}
	return items, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExport(row rowScanner) (Export, error) {
	var export Export
	err := row.Scan(
		&export.ID,
		&export.OwnerID,
		&export.Title,
		&export.Category,
		&export.FileName,
		&export.StorageKey,
		&export.ContentType,
		&export.SizeBytes,
		&export.ItemCount,
		&export.CreatedAt,
	)
	return export, err
}

var _ Repo = (*PGRepo)(nil)
