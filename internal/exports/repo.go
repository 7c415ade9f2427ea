package exports

import "context"

// Repo defines persistence operations for export metadata.
type Repo interface {
	Create(ctx context.Context, export Export) error
	GetByID(ctx context.Context, ownerID, exportID string) (Export, error)
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Export, error)
}
