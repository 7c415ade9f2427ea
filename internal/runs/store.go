package runs

import "context"

// Store persists runs. Update applies fn atomically to the stored run and
// writes the result back unless fn returns an error.
type Store interface {
	Create(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (Run, error)
	Update(ctx context.Context, id string, fn func(*Run) error) (Run, error)
}
