package runs

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore constructs a MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Create stores a new run.
func (s *MemoryStore) Create(ctx context.Context, run Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := json.Marshal(run)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[run.ID] = raw
	return nil
}

// Get returns a copy of the run.
func (s *MemoryStore) Get(ctx context.Context, id string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.Lock()
	raw, ok := s.data[id]
	s.mu.Unlock()
	if !ok {
		return Run{}, ErrNotFound
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, err
	}
	return run, nil
}

// Update applies fn under the store lock.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Run) error) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[id]
	if !ok {
		return Run{}, ErrNotFound
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return Run{}, err
	}
	if err := fn(&run); err != nil {
		return Run{}, err
	}
	updated, err := json.Marshal(run)
	if err != nil {
		return Run{}, err
	}
	s.data[id] = updated
	return run, nil
}

var _ Store = (*MemoryStore)(nil)
