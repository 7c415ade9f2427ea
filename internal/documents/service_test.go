package documents

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingRepo struct {
	*MemoryRepo
	err   error
	delay time.Duration
}

func (r failingRepo) Create(ctx context.Context, doc Document) error {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if r.err != nil {
		return r.err
	}
	return r.MemoryRepo.Create(ctx, doc)
}

func TestServiceSaveValidates(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}
	tests := []struct {
		name string
		doc  Document
	}{
		{name: "missing title", doc: Document{OwnerID: "u", Category: "c", Content: "x"}},
		{name: "missing category", doc: Document{OwnerID: "u", Title: "t", Content: "x"}},
		{name: "blank content", doc: Document{OwnerID: "u", Title: "t", Category: "c", Content: "  "}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Save(context.Background(), tt.doc); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestServiceSaveAndList(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := &Service{Repo: NewMemoryRepo(), Now: func() time.Time { return now }}

	first, err := svc.Save(context.Background(), Document{OwnerID: "u1", Title: "A", Category: "parent-communication", Content: "one"})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(time.Minute)
	if _, err := svc.Save(context.Background(), Document{OwnerID: "u1", Title: "B", Category: "differentiation", Content: "two"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	all, err := svc.List(context.Background(), "u1", "", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].Title != "B" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	filtered, err := svc.List(context.Background(), "u1", "parent-communication", 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(filtered) != 1 || filtered[0].ID != first.ID {
		t.Fatalf("unexpected filtered list %+v", filtered)
	}

	if _, err := svc.Get(context.Background(), "someone-else", first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other owner, got %v", err)
	}
}

func TestServiceSaveAsyncReportsSuccess(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	err := <-svc.SaveAsync(context.Background(), Document{OwnerID: "u1", Title: "T", Category: "c", Content: "x"}, time.Second)
	if err != nil {
		t.Fatalf("SaveAsync: %v", err)
	}
	docs, _ := repo.ListByOwner(context.Background(), "u1", "", 0, 0)
	if len(docs) != 1 {
		t.Fatalf("expected 1 stored doc, got %d", len(docs))
	}
}

func TestServiceSaveAsyncSurvivesCallerCancellation(t *testing.T) {
	repo := failingRepo{MemoryRepo: NewMemoryRepo(), delay: 20 * time.Millisecond}
	svc := &Service{Repo: repo}

	ctx, cancel := context.WithCancel(context.Background())
	done := svc.SaveAsync(ctx, Document{OwnerID: "u1", Title: "T", Category: "c", Content: "x"}, time.Second)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("expected save to finish after caller cancel, got %v", err)
	}
}

func TestServiceSaveAsyncTimesOut(t *testing.T) {
	repo := failingRepo{MemoryRepo: NewMemoryRepo(), delay: time.Second}
	svc := &Service{Repo: repo}

	start := time.Now()
	err := <-svc.SaveAsync(context.Background(), Document{OwnerID: "u1", Title: "T", Category: "c", Content: "x"}, 20*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("save was not bounded by timeout")
	}
}

func TestServiceSaveAsyncReportsRepoError(t *testing.T) {
	boom := errors.New("db down")
	svc := &Service{Repo: failingRepo{MemoryRepo: NewMemoryRepo(), err: boom}}

	if err := <-svc.SaveAsync(context.Background(), Document{OwnerID: "u1", Title: "T", Category: "c", Content: "x"}, time.Second); !errors.Is(err, boom) {
		t.Fatalf("expected repo error, got %v", err)
	}
}
