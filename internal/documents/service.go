package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/telemetry"
)

const defaultSaveTimeout = 10 * time.Second

// Service contains business logic for documents.
type Service struct {
	Repo DocumentsRepo
	Now  func() time.Time
}

// Save validates and stores a document, assigning its ID and timestamp.
func (s *Service) Save(ctx context.Context, doc Document) (Document, error) {
	doc.OwnerID = strings.TrimSpace(doc.OwnerID)
	doc.Title = strings.TrimSpace(doc.Title)
	doc.Category = strings.TrimSpace(doc.Category)
	if doc.OwnerID == "" {
		return Document{}, errors.New("owner id required")
	}
	if doc.Title == "" || doc.Category == "" || strings.TrimSpace(doc.Content) == "" {
		return Document{}, ErrInvalidInput
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.CreatedAt = s.now()

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// SaveAsync stores doc in the background with a bounded timeout. The returned
// channel yields the result once and may be ignored; failures are logged.
func (s *Service) SaveAsync(ctx context.Context, doc Document, timeout time.Duration) <-chan error {
	if timeout <= 0 {
		timeout = defaultSaveTimeout
	}
	done := make(chan error, 1)
	go func() {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		saved, err := s.Save(saveCtx, doc)
		if err != nil {
			metrics.IncPersistenceFailure("documents")
			telemetry.Error("document.save_failed", map[string]any{
				"owner_id": doc.OwnerID,
				"category": doc.Category,
				"error":    err,
			})
		} else {
			telemetry.Info("document.saved", map[string]any{
				"document_id": saved.ID,
				"owner_id":    saved.OwnerID,
				"category":    saved.Category,
			})
		}
		done <- err
		close(done)
	}()
	return done
}

// Get returns one document owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, documentID string) (Document, error) {
	if strings.TrimSpace(documentID) == "" {
		return Document{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, documentID)
}

// List returns the owner's documents newest first.
func (s *Service) List(ctx context.Context, ownerID, category string, limit, offset int) ([]Document, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, strings.TrimSpace(category), limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}
