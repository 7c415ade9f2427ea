package exports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"classroom-backend/internal/shared/metrics"
	"classroom-backend/internal/shared/storage/object"
	"classroom-backend/internal/shared/telemetry"
	"classroom-backend/internal/shared/util"
)

// CreateInput describes a rendered file to keep.
type CreateInput struct {
	OwnerID     string
	Title       string
	Category    string
	ContentType string
	Ext         string
	Data        []byte
	ItemCount   int
}

// Service stores rendered exports and their metadata.
type Service struct {
	Repo  Repo
	Store object.ObjectStore
}

// Create uploads the file and records it. The object is removed again if the
// metadata row cannot be written.
func (s *Service) Create(ctx context.Context, in CreateInput) (Export, error) {
	if in.OwnerID == "" || strings.TrimSpace(in.Title) == "" || len(in.Data) == 0 {
		return Export{}, ErrInvalidInput
	}
	if s.Repo == nil || s.Store == nil {
		return Export{}, errors.New("missing dependencies")
	}

	fileName := util.FileNameFromTitle(in.Title, in.Ext)
	obj, err := s.Store.Put(ctx, in.OwnerID, fileName, in.ContentType, bytes.NewReader(in.Data))
	if err != nil {
		metrics.IncPersistenceFailure("exports")
		return Export{}, err
	}

	export := Export{
		ID:          uuid.NewString(),
		OwnerID:     in.OwnerID,
		Title:       strings.TrimSpace(in.Title),
		Category:    in.Category,
		FileName:    fileName,
		StorageKey:  obj.Key,
		ContentType: obj.ContentType,
		SizeBytes:   obj.SizeBytes,
		ItemCount:   in.ItemCount,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, export); err != nil {
		metrics.IncPersistenceFailure("exports")
		if delErr := s.Store.Delete(ctx, obj.Key); delErr != nil {
			telemetry.Warn("export.cleanup_failed", map[string]any{"key": obj.Key, "error": delErr})
		}
		return Export{}, err
	}
	return export, nil
}

// Get returns export metadata by ID for an owner.
func (s *Service) Get(ctx context.Context, ownerID, exportID string) (Export, error) {
	if ownerID == "" || exportID == "" {
		return Export{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, ownerID, exportID)
}

// Open returns the export metadata and a reader over the stored file.
func (s *Service) Open(ctx context.Context, ownerID, exportID string) (Export, io.ReadCloser, error) {
	export, err := s.Get(ctx, ownerID, exportID)
	if err != nil {
		return Export{}, nil, err
	}
	rc, err := s.Store.Open(ctx, export.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Export{}, nil, ErrNotFound
		}
		return Export{}, nil, err
	}
	return export, rc, nil
}

// List returns exports for an owner ordered newest-first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Export, error) {
	if ownerID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}
