package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateEncodesMetadata(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:        "doc-1",
		OwnerID:   "user-1",
		Title:     "Parent Emails",
		Category:  "parent-communication",
		Content:   "Dear family,",
		Metadata:  map[string]string{"kind": "parent-email"},
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(doc.ID, doc.OwnerID, doc.Title, doc.Category, doc.Content, []byte(`{"kind":"parent-email"}`), doc.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("SELECT id, owner_id, title").
		WithArgs("missing", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "category", "content", "metadata", "created_at"}))

	_, err = (&PGRepo{DB: db}).GetByID(context.Background(), "user-1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "category", "content", "metadata", "created_at"}).
		AddRow("doc-2", "user-1", "Letters", "recommendation-letter", "To whom", []byte(`{"items":"3"}`), created).
		AddRow("doc-1", "user-1", "Letters", "recommendation-letter", "Dear", []byte(nil), created.Add(-time.Hour))
	mock.ExpectQuery("FROM documents").
		WithArgs("user-1", "recommendation-letter", 20, 0).
		WillReturnRows(rows)

	docs, err := (&PGRepo{DB: db}).ListByOwner(context.Background(), "user-1", "recommendation-letter", 20, 0)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].Metadata["items"] != "3" {
		t.Fatalf("expected decoded metadata, got %+v", docs[0].Metadata)
	}
	if docs[1].Metadata != nil {
		t.Fatalf("expected nil metadata, got %+v", docs[1].Metadata)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
