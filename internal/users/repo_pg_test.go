package users

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("google:missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoUpdateProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "email", "full_name", "given_name", "family_name", "picture_url",
		"school_name", "grade_level", "created_at", "updated_at",
	}).AddRow("google:1", "t@school.org", "Pat", nil, nil, nil, "Lincoln", "4", now, now)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET")).
		WithArgs("google:1", nil, "Lincoln", "4").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	user, err := repo.UpdateProfile(context.Background(), "google:1", Profile{SchoolName: "Lincoln", GradeLevel: "4"})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.FullName != "Pat" || user.SchoolName != "Lincoln" || user.GivenName != "" {
		t.Fatalf("unexpected user %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
