package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func setupCandidateMock(t *testing.T) (CandidateRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPgCandidateRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestCandidateCreate_SlugConflict(t *testing.T) {
	repo, mock, cleanup := setupCandidateMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO candidates")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "candidates_slug_key"})

	err := repo.Create(context.Background(), &model.Candidate{ID: "c1", Name: "A", Party: "P", Slug: "a-p", Age: 40})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestCandidateTally_Ordering(t *testing.T) {
	repo, mock, cleanup := setupCandidateMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "name", "party", "slug", "vote_count"}).
		AddRow("b", "B", "PB", "b-pb", 5).
		AddRow("c", "C", "PC", "c-pc", 5).
		AddRow("a", "A", "PA", "a-pa", 3)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY vote_count DESC, created_at ASC")).
		WillReturnRows(rows)

	entries, err := repo.Tally(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ID != "b" || entries[1].ID != "c" || entries[2].ID != "a" {
		t.Errorf("unexpected tally order: %v, %v, %v", entries[0].ID, entries[1].ID, entries[2].ID)
	}
	total := entries[0].Count + entries[1].Count + entries[2].Count
	if total != 13 {
		t.Errorf("tally total = %d; want 13", total)
	}
}

func TestIncrementVotes_CandidateNotFound(t *testing.T) {
	repo, mock, cleanup := setupCandidateMock(t)
	defer cleanup()

	db := repo.(*pgCandidateRepository).db

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE candidates SET vote_count = vote_count + 1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	err = repo.IncrementVotes(context.Background(), tx, "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}
}

func TestCandidateDelete_NotFound(t *testing.T) {
	repo, mock, cleanup := setupCandidateMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM candidates WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCandidateList(t *testing.T) {
	repo, mock, cleanup := setupCandidateMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "party", "slug", "age", "vote_count", "created_at", "updated_at"}).
		AddRow("c1", "A", "PA", "a-pa", 40, 0, now, now).
		AddRow("c2", "B", "PB", "b-pb", 52, 2, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM candidates ORDER BY created_at ASC")).
		WillReturnRows(rows)

	candidates, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[1].VoteCount != 2 {
		t.Errorf("candidates[1].VoteCount = %d; want 2", candidates[1].VoteCount)
	}
}
