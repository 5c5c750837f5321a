package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
)

func newElectionService(t *testing.T, candidateRepo *mockCandidateRepo, userRepo *mockUserRepo) (*ElectionService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	svc := NewElectionService(candidateRepo, userRepo, db, nil, testLogger())
	return svc, mock, func() { db.Close() }
}

func TestAddCandidate(t *testing.T) {
	var created *model.Candidate
	candidateRepo := &mockCandidateRepo{
		CreateFunc: func(ctx context.Context, candidate *model.Candidate) error {
			created = candidate
			return nil
		},
	}
	svc, _, cleanup := newElectionService(t, candidateRepo, &mockUserRepo{})
	defer cleanup()

	candidate, err := svc.AddCandidate(context.Background(), CandidateRequest{Name: "Ravi Kumar", Party: "Unity Party", Age: 45})
	if err != nil {
		t.Fatalf("AddCandidate returned error: %v", err)
	}
	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if candidate.Slug != "ravi-kumar-unity-party" {
		t.Errorf("Slug = %q; want %q", candidate.Slug, "ravi-kumar-unity-party")
	}
	if candidate.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestAddCandidate_Validation(t *testing.T) {
	svc, _, cleanup := newElectionService(t, &mockCandidateRepo{}, &mockUserRepo{})
	defer cleanup()

	t.Run("underage", func(t *testing.T) {
		_, err := svc.AddCandidate(context.Background(), CandidateRequest{Name: "X", Party: "Y", Age: 24})
		if !errors.Is(err, common.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("missing party", func(t *testing.T) {
		_, err := svc.AddCandidate(context.Background(), CandidateRequest{Name: "X", Age: 40})
		if !errors.Is(err, common.ErrBadRequest) {
			t.Fatalf("expected ErrBadRequest, got %v", err)
		}
	})
}

func TestCastVote_Success(t *testing.T) {
	markCalled, incrementCalled := false, false
	userRepo := &mockUserRepo{
		MarkVotedFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			markCalled = true
			return nil
		},
	}
	candidateRepo := &mockCandidateRepo{
		IncrementVotesFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			incrementCalled = true
			return nil
		},
	}
	svc, mock, cleanup := newElectionService(t, candidateRepo, userRepo)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectCommit()

	if err := svc.CastVote(context.Background(), "u1", model.RoleVoter, "c1"); err != nil {
		t.Fatalf("CastVote returned error: %v", err)
	}
	if !markCalled || !incrementCalled {
		t.Errorf("markCalled=%v incrementCalled=%v; want both true", markCalled, incrementCalled)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCastVote_AdminForbidden(t *testing.T) {
	svc, mock, cleanup := newElectionService(t, &mockCandidateRepo{}, &mockUserRepo{})
	defer cleanup()

	err := svc.CastVote(context.Background(), "a1", model.RoleAdmin, "c1")
	if !errors.Is(err, common.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no database work expected: %v", err)
	}
}

func TestCastVote_AlreadyVoted(t *testing.T) {
	incrementCalled := false
	userRepo := &mockUserRepo{
		MarkVotedFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			return common.ErrConflict
		},
	}
	candidateRepo := &mockCandidateRepo{
		IncrementVotesFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			incrementCalled = true
			return nil
		},
	}
	svc, mock, cleanup := newElectionService(t, candidateRepo, userRepo)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.CastVote(context.Background(), "u1", model.RoleVoter, "c1")
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if incrementCalled {
		t.Error("counter must not be incremented when the voter flag was already set")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCastVote_CandidateNotFound(t *testing.T) {
	userRepo := &mockUserRepo{
		MarkVotedFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			return nil
		},
	}
	candidateRepo := &mockCandidateRepo{
		IncrementVotesFunc: func(ctx context.Context, tx *sql.Tx, id string) error {
			return common.ErrNotFound
		},
	}
	svc, mock, cleanup := newElectionService(t, candidateRepo, userRepo)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := svc.CastVote(context.Background(), "u1", model.RoleVoter, "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestVoteTally(t *testing.T) {
	want := []model.TallyEntry{
		{ID: "b", Name: "B", Count: 5},
		{ID: "c", Name: "C", Count: 5},
		{ID: "a", Name: "A", Count: 3},
	}
	candidateRepo := &mockCandidateRepo{
		TallyFunc: func(ctx context.Context) ([]model.TallyEntry, error) {
			return want, nil
		},
	}
	svc, _, cleanup := newElectionService(t, candidateRepo, &mockUserRepo{})
	defer cleanup()

	entries, err := svc.VoteTally(context.Background())
	if err != nil {
		t.Fatalf("VoteTally returned error: %v", err)
	}
	if len(entries) != 3 || entries[0].ID != "b" || entries[2].ID != "a" {
		t.Errorf("unexpected tally: %+v", entries)
	}
}

func TestEditCandidate_RegeneratesSlug(t *testing.T) {
	candidateRepo := &mockCandidateRepo{
		FindByIDFunc: func(ctx context.Context, id string) (*model.Candidate, error) {
			return &model.Candidate{ID: id, Name: "Old", Party: "Old Party", Slug: "old-old-party", Age: 40}, nil
		},
		UpdateFunc: func(ctx context.Context, candidate *model.Candidate) error { return nil },
	}
	svc, _, cleanup := newElectionService(t, candidateRepo, &mockUserRepo{})
	defer cleanup()

	candidate, err := svc.EditCandidate(context.Background(), "c1", CandidateRequest{Name: "New Name", Party: "New Party", Age: 41})
	if err != nil {
		t.Fatalf("EditCandidate returned error: %v", err)
	}
	if candidate.Slug != "new-name-new-party" {
		t.Errorf("Slug = %q; want %q", candidate.Slug, "new-name-new-party")
	}
}
