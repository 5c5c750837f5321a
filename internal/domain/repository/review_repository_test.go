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

func setupReviewMock(t *testing.T) (ReviewRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPgReviewRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

func TestReviewCreate_SecondReviewConflict(t *testing.T) {
	repo, mock, cleanup := setupReviewMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "reviews_user_id_key"})

	err := repo.Create(context.Background(), &model.Review{ID: "r1", UserID: "u1", CandidateID: "c1", Text: "great experience", Sentiment: "positive"})
	if !errors.Is(err, common.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestReviewStats(t *testing.T) {
	repo, mock, cleanup := setupReviewMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"total", "positive", "negative", "neutral"}).
			AddRow(7, 4, 2, 1))

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 7 || stats.Positive != 4 || stats.Negative != 2 || stats.Neutral != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestReviewListBySentiment(t *testing.T) {
	repo, mock, cleanup := setupReviewMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "user_id", "candidate_id", "text", "sentiment", "created_at"}).
		AddRow("r1", "u1", "c1", "smooth and easy", "positive", time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sentiment = $1")).
		WithArgs("positive").
		WillReturnRows(rows)

	reviews, err := repo.ListBySentiment(context.Background(), "positive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Sentiment != "positive" {
		t.Errorf("unexpected reviews: %+v", reviews)
	}
}
