package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	List(ctx context.Context) ([]model.Review, error)
	ListBySentiment(ctx context.Context, sentiment string) ([]model.Review, error)
	Stats(ctx context.Context) (*model.ReviewStats, error)
}

type pgReviewRepository struct {
	db *sql.DB
}

func NewPgReviewRepository(db *sql.DB) ReviewRepository {
	return &pgReviewRepository{db: db}
}

func (r *pgReviewRepository) Create(ctx context.Context, review *model.Review) error {
	query := `INSERT INTO reviews (id, user_id, candidate_id, text, sentiment)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, query, review.ID, review.UserID, review.CandidateID, review.Text, review.Sentiment)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // One review per user
			return fmt.Errorf("review already submitted: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgReviewRepository.Create: %w", err)
	}
	return nil
}

func (r *pgReviewRepository) List(ctx context.Context) ([]model.Review, error) {
	query := `SELECT id, user_id, candidate_id, text, sentiment, created_at
	          FROM reviews ORDER BY created_at DESC`
	return r.queryReviews(ctx, query)
}

func (r *pgReviewRepository) ListBySentiment(ctx context.Context, sentiment string) ([]model.Review, error) {
	query := `SELECT id, user_id, candidate_id, text, sentiment, created_at
	          FROM reviews WHERE sentiment = $1 ORDER BY created_at DESC`
	return r.queryReviews(ctx, query, sentiment)
}

func (r *pgReviewRepository) queryReviews(ctx context.Context, query string, args ...interface{}) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pgReviewRepository query: %w", err)
	}
	defer rows.Close()

	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.UserID, &rev.CandidateID, &rev.Text, &rev.Sentiment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("pgReviewRepository scan: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgReviewRepository rows.Err: %w", err)
	}
	return reviews, nil
}

func (r *pgReviewRepository) Stats(ctx context.Context) (*model.ReviewStats, error) {
	query := `SELECT
	            COUNT(*),
	            COUNT(*) FILTER (WHERE sentiment = 'positive'),
	            COUNT(*) FILTER (WHERE sentiment = 'negative'),
	            COUNT(*) FILTER (WHERE sentiment = 'neutral')
	          FROM reviews`
	stats := &model.ReviewStats{}
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Positive, &stats.Negative, &stats.Neutral)
	if err != nil {
		return nil, fmt.Errorf("pgReviewRepository.Stats: %w", err)
	}
	return stats, nil
}
