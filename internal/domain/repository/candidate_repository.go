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

type CandidateRepository interface {
	Create(ctx context.Context, candidate *model.Candidate) error
	Update(ctx context.Context, candidate *model.Candidate) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context) ([]model.Candidate, error)
	// IncrementVotes bumps the candidate's counter inside tx. Returns
	// common.ErrNotFound if the candidate does not exist.
	IncrementVotes(ctx context.Context, tx *sql.Tx, id string) error
	Tally(ctx context.Context) ([]model.TallyEntry, error)
}

type pgCandidateRepository struct {
	db *sql.DB
}

func NewPgCandidateRepository(db *sql.DB) CandidateRepository {
	return &pgCandidateRepository{db: db}
}

func (r *pgCandidateRepository) Create(ctx context.Context, c *model.Candidate) error {
	query := `INSERT INTO candidates (id, name, party, slug, age, vote_count)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Name, c.Party, c.Slug, c.Age, c.VoteCount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("candidate with this name and party already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCandidateRepository.Create: %w", err)
	}
	return nil
}

func (r *pgCandidateRepository) Update(ctx context.Context, c *model.Candidate) error {
	query := `UPDATE candidates SET name = $1, party = $2, slug = $3, age = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, c.Name, c.Party, c.Slug, c.Age, c.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("candidate with this name and party already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgCandidateRepository.Update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgCandidateRepository.Update rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCandidateRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgCandidateRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgCandidateRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgCandidateRepository) FindByID(ctx context.Context, id string) (*model.Candidate, error) {
	query := `SELECT id, name, party, slug, age, vote_count, created_at, updated_at
	          FROM candidates WHERE id = $1`
	c := &model.Candidate{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Party, &c.Slug, &c.Age, &c.VoteCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgCandidateRepository.FindByID: %w", err)
	}
	return c, nil
}

func (r *pgCandidateRepository) List(ctx context.Context) ([]model.Candidate, error) {
	query := `SELECT id, name, party, slug, age, vote_count, created_at, updated_at
	          FROM candidates ORDER BY created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCandidateRepository.List query: %w", err)
	}
	defer rows.Close()

	candidates := []model.Candidate{}
	for rows.Next() {
		var c model.Candidate
		if err := rows.Scan(&c.ID, &c.Name, &c.Party, &c.Slug, &c.Age, &c.VoteCount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgCandidateRepository.List scan: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCandidateRepository.List rows.Err: %w", err)
	}
	return candidates, nil
}

func (r *pgCandidateRepository) IncrementVotes(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE candidates SET vote_count = vote_count + 1, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgCandidateRepository.IncrementVotes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgCandidateRepository.IncrementVotes rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Tally orders by votes descending; ties keep insertion order.
func (r *pgCandidateRepository) Tally(ctx context.Context) ([]model.TallyEntry, error) {
	query := `SELECT id, name, party, slug, vote_count
	          FROM candidates ORDER BY vote_count DESC, created_at ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgCandidateRepository.Tally query: %w", err)
	}
	defer rows.Close()

	entries := []model.TallyEntry{}
	for rows.Next() {
		var e model.TallyEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Party, &e.Slug, &e.Count); err != nil {
			return nil, fmt.Errorf("pgCandidateRepository.Tally scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgCandidateRepository.Tally rows.Err: %w", err)
	}
	return entries, nil
}
