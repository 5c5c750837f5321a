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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByAadhar(ctx context.Context, aadhar string) (*model.User, error)
	FindByMobile(ctx context.Context, mobile string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	CountAdmins(ctx context.Context) (int, error)
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	// MarkVoted flips is_voted inside tx. Returns common.ErrConflict
	// if the flag was already set, so the caller can abort before
	// touching the tally.
	MarkVoted(ctx context.Context, tx *sql.Tx, id string) error
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, name, age, COALESCE(email, ''), mobile, address, aadhar_number, hashed_password, role, is_voted, created_at, updated_at`

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Name, &user.Age, &user.Email, &user.Mobile, &user.Address,
		&user.AadharNumber, &user.HashedPassword, &user.Role, &user.IsVoted,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, name, age, email, mobile, address, aadhar_number, hashed_password, role, is_voted)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Age, user.Email, user.Mobile, user.Address,
		user.AadharNumber, user.HashedPassword, user.Role, user.IsVoted,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint violation
			if pgErr.ConstraintName == "users_single_admin_idx" {
				return fmt.Errorf("admin user already exists: %w", common.ErrConflict)
			}
			return fmt.Errorf("user with given aadhar, mobile or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByAadhar(ctx context.Context, aadhar string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE aadhar_number = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, aadhar))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByAadhar: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByMobile(ctx context.Context, mobile string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, mobile))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByMobile: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) CountAdmins(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = 'admin'`
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgUserRepository.CountAdmins: %w", err)
	}
	return count, nil
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	query := `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdatePassword rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) MarkVoted(ctx context.Context, tx *sql.Tx, id string) error {
	query := `UPDATE users SET is_voted = TRUE, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $1 AND is_voted = FALSE`
	res, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("pgUserRepository.MarkVoted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgUserRepository.MarkVoted rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user has already voted: %w", common.ErrConflict)
	}
	return nil
}
