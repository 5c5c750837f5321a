package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"
	"evoting_backend/internal/domain/repository"
	"evoting_backend/internal/platform/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tallyCacheKey = "vote:tally"

type ElectionService struct {
	candidateRepo repository.CandidateRepository
	userRepo      repository.UserRepository
	db            *sql.DB // For the cast-vote transaction
	rdb           *redis.Client
	logger        *zap.Logger
}

func NewElectionService(
	candidateRepo repository.CandidateRepository,
	userRepo repository.UserRepository,
	db *sql.DB,
	rdb *redis.Client,
	logger *zap.Logger,
) *ElectionService {
	return &ElectionService{
		candidateRepo: candidateRepo,
		userRepo:      userRepo,
		db:            db,
		rdb:           rdb,
		logger:        logger,
	}
}

type CandidateRequest struct {
	Name  string `json:"name"`
	Party string `json:"party"`
	Age   int    `json:"age"`
}

func (r CandidateRequest) validate() error {
	if r.Name == "" || r.Party == "" {
		return fmt.Errorf("name and party are required: %w", common.ErrBadRequest)
	}
	if r.Age < 25 {
		return fmt.Errorf("candidate age must be 25 or above: %w", common.ErrValidation)
	}
	return nil
}

func (s *ElectionService) ListCandidates(ctx context.Context) ([]model.Candidate, error) {
	return s.candidateRepo.List(ctx)
}

func (s *ElectionService) AddCandidate(ctx context.Context, req CandidateRequest) (*model.Candidate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	candidate := &model.Candidate{
		ID:    uuid.NewString(),
		Name:  req.Name,
		Party: req.Party,
		Slug:  slug.Make(req.Name + " " + req.Party),
		Age:   req.Age,
	}
	if err := s.candidateRepo.Create(ctx, candidate); err != nil {
		return nil, err
	}
	s.invalidateTally(ctx)
	s.logger.Info("candidate added", zap.String("candidate_id", candidate.ID), zap.String("slug", candidate.Slug))
	return candidate, nil
}

func (s *ElectionService) EditCandidate(ctx context.Context, id string, req CandidateRequest) (*model.Candidate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	candidate, err := s.candidateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	candidate.Name = req.Name
	candidate.Party = req.Party
	candidate.Slug = slug.Make(req.Name + " " + req.Party)
	candidate.Age = req.Age

	if err := s.candidateRepo.Update(ctx, candidate); err != nil {
		return nil, err
	}
	s.invalidateTally(ctx)
	return candidate, nil
}

func (s *ElectionService) DeleteCandidate(ctx context.Context, id string) error {
	if err := s.candidateRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateTally(ctx)
	return nil
}

// CastVote flips the voter's flag and increments the candidate's
// counter in one transaction. The flag flip is a conditional update, so
// two concurrent votes by the same account cannot both count.
func (s *ElectionService) CastVote(ctx context.Context, userID, userRole, candidateID string) error {
	if userRole == model.RoleAdmin {
		return fmt.Errorf("admin is not allowed to vote: %w", common.ErrForbidden)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Rollback if not committed

	if err := s.userRepo.MarkVoted(ctx, tx, userID); err != nil {
		return err
	}
	if err := s.candidateRepo.IncrementVotes(ctx, tx, candidateID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.invalidateTally(ctx)
	s.logger.Info("vote recorded", zap.String("user_id", userID), zap.String("candidate_id", candidateID))
	return nil
}

// VoteTally returns candidates ordered by descending vote count, ties
// broken by insertion order. Results are cached briefly in Redis.
func (s *ElectionService) VoteTally(ctx context.Context) ([]model.TallyEntry, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, tallyCacheKey).Result()
		if err == nil {
			var entries []model.TallyEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	entries, err := s.candidateRepo.Tally(ctx)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(entries); err == nil {
			if err := s.rdb.Set(ctx, tallyCacheKey, payload, config.AppConfig.TallyCacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache tally", zap.Error(err))
			}
		}
	}
	return entries, nil
}

func (s *ElectionService) invalidateTally(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, tallyCacheKey).Err(); err != nil {
		s.logger.Warn("failed to invalidate tally cache", zap.Error(err))
	}
}
