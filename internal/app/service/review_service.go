package service

import (
	"context"
	"fmt"
	"strings"

	"evoting_backend/internal/app/sentiment"
	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"
	"evoting_backend/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minReviewLength = 10

type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	userRepo      repository.UserRepository
	candidateRepo repository.CandidateRepository
	logger        *zap.Logger
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	userRepo repository.UserRepository,
	candidateRepo repository.CandidateRepository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviewRepo:    reviewRepo,
		userRepo:      userRepo,
		candidateRepo: candidateRepo,
		logger:        logger,
	}
}

type SubmitReviewRequest struct {
	CandidateID string `json:"candidate_id"`
	Text        string `json:"text"`
}

// SubmitReview records post-vote feedback. Only accounts that have
// voted may review, and each account may review once.
func (s *ReviewService) SubmitReview(ctx context.Context, userID string, req SubmitReviewRequest) (*model.Review, error) {
	text := strings.TrimSpace(req.Text)
	if len(text) < minReviewLength {
		return nil, fmt.Errorf("review must be at least 10 characters long: %w", common.ErrValidation)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVoted {
		return nil, fmt.Errorf("only voters who have cast a vote can submit a review: %w", common.ErrForbidden)
	}

	if _, err := s.candidateRepo.FindByID(ctx, req.CandidateID); err != nil {
		return nil, err
	}

	review := &model.Review{
		ID:          uuid.NewString(),
		UserID:      userID,
		CandidateID: req.CandidateID,
		Text:        text,
		Sentiment:   sentiment.Classify(text),
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	s.logger.Info("review submitted", zap.String("review_id", review.ID), zap.String("sentiment", review.Sentiment))
	return review, nil
}

func (s *ReviewService) Statistics(ctx context.Context) (*model.ReviewStats, error) {
	return s.reviewRepo.Stats(ctx)
}

// ReviewsBySentiment returns matching reviews; label "all" returns everything.
func (s *ReviewService) ReviewsBySentiment(ctx context.Context, label string) ([]model.Review, error) {
	switch label {
	case "all":
		return s.reviewRepo.List(ctx)
	case model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral:
		return s.reviewRepo.ListBySentiment(ctx, label)
	default:
		return nil, fmt.Errorf("unknown sentiment label %q: %w", label, common.ErrValidation)
	}
}
