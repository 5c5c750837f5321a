package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"evoting_backend/internal/api/middleware"
	"evoting_backend/internal/app/service"
	"evoting_backend/internal/common"
	"evoting_backend/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// ReviewService defines the feedback operations required by the HTTP layer.
type ReviewService interface {
	SubmitReview(ctx context.Context, userID string, req service.SubmitReviewRequest) (*model.Review, error)
	Statistics(ctx context.Context) (*model.ReviewStats, error)
	ReviewsBySentiment(ctx context.Context, label string) ([]model.Review, error)
}

type ReviewHandler struct {
	reviewService ReviewService
}

func NewReviewHandler(reviewService ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(voterRouter chi.Router) {
		voterRouter.Use(middleware.Authenticator)
		voterRouter.Post("/", h.submitReview)
	})

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Get("/statistics", h.statistics)
		adminRouter.Get("/all", h.allReviews)
		adminRouter.Get("/by-sentiment/{label}", h.reviewsBySentiment)
	})
}

func (h *ReviewHandler) submitReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	review, err := h.reviewService.SubmitReview(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reviewService.Statistics(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *ReviewHandler) allReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviewService.ReviewsBySentiment(r.Context(), "all")
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reviews)
}

func (h *ReviewHandler) reviewsBySentiment(w http.ResponseWriter, r *http.Request) {
	label := chi.URLParam(r, "label")

	reviews, err := h.reviewService.ReviewsBySentiment(r.Context(), label)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reviews)
}
