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

// ElectionService defines the candidate and voting operations required
// by the HTTP layer.
type ElectionService interface {
	ListCandidates(ctx context.Context) ([]model.Candidate, error)
	AddCandidate(ctx context.Context, req service.CandidateRequest) (*model.Candidate, error)
	EditCandidate(ctx context.Context, id string, req service.CandidateRequest) (*model.Candidate, error)
	DeleteCandidate(ctx context.Context, id string) error
	CastVote(ctx context.Context, userID, userRole, candidateID string) error
	VoteTally(ctx context.Context) ([]model.TallyEntry, error)
}

type CandidateHandler struct {
	electionService ElectionService
}

func NewCandidateHandler(electionService ElectionService) *CandidateHandler {
	return &CandidateHandler{electionService: electionService}
}

func (h *CandidateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listCandidates)
	r.Get("/vote/count", h.voteTally)

	r.Group(func(voterRouter chi.Router) {
		voterRouter.Use(middleware.Authenticator)
		voterRouter.Post("/vote/{candidateID}", h.castVote)
	})

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.Authenticator)
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.addCandidate)
		adminRouter.Put("/{candidateID}", h.editCandidate)
		adminRouter.Delete("/{candidateID}", h.deleteCandidate)
	})
}

func (h *CandidateHandler) listCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.electionService.ListCandidates(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, candidates)
}

func (h *CandidateHandler) addCandidate(w http.ResponseWriter, r *http.Request) {
	var req service.CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	candidate, err := h.electionService.AddCandidate(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, candidate)
}

func (h *CandidateHandler) editCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")

	var req service.CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	candidate, err := h.electionService.EditCandidate(r.Context(), candidateID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, candidate)
}

func (h *CandidateHandler) deleteCandidate(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "candidateID")

	if err := h.electionService.DeleteCandidate(r.Context(), candidateID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Candidate deleted"})
}

func (h *CandidateHandler) castVote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(r.Context())
	candidateID := chi.URLParam(r, "candidateID")

	if err := h.electionService.CastVote(r.Context(), userID, userRole, candidateID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Vote recorded successfully"})
}

func (h *CandidateHandler) voteTally(w http.ResponseWriter, r *http.Request) {
	tally, err := h.electionService.VoteTally(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, tally)
}
