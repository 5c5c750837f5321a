package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"evoting_backend/internal/app/service"
	"evoting_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

// OTPService defines the phone verification operations required by the
// HTTP layer.
type OTPService interface {
	SendOTP(ctx context.Context, mobile string) (*service.SendOTPResponse, error)
	VerifyOTP(ctx context.Context, sessionID, code string) error
}

type OTPHandler struct {
	otpService OTPService
}

func NewOTPHandler(otpService OTPService) *OTPHandler {
	return &OTPHandler{otpService: otpService}
}

func (h *OTPHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send", h.send)
	r.Post("/verify", h.verify)
}

func (h *OTPHandler) send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.otpService.SendOTP(r.Context(), req.Mobile)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *OTPHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"session_id"`
		Code      string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.otpService.VerifyOTP(r.Context(), req.SessionID, req.Code); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Verification successful"})
}
