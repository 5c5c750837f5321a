package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"evoting_backend/internal/app/service"
	"evoting_backend/internal/common"
)

func TestSendOTPHandler(t *testing.T) {
	tests := []struct {
		name       string
		sendFunc   func(ctx context.Context, mobile string) (*service.SendOTPResponse, error)
		wantStatus int
	}{
		{
			name: "sent",
			sendFunc: func(ctx context.Context, mobile string) (*service.SendOTPResponse, error) {
				return &service.SendOTPResponse{SessionID: "s1", Message: "Verification code sent"}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "cooldown active",
			sendFunc: func(ctx context.Context, mobile string) (*service.SendOTPResponse, error) {
				return nil, common.ErrConflict
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "bad mobile",
			sendFunc: func(ctx context.Context, mobile string) (*service.SendOTPResponse, error) {
				return nil, common.ErrValidation
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewOTPHandler(&fakeOTPService{sendFunc: tc.sendFunc})
			router := newTestRouter(h.RegisterRoutes)

			req := jsonRequest(t, http.MethodPost, "/send", map[string]string{"mobile": "9876543210"})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK {
				var resp service.SendOTPResponse
				decodeBody(t, rec, &resp)
				if resp.SessionID != "s1" {
					t.Errorf("session_id = %q; want %q", resp.SessionID, "s1")
				}
			}
		})
	}
}

func TestVerifyOTPHandler(t *testing.T) {
	tests := []struct {
		name       string
		verifyFunc func(ctx context.Context, sessionID, code string) error
		wantStatus int
	}{
		{
			name: "verified",
			verifyFunc: func(ctx context.Context, sessionID, code string) error {
				if sessionID != "s1" || code != "123456" {
					t.Errorf("VerifyOTP(%q, %q); want s1/123456", sessionID, code)
				}
				return nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "wrong code",
			verifyFunc: func(ctx context.Context, sessionID, code string) error {
				return common.ErrUnauthorized
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired session",
			verifyFunc: func(ctx context.Context, sessionID, code string) error {
				return common.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewOTPHandler(&fakeOTPService{verifyFunc: tc.verifyFunc})
			router := newTestRouter(h.RegisterRoutes)

			req := jsonRequest(t, http.MethodPost, "/verify", map[string]string{
				"session_id": "s1",
				"code":       "123456",
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body: %s)", rec.Code, tc.wantStatus, rec.Body.String())
			}
		})
	}
}
