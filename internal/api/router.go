package api

import (
	"net/http"
	"time"

	"evoting_backend/internal/api/handler"
	"evoting_backend/internal/api/middleware"
	"evoting_backend/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"go.uber.org/zap"
)

func NewRouter(
	userService handler.UserService,
	electionService handler.ElectionService,
	reviewService handler.ReviewService,
	otpService handler.OTPService,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token when present and puts claims in context;
	// the Authenticator middleware on protected groups enforces it.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	userHandler := handler.NewUserHandler(userService)
	r.Route("/user", userHandler.RegisterRoutes)

	candidateHandler := handler.NewCandidateHandler(electionService)
	r.Route("/candidate", candidateHandler.RegisterRoutes)

	reviewHandler := handler.NewReviewHandler(reviewService)
	r.Route("/review", reviewHandler.RegisterRoutes)

	otpHandler := handler.NewOTPHandler(otpService)
	r.Route("/otp", otpHandler.RegisterRoutes)

	return r
}
