package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evoting_backend/internal/api"
	"evoting_backend/internal/app/service"
	"evoting_backend/internal/common/security"
	"evoting_backend/internal/domain/repository"
	"evoting_backend/internal/platform/cache"
	"evoting_backend/internal/platform/config"
	"evoting_backend/internal/platform/database"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	database.Connect()
	defer database.Close()

	if err := database.EnsureSchema(context.Background(), database.DB); err != nil {
		logger.Fatal("failed to apply schema", zap.Error(err))
	}

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	candidateRepo := repository.NewPgCandidateRepository(database.DB)
	reviewRepo := repository.NewPgReviewRepository(database.DB)

	// 6. Initialize Services
	authService := service.NewAuthService(userRepo, logger)
	electionService := service.NewElectionService(candidateRepo, userRepo, database.DB, cache.RDB, logger)
	reviewService := service.NewReviewService(reviewRepo, userRepo, candidateRepo, logger)
	otpService := service.NewOTPService(
		service.NewRedisSessionStore(cache.RDB),
		&service.LogSender{Logger: logger},
		logger,
	)

	// 7. Initialize Router & HTTP Server
	router := api.NewRouter(authService, electionService, reviewService, otpService, logger)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 8. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", zap.String("port", config.AppConfig.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("could not listen", zap.String("port", config.AppConfig.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}
