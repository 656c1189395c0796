package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wekeepgrowing/semo-authn/internal/adapter/repository"
	"github.com/wekeepgrowing/semo-authn/internal/config"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/crypto"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/db"
	httpServer "github.com/wekeepgrowing/semo-authn/internal/infrastructure/http"
	"github.com/wekeepgrowing/semo-authn/internal/infrastructure/mail"
	"github.com/wekeepgrowing/semo-authn/internal/usecase"
	"github.com/wekeepgrowing/semo-authn/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		FilePath:    cfg.Log.FilePath,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	// Initialize database connection
	database, err := db.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(database, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := db.Migrate(database, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// The bootstrap account is the principal used while authentication is
	// not required and the target of the initial setup flow.
	defaultUserID, err := db.EnsureBootstrapUser(database, cfg.Security.DefaultUserEmail, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to ensure bootstrap user", zap.Error(err))
	}

	// Initialize Redis
	redisClient, err := db.NewRedisClient(&cfg.Redis, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			zapLogger.Error("Failed to close redis connection", zap.Error(err))
		}
	}()

	// Initialize mailer
	mailer, err := mail.NewSMTPMailer(&cfg.Email, cfg.Service.Name, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize mailer", zap.Error(err))
	}

	// Wire repositories and use cases
	repos := repository.InitRepositories(database, redisClient)
	hasher := crypto.NewBcryptHasher(cfg.Security.BcryptCost)
	ucs := usecase.SetupUseCases(zapLogger, cfg, repos, hasher, mailer)

	// Initialize HTTP server
	srv, err := httpServer.NewServer(cfg, ucs, defaultUserID, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to initialize HTTP server", zap.Error(err))
	}

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Info("HTTP server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
