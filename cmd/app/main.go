package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/cityinfo-api/internal/api"
	"github.com/alexivanou/cityinfo-api/internal/auth"
	"github.com/alexivanou/cityinfo-api/internal/config"
	"github.com/alexivanou/cityinfo-api/internal/database"
	"github.com/alexivanou/cityinfo-api/internal/mail"
	"github.com/alexivanou/cityinfo-api/internal/repository"
	"github.com/alexivanou/cityinfo-api/internal/seeder"
	"github.com/alexivanou/cityinfo-api/internal/service"
	"github.com/alexivanou/cityinfo-api/internal/stats"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.App)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	var db *sqlx.DB
	if !cfg.DB.IsMemory() {
		db, err = database.Connect(ctx, cfg.DB)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		if err := database.Migrate(db, cfg.DB.Type); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}
	logger.Info("Store ready", zap.String("type", string(cfg.DB.Type)))

	repo := repository.NewRepository(db, cfg.DB.Type)

	if cfg.Seeder.Enabled {
		if _, err := seeder.SeedIfEmpty(ctx, repo, cfg.Seeder.DataDir, logger); err != nil {
			logger.Fatal("Failed to auto-seed store", zap.Error(err))
		}
	}

	svc := service.NewService(repo, mail.New(cfg.Mail, logger), logger)

	opts := api.Options{
		Logger:         logger,
		FilesDir:       cfg.Files.Dir,
		Metrics:        api.NewMetrics(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}
	tokens, err := newTokenService(cfg.Auth, logger)
	if err != nil {
		logger.Fatal("Failed to create token service", zap.Error(err))
	}
	opts.Tokens = tokens
	opts.Credentials = auth.NewCredentialValidator(cfg.Auth.Users)
	opts.RequireAuth = cfg.Auth.Required
	if cfg.Server.RateLimitPerSecond > 0 {
		opts.RateLimiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), cfg.Server.RateLimitBurst)
	}
	if db != nil {
		opts.Stats = stats.NewCollector(db, cfg.DB)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(svc, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.Bool("auth_required", opts.RequireAuth),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// newTokenService signs with AUTH_SECRET, or with a per-process key when it is unset
func newTokenService(cfg config.AuthConfig, logger *zap.Logger) (*auth.TokenService, error) {
	if cfg.Enabled() {
		return auth.NewTokenService(cfg)
	}
	logger.Warn("AUTH_SECRET is not set, tokens are signed with a random key and expire on restart")
	return auth.NewEphemeralTokenService(cfg)
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
