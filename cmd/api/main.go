// Copyright (c) 2026 Trailforge. All rights reserved.

// Command api is the entry point for the Trailforge HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables (.env honored in dev).
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Wire domain services and HTTP handlers.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kasunvp/trailforge/internal/api"
	"github.com/kasunvp/trailforge/internal/platform/config"
	"github.com/kasunvp/trailforge/internal/platform/constants"
	"github.com/kasunvp/trailforge/internal/platform/mailer"
	"github.com/kasunvp/trailforge/internal/platform/migration"
	pgstore "github.com/kasunvp/trailforge/internal/platform/postgres"
	redisstore "github.com/kasunvp/trailforge/internal/platform/redis"
	"github.com/kasunvp/trailforge/internal/platform/respond"
	"github.com/kasunvp/trailforge/internal/platform/sec"
	"github.com/kasunvp/trailforge/internal/reviews"
	"github.com/kasunvp/trailforge/internal/tours"
	"github.com/kasunvp/trailforge/internal/users"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Trailforge] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	// A missing .env is fine outside development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	respond.Init(cfg.IsDevelopment())

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	tokens := sec.NewTokenService(cfg.JWTSecret, constants.AuthIssuer, cfg.JWTExpire)

	mail, err := buildMailer(cfg, log)
	must(log, err, "initialize mailer")

	userRepository := users.NewPostgresRepository(pool)
	userService := users.NewService(userRepository, tokens, mail, cfg.LockoutDuration)
	cookieTTL := time.Duration(cfg.JWTCookieExpireDays) * 24 * time.Hour
	userHandler := users.NewHandler(userService, cookieTTL, cfg.IsProduction())

	tourRepository := tours.NewPostgresRepository(pool)
	tourCache := tours.NewCache(rdb, log)
	tourService := tours.NewService(tourRepository, tourCache)
	tourHandler := tours.NewHandler(tourService)

	reviewRepository := reviews.NewPostgresRepository(pool)
	reviewService := reviews.NewService(reviewRepository)
	reviewHandler := reviews.NewHandler(reviewService)

	server := api.NewServer(cfg, log, pool, rdb, userHandler, tourHandler, reviewHandler, userService)

	// ── 7. HTTP Server ────────────────────────────────────────────────────
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           server.Router(appCtx),
		ReadTimeout:       constants.DefaultReadTimeout,
		ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		WriteTimeout:      constants.DefaultWriteTimeout,
		IdleTimeout:       constants.DefaultIdleTimeout,
	}

	// ── 8. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server_listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	log.Info("shutting down server", slog.Duration("timeout", constants.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// buildMailer selects the outbound email transport from configuration.
func buildMailer(cfg *config.Config, log *slog.Logger) (mailer.Mailer, error) {
	switch cfg.MailerDriver {
	case "smtp":
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.MailerFrom, cfg.SMTPUser, cfg.SMTPPass), nil
	case "mailersend":
		return mailer.NewMailerSendMailer(cfg.MailerSendAPIKey, cfg.MailerFromName, cfg.MailerFrom)
	default:
		return mailer.NewDevMailer(log), nil
	}
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
