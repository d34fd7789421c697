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

	"github.com/SscSPs/terminal_banking/internal/handlers"
	"github.com/SscSPs/terminal_banking/internal/middleware"
	"github.com/SscSPs/terminal_banking/internal/platform/bootstrap"
	"github.com/SscSPs/terminal_banking/internal/platform/config"
	"github.com/SscSPs/terminal_banking/internal/platform/logger"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title Terminal Banking API
// @version 1.0
// @description Ledger operations of the terminal bank over HTTP.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.IsProduction)
	slog.SetDefault(log)
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		logger.Fatal(log, "Failed to start", slog.String("error", err.Error()))
	}
	defer rt.Close()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Fatal(log, "Failed to build rate limiter", slog.String("error", err.Error()))
	}

	r := gin.New()

	// Global middleware (logging, recovery, CORS, rate limiting)
	r.Use(
		middleware.StructuredLoggingMiddleware(log),
		gin.Recovery(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.RateLimit(limiter),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Fatal(log, "Failed to set trusted proxies", slog.String("error", err.Error()))
	}

	if err := handlers.RegisterRoutes(r, cfg, rt.Services); err != nil {
		logger.Fatal(log, "Failed to register routes", slog.String("error", err.Error()))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", slog.String("error", err.Error()))
	}
}
