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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/crushd/backend/internal/config"
	"github.com/crushd/backend/internal/db"
	"github.com/crushd/backend/internal/handler"
	"github.com/crushd/backend/internal/observability"
	"github.com/crushd/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	logger := observability.NewLogger()
	cfg := config.Load()

	if err := observability.InitSentry(cfg.Sentry.DSN, cfg.Server.Env); err != nil {
		logger.Error("sentry init failed", slog.String("error", err.Error()))
	}
	defer observability.FlushSentry()

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Error("postgres init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool); err != nil {
		logger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens, err := service.NewTokenIssuer(cfg.Auth)
	if err != nil {
		logger.Error("token issuer init failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store := db.NewStore(pool)
	authService := service.NewAuthService(store, tokens)

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(
		authService,
		pool,
		logger,
		cfg.Server.AllowedOrigins,
		cfg.Server.IsProduction(),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", slog.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}
