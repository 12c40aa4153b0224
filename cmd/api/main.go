package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/analytics"
	"github.com/spacesedan/reviewlens/internal/db"
	"github.com/spacesedan/reviewlens/internal/handlers"
	"github.com/spacesedan/reviewlens/internal/logging"
	"github.com/spacesedan/reviewlens/internal/processing"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

func main() {
	config.LoadEnv(config.AppEnv())

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("[Main] API exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open review store: %w", err)
	}
	defer store.Close()

	analyzer, err := sentiment.NewAnalyzerFromConfig(cfg.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to load sentiment model: %w", err)
	}
	defer analyzer.Close()

	aggregator, closeCache := analytics.FromConfig(ctx, cfg.Cache, store)
	defer closeCache()

	processor := processing.NewReviewProcessor(analyzer, store, aggregator)

	gin.SetMode(cfg.Server.GinMode)
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           handlers.SetupRouter(processor, aggregator),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Main] API listening", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server stopped: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("[Main] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
