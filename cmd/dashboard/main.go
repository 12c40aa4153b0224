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
	"github.com/spacesedan/reviewlens/internal/clients"
	"github.com/spacesedan/reviewlens/internal/dashboard"
	"github.com/spacesedan/reviewlens/internal/logging"
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
		slog.Error("[Main] Dashboard exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := clients.NewAnalyticsClient(cfg.Dashboard.APIURL, 10*time.Second)
	defer client.Client.CloseIdleConnections()

	gin.SetMode(cfg.Server.GinMode)
	router, err := dashboard.SetupRouter(dashboard.New(client, cfg.Dashboard.APIURL))
	if err != nil {
		return fmt.Errorf("failed to build dashboard: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Dashboard.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("[Main] Dashboard listening",
			slog.String("address", srv.Addr),
			slog.String("api_url", cfg.Dashboard.APIURL))
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
