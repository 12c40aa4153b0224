package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/db"
	"github.com/spacesedan/reviewlens/internal/logging"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

const (
	sampleSize    = 5
	previewLength = 30
)

func main() {
	config.LoadEnv(config.AppEnv())

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	if err := run(context.Background(), cfg); err != nil {
		slog.Error("[Main] Check failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	store, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open review store: %w", err)
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count reviews: %w", err)
	}
	fmt.Printf("Stored reviews: %d\n", count)

	reviews, err := store.List(ctx, sampleSize)
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}
	for _, r := range reviews {
		fmt.Printf("[%d] %-8s %.2f  %s\n", r.ID, r.Sentiment, r.Confidence, sentiment.Truncate(r.Content, previewLength))
	}
	return nil
}
