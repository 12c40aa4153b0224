package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/logging"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

var samples = []string{
	"배송도 빠르고 상품도 아주 마음에 듭니다!",
	"진짜 최악이에요. 다신 안 삽니다.",
	"그냥 보통이에요. 쓸만합니다.",
	"생각보다 별로네요. 환불하고 싶어요.",
}

func main() {
	config.LoadEnv(config.AppEnv())

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	texts := os.Args[1:]
	if len(texts) == 0 {
		texts = samples
	}

	if err := run(context.Background(), cfg, texts); err != nil {
		slog.Error("[Main] Classification failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, texts []string) error {
	analyzer, err := sentiment.NewAnalyzerFromConfig(cfg.Sentiment)
	if err != nil {
		return fmt.Errorf("failed to load sentiment model: %w", err)
	}
	defer analyzer.Close()

	var errs []error
	for _, text := range texts {
		result, err := analyzer.Analyze(ctx, text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%q: %w", text, err))
			continue
		}
		fmt.Printf("%-8s %.2f  %s\n", result.Sentiment, result.Confidence, text)
	}
	return errors.Join(errs...)
}
