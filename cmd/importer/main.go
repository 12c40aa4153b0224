package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/analytics"
	"github.com/spacesedan/reviewlens/internal/db"
	"github.com/spacesedan/reviewlens/internal/importer"
	"github.com/spacesedan/reviewlens/internal/logging"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

const (
	defaultFile  = "data/naver_shopping.txt"
	defaultLimit = 100
)

type options struct {
	file      string
	limit     int
	batchSize int
}

func main() {
	config.LoadEnv(config.AppEnv())

	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.LogLevel)

	if err := command(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func command(cfg *config.Config) *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "importer",
		Short: "Classify a rating<TAB>review file and store the results",
		Long: `Reads a tab-separated review file (rating, review text), classifies every
review and stores the results in batches. Rows that cannot be classified are
logged and skipped.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", defaultFile, "Path to the review file")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", defaultLimit, "Maximum rows to import, 0 for all")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", cfg.Import.BatchSize, "Reviews per database transaction")

	return cmd
}

func run(parent context.Context, cfg *config.Config, opts options) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.batchSize <= 0 {
		return fmt.Errorf("--batch-size must be positive, got %d", opts.batchSize)
	}

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

	im := importer.New(analyzer, store,
		importer.WithBatchSize(opts.batchSize),
		importer.WithProgressEvery(cfg.Import.ProgressEvery),
		importer.WithInvalidator(aggregator))

	report, err := im.ImportFile(ctx, opts.file, opts.limit)

	fmt.Printf("Read %d rows: %d stored, %d skipped, %d lost in failed batches (%s)\n",
		report.Read, report.Persisted, report.Failed, report.Dropped, report.Elapsed.Round(time.Millisecond))
	if err != nil {
		return fmt.Errorf("import finished with errors: %w", err)
	}
	return nil
}
