package db

import (
	"context"
	"fmt"
	"time"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/models"
)

// ReviewStore persists classified reviews. Reviews are append-only.
//
// Rankings order by confidence descending; equal confidences keep insertion
// order (lowest id first).
type ReviewStore interface {
	// InsertMany writes all records in one transaction, or none of them.
	// IDs and creation times are filled in on success.
	InsertMany(ctx context.Context, records []models.Review) error
	Insert(ctx context.Context, record *models.Review) error
	Count(ctx context.Context) (int64, error)
	CountBySentiment(ctx context.Context, sentiment models.Sentiment) (int64, error)
	// AverageConfidence is 0 for an empty store.
	AverageConfidence(ctx context.Context) (float64, error)
	TopBySentiment(ctx context.Context, sentiment models.Sentiment, n int) ([]models.Review, error)
	List(ctx context.Context, limit int) ([]models.Review, error)
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the configured database and makes sure the schema exists.
func Open(ctx context.Context, cfg config.DatabaseConfig) (ReviewStore, error) {
	var (
		store ReviewStore
		err   error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		store, err = NewSQLiteStore(cfg.Path)
	case config.DriverPostgres:
		store, err = NewPostgresStore(ctx, cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return store, nil
}

// prepareForInsert clears store-assigned fields so callers cannot set them.
func prepareForInsert(record *models.Review) error {
	if !record.Sentiment.Valid() {
		return fmt.Errorf("invalid sentiment %q", record.Sentiment)
	}
	record.ID = 0
	record.CreatedAt = time.Time{}
	return nil
}
