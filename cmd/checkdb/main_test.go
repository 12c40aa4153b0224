package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/db"
	"github.com/spacesedan/reviewlens/internal/models"
)

func TestRunReadsStore(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "reviews.db")}}

	store, err := db.Open(ctx, cfg.Database)
	require.NoError(t, err)
	require.NoError(t, store.Insert(ctx, &models.Review{Content: "배송도 빠르고 상품도 아주 마음에 듭니다!", Sentiment: models.SentimentPositive, Confidence: 0.98}))
	require.NoError(t, store.Close())

	require.NoError(t, run(ctx, cfg))
}

func TestRunReturnsOpenError(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "oracle"}}
	assert.ErrorContains(t, run(context.Background(), cfg), "failed to open review store")
}
