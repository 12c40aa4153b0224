package db

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewlens/internal/models"
)

// runStoreSuite exercises the ReviewStore contract against a fresh, empty store.
// rejectContent installs a database-side rule that fails any insert of content.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) ReviewStore, rejectContent func(t *testing.T, store ReviewStore, content string)) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)

		avg, err := store.AverageConfidence(ctx)
		require.NoError(t, err)
		assert.Zero(t, avg)

		top, err := store.TopBySentiment(ctx, models.SentimentPositive, 3)
		require.NoError(t, err)
		assert.NotNil(t, top)
		assert.Empty(t, top)
	})

	t.Run("insert many assigns ids and timestamps", func(t *testing.T) {
		store := newStore(t)

		records := []models.Review{
			{Content: "좋아요", Sentiment: models.SentimentPositive, Confidence: 0.9},
			{Content: "별로예요", Sentiment: models.SentimentNegative, Confidence: 0.8},
			{Content: "최고", Sentiment: models.SentimentPositive, Confidence: 0.7, ID: 999},
		}
		require.NoError(t, store.InsertMany(ctx, records))

		for _, r := range records {
			assert.NotZero(t, r.ID)
			assert.False(t, r.CreatedAt.IsZero())
		}
		assert.NotEqual(t, int64(999), records[2].ID, "ids are store-assigned")

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		pos, err := store.CountBySentiment(ctx, models.SentimentPositive)
		require.NoError(t, err)
		assert.Equal(t, int64(2), pos)

		neg, err := store.CountBySentiment(ctx, models.SentimentNegative)
		require.NoError(t, err)
		assert.Equal(t, int64(1), neg)

		avg, err := store.AverageConfidence(ctx)
		require.NoError(t, err)
		assert.InDelta(t, 0.8, avg, 1e-9)
	})

	t.Run("invalid sentiment rejects the whole batch", func(t *testing.T) {
		store := newStore(t)

		err := store.InsertMany(ctx, []models.Review{
			{Content: "ok", Sentiment: models.SentimentPositive, Confidence: 0.9},
			{Content: "meh", Sentiment: "neutral", Confidence: 0.5},
		})
		require.Error(t, err)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("database failure mid-batch rolls back the whole batch", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.InsertMany(ctx, []models.Review{
			{Content: "earlier", Sentiment: models.SentimentPositive, Confidence: 0.9},
		}))
		rejectContent(t, store, "poison")

		err := store.InsertMany(ctx, []models.Review{
			{Content: "first", Sentiment: models.SentimentPositive, Confidence: 0.9},
			{Content: "second", Sentiment: models.SentimentNegative, Confidence: 0.8},
			{Content: "poison", Sentiment: models.SentimentNegative, Confidence: 0.7},
		})
		require.Error(t, err)

		count, err := store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		listed, err := store.List(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"earlier"}, contents(listed))

		require.NoError(t, store.InsertMany(ctx, []models.Review{
			{Content: "later", Sentiment: models.SentimentPositive, Confidence: 0.6},
		}))
		count, err = store.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("single insert", func(t *testing.T) {
		store := newStore(t)

		review := models.Review{Content: "배송 빨라요", Sentiment: models.SentimentPositive, Confidence: 0.95}
		require.NoError(t, store.Insert(ctx, &review))
		assert.NotZero(t, review.ID)
		assert.False(t, review.CreatedAt.IsZero())

		listed, err := store.List(ctx, 5)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, review.ID, listed[0].ID)
		assert.Equal(t, "배송 빨라요", listed[0].Content)
		assert.Equal(t, models.SentimentPositive, listed[0].Sentiment)
	})

	t.Run("top by sentiment orders by confidence then insertion", func(t *testing.T) {
		store := newStore(t)

		require.NoError(t, store.InsertMany(ctx, []models.Review{
			{Content: "p1", Sentiment: models.SentimentPositive, Confidence: 0.80},
			{Content: "p2", Sentiment: models.SentimentPositive, Confidence: 0.95},
			{Content: "n1", Sentiment: models.SentimentNegative, Confidence: 0.99},
			{Content: "p3", Sentiment: models.SentimentPositive, Confidence: 0.80},
			{Content: "p4", Sentiment: models.SentimentPositive, Confidence: 0.60},
			{Content: "p5", Sentiment: models.SentimentPositive, Confidence: 0.80},
		}))

		top, err := store.TopBySentiment(ctx, models.SentimentPositive, 3)
		require.NoError(t, err)
		require.Len(t, top, 3)
		assert.Equal(t, []string{"p2", "p1", "p3"}, contents(top))

		neg, err := store.TopBySentiment(ctx, models.SentimentNegative, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"n1"}, contents(neg))
	})

	t.Run("list caps results", func(t *testing.T) {
		store := newStore(t)

		batch := make([]models.Review, 7)
		for i := range batch {
			batch[i] = models.Review{Content: "r", Sentiment: models.SentimentNegative, Confidence: 0.5}
		}
		require.NoError(t, store.InsertMany(ctx, batch))

		listed, err := store.List(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, listed, 5)
		assert.Less(t, listed[0].ID, listed[4].ID)

		none, err := store.List(ctx, -1)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func sqlLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func contents(reviews []models.Review) []string {
	out := make([]string, len(reviews))
	for i, r := range reviews {
		out[i] = r.Content
	}
	return out
}
