package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
)

// RankingSize is how many reviews each side of the ranking holds.
const RankingSize = 3

const (
	statsCacheKey      = "analytics:stats"
	rankingCacheKey    = "analytics:ranking"
	generationCacheKey = "analytics:generation"
)

// Store is the read side of the review store.
type Store interface {
	Count(ctx context.Context) (int64, error)
	CountBySentiment(ctx context.Context, sentiment models.Sentiment) (int64, error)
	AverageConfidence(ctx context.Context) (float64, error)
	TopBySentiment(ctx context.Context, sentiment models.Sentiment, n int) ([]models.Review, error)
}

// Cache holds serialized responses shared between processes.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
}

type Aggregator struct {
	store Store
	cache Cache
	ttl   time.Duration
}

type Option func(*Aggregator)

// WithCache serves Stats and Ranking from cache for up to ttl. Writers must
// call Invalidate after inserting.
//
// Entries are keyed by a generation counter that Invalidate bumps. A reader
// reads the generation before querying the store, so a result computed
// before an invalidation is written under a key nobody reads again.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(a *Aggregator) {
		a.cache = cache
		a.ttl = ttl
	}
}

func NewAggregator(store Store, opts ...Option) *Aggregator {
	a := &Aggregator{store: store}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats counts reviews per sentiment. Ratio and average are 0 on an empty store.
func (a *Aggregator) Stats(ctx context.Context) (models.StatsResponse, error) {
	var stats models.StatsResponse
	key, cached := a.fromCache(ctx, statsCacheKey, &stats)
	if cached {
		return stats, nil
	}
	stats = models.StatsResponse{}

	total, err := a.store.Count(ctx)
	if err != nil {
		return stats, err
	}
	if total == 0 {
		a.toCache(ctx, key, stats)
		return stats, nil
	}

	positive, err := a.store.CountBySentiment(ctx, models.SentimentPositive)
	if err != nil {
		return stats, err
	}
	negative, err := a.store.CountBySentiment(ctx, models.SentimentNegative)
	if err != nil {
		return stats, err
	}
	avg, err := a.store.AverageConfidence(ctx)
	if err != nil {
		return stats, err
	}

	stats = models.StatsResponse{
		TotalCount:        total,
		PositiveCount:     positive,
		NegativeCount:     negative,
		PositiveRatio:     float64(positive) / float64(total) * 100,
		AverageConfidence: avg,
	}
	a.toCache(ctx, key, stats)
	return stats, nil
}

// Ranking returns up to RankingSize most confident reviews per sentiment.
func (a *Aggregator) Ranking(ctx context.Context) (models.RankingResponse, error) {
	var ranking models.RankingResponse
	key, cached := a.fromCache(ctx, rankingCacheKey, &ranking)
	if cached {
		return normalizeRanking(ranking), nil
	}
	ranking = models.RankingResponse{}

	best, err := a.store.TopBySentiment(ctx, models.SentimentPositive, RankingSize)
	if err != nil {
		return ranking, err
	}
	worst, err := a.store.TopBySentiment(ctx, models.SentimentNegative, RankingSize)
	if err != nil {
		return ranking, err
	}

	ranking = normalizeRanking(models.RankingResponse{BestReviews: best, WorstReviews: worst})
	a.toCache(ctx, key, ranking)
	return ranking, nil
}

// Invalidate retires every cached response by moving to a new generation.
// Failures are logged; the TTL bounds staleness.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if _, err := a.cache.Incr(ctx, generationCacheKey); err != nil {
		slog.Warn("[Analytics] Failed to invalidate cache", slog.String("error", err.Error()))
	}
}

func (a *Aggregator) generation(ctx context.Context) (int64, error) {
	raw, ok, err := a.cache.Get(ctx, generationCacheKey)
	if err != nil || !ok {
		return 0, err
	}
	return strconv.ParseInt(string(raw), 10, 64)
}

// fromCache looks up name under the current generation. It returns the key a
// fresh result should be stored under, empty when the cache must not be filled.
func (a *Aggregator) fromCache(ctx context.Context, name string, out interface{}) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	gen, err := a.generation(ctx)
	if err != nil {
		slog.Warn("[Analytics] Cache read failed, using store",
			slog.String("key", generationCacheKey),
			slog.String("error", err.Error()))
		return "", false
	}
	key := fmt.Sprintf("%s:%d", name, gen)

	raw, ok, err := a.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("[Analytics] Cache read failed, using store",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return "", false
	}
	if !ok {
		return key, false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		slog.Warn("[Analytics] Discarding unreadable cache entry",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return key, false
	}
	return key, true
}

func (a *Aggregator) toCache(ctx context.Context, key string, value interface{}) {
	if a.cache == nil || key == "" {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.ttl); err != nil {
		slog.Warn("[Analytics] Cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// normalizeRanking keeps both lists as JSON arrays even when empty.
func normalizeRanking(r models.RankingResponse) models.RankingResponse {
	if r.BestReviews == nil {
		r.BestReviews = []models.Review{}
	}
	if r.WorstReviews == nil {
		r.WorstReviews = []models.Review{}
	}
	return r
}
