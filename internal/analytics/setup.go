package analytics

import (
	"context"
	"log/slog"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/clients"
)

// FromConfig builds an Aggregator, backed by valkey when an address is
// configured. An unreachable valkey is logged and the aggregator reads the
// store directly. The returned func releases the cache connection.
func FromConfig(ctx context.Context, cfg config.CacheConfig, store Store) (*Aggregator, func()) {
	if !cfg.Enabled() {
		return NewAggregator(store), func() {}
	}

	cache, err := clients.NewValkeyClient(ctx, cfg.ValkeyAddress, cfg.ValkeyPassword, cfg.ValkeyTLS)
	if err != nil {
		slog.Warn("[Analytics] Valkey unavailable, running without cache",
			slog.String("address", cfg.ValkeyAddress),
			slog.String("error", err.Error()))
		return NewAggregator(store), func() {}
	}

	slog.Info("[Analytics] Caching analytics in valkey", slog.Duration("ttl", cfg.TTL))
	return NewAggregator(store, WithCache(cache, cfg.TTL)), cache.Close
}
