package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// CachedFetcher memoizes successful snapshots per coordinate cell.
// Cells are two-decimal rounded coordinates (roughly 1 km). Failures are never cached.
type CachedFetcher struct {
	next  Fetcher
	cache *expirable.LRU[string, Snapshot]
}

// NewCachedFetcher wraps next with an expiring LRU of the given size and TTL.
func NewCachedFetcher(next Fetcher, size int, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		next:  next,
		cache: expirable.NewLRU[string, Snapshot](size, nil, ttl),
	}
}

// Fetch returns the cached snapshot for the cell or asks the wrapped fetcher.
func (c *CachedFetcher) Fetch(ctx context.Context, lat, lon float64) (Snapshot, error) {
	key := cellKey(lat, lon)
	if snap, ok := c.cache.Get(key); ok {
		zerolog.Ctx(ctx).Debug().Str("cell", key).Msg("Environment cache hit")
		return snap, nil
	}

	snap, err := c.next.Fetch(ctx, lat, lon)
	if err != nil {
		return Snapshot{}, err
	}
	c.cache.Add(key, snap)
	return snap, nil
}

// Len reports the number of live entries.
func (c *CachedFetcher) Len() int {
	return c.cache.Len()
}

func cellKey(lat, lon float64) string {
	return fmt.Sprintf("%.2f,%.2f", lat, lon)
}
