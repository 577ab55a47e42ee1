package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayush/research-ai-agent/assistant/internal/logging"
	"github.com/ayush/research-ai-agent/assistant/internal/models"
)

// Cache is a byte store with expiry. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher serves repeated queries from a Cache. Cache failures are
// logged and bypassed; empty result sets are never stored.
type CachedSearcher struct {
	next  Searcher
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

var _ Searcher = (*CachedSearcher)(nil)

func NewCachedSearcher(next Searcher, cache Cache, ttl time.Duration, log *zap.Logger) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache, ttl: ttl, log: logging.OrNop(log)}
}

func (c *CachedSearcher) Search(ctx context.Context, query string) []models.SearchResult {
	key := CacheKey(query)

	raw, ok, err := c.cache.Get(ctx, key)
	switch {
	case err != nil:
		c.log.Warn("search cache read failed", zap.String("key", key), zap.Error(err))
	case ok:
		var cached []models.SearchResult
		if err := json.Unmarshal(raw, &cached); err == nil {
			c.log.Debug("search cache hit", zap.String("key", key))
			return cached
		}
		c.log.Warn("search cache entry corrupt", zap.String("key", key))
	}

	results := c.next.Search(ctx, query)
	if len(results) == 0 {
		return results
	}
	data, err := json.Marshal(results)
	if err != nil {
		return results
	}
	if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("search cache write failed", zap.String("key", key), zap.Error(err))
	}
	return results
}

// CacheKey is search:<sha256 of the normalized query>.
func CacheKey(query string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(query))))
	return "search:" + hex.EncodeToString(sum[:])
}
