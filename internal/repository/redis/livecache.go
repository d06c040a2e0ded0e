package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rrens/sitepublish/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	liveCachePrefix      = "live:"
	liveGenerationPrefix = "livegen:"
	defaultLiveTTL       = time.Minute
	scanBatchSize        = 100
)

// LiveCache caches resolved live pages by site slug and path.
// Only successful resolutions are ever stored. Entries are keyed by a
// per-slug generation that InvalidateSite bumps, so a write computed
// before an invalidation is never read after it.
type LiveCache struct {
	client *Client
	ttl    time.Duration
}

// NewLiveCache creates a new live page cache
func NewLiveCache(client *Client, ttl time.Duration) *LiveCache {
	if ttl <= 0 {
		ttl = defaultLiveTTL
	}
	return &LiveCache{client: client, ttl: ttl}
}

// Get retrieves a cached page along with the slug's current generation,
// which a later Set must be given. A miss returns a nil page.
func (c *LiveCache) Get(ctx context.Context, siteSlug, path string) (*domain.LivePage, int64, error) {
	generation, err := c.client.rdb.Get(ctx, generationKey(siteSlug)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, fmt.Errorf("failed to read live cache generation: %w", err)
	}

	data, err := c.client.rdb.Get(ctx, liveKey(siteSlug, generation, path)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, generation, nil
		}
		return nil, generation, fmt.Errorf("failed to read live cache: %w", err)
	}

	var page domain.LivePage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, generation, fmt.Errorf("failed to unmarshal live page: %w", err)
	}

	return &page, generation, nil
}

// Set caches a resolved page under the generation returned by Get
func (c *LiveCache) Set(ctx context.Context, siteSlug, path string, generation int64, page *domain.LivePage) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to marshal live page: %w", err)
	}

	return c.client.rdb.Set(ctx, liveKey(siteSlug, generation, path), data, c.ttl).Err()
}

// InvalidateSite bumps the slug's generation and removes its cached pages
func (c *LiveCache) InvalidateSite(ctx context.Context, siteSlug string) (int64, error) {
	if err := c.client.rdb.Incr(ctx, generationKey(siteSlug)).Err(); err != nil {
		return 0, fmt.Errorf("failed to bump live cache generation: %w", err)
	}

	pattern := sitePattern(siteSlug)
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

func liveKey(siteSlug string, generation int64, path string) string {
	return fmt.Sprintf("%s%s:/%d/%s", liveCachePrefix, siteSlug, generation, path)
}

func generationKey(siteSlug string) string {
	return liveGenerationPrefix + siteSlug
}

func sitePattern(siteSlug string) string {
	return liveCachePrefix + escapeGlob(siteSlug) + ":/*"
}

var globEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

func escapeGlob(s string) string {
	return globEscaper.Replace(s)
}
