package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maltedev/terraplen/internal/scraper"
)

const DefaultTTL = 6 * time.Hour

// RedisClient is the subset of the redis client the page cache uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// PageCache serves product pages from redis and fetches through the wrapped
// session on a miss. Only successful fetches are stored. Redis failures are
// logged and never fail a fetch.
type PageCache struct {
	session scraper.Session
	redis   RedisClient
	prefix  string
	ttl     time.Duration
	logger  *slog.Logger
}

func NewPageCache(session scraper.Session, client RedisClient, prefix string, ttl time.Duration, logger *slog.Logger) *PageCache {
	if prefix == "" {
		prefix = "terraplen:page:"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &PageCache{
		session: session,
		redis:   client,
		prefix:  prefix,
		ttl:     ttl,
		logger:  logger.With("component", "page_cache"),
	}
}

func (c *PageCache) Fetch(ctx context.Context, url string) (string, error) {
	key := c.Key(url)

	html, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.logger.Debug("cache hit", "url", url)
		return html, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache lookup failed", "url", url, "error", err)
	}

	html, err = c.session.Fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, html, c.ttl).Err(); err != nil {
		c.logger.Warn("failed to cache page", "url", url, "error", err)
	}

	return html, nil
}

// Init refreshes the wrapped session. Cached pages are kept.
func (c *PageCache) Init(ctx context.Context) error {
	return c.session.Init(ctx)
}

// Key is the redis key under which the markup of url is cached.
func (c *PageCache) Key(url string) string {
	sum := sha1.Sum([]byte(url))
	return c.prefix + hex.EncodeToString(sum[:])
}
