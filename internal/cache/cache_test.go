package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/terraplen/internal/scraper"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) Get(ctx context.Context, key string) *redis.StringCmd {
	args := m.Called(ctx, key)
	return redis.NewStringResult(args.String(0), args.Error(1))
}

func (m *MockRedisClient) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	args := m.Called(ctx, key, value, expiration)
	return redis.NewStatusResult("OK", args.Error(0))
}

type MockSession struct {
	mock.Mock
}

func (m *MockSession) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

func (m *MockSession) Init(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

const pageURL = "https://www.amazon.com/dp/B07FZ8S74R"

func newTestCache(session *MockSession, client *MockRedisClient) *PageCache {
	return NewPageCache(session, client, "", time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPageCacheHit(t *testing.T) {
	ctx := context.Background()
	session := new(MockSession)
	client := new(MockRedisClient)
	c := newTestCache(session, client)

	client.On("Get", ctx, c.Key(pageURL)).Return("<html>cached</html>", nil)

	html, err := c.Fetch(ctx, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "<html>cached</html>", html)
	session.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestPageCacheMissStoresPage(t *testing.T) {
	ctx := context.Background()
	session := new(MockSession)
	client := new(MockRedisClient)
	c := newTestCache(session, client)

	client.On("Get", ctx, c.Key(pageURL)).Return("", redis.Nil)
	session.On("Fetch", ctx, pageURL).Return("<html>fresh</html>", nil)
	client.On("Set", ctx, c.Key(pageURL), "<html>fresh</html>", time.Hour).Return(nil)

	html, err := c.Fetch(ctx, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "<html>fresh</html>", html)
	client.AssertExpectations(t)
}

func TestPageCacheDoesNotStoreFailures(t *testing.T) {
	ctx := context.Background()
	session := new(MockSession)
	client := new(MockRedisClient)
	c := newTestCache(session, client)

	client.On("Get", ctx, mock.Anything).Return("", redis.Nil)
	session.On("Fetch", ctx, pageURL).Return("", scraper.ErrBotDetected)

	_, err := c.Fetch(ctx, pageURL)
	assert.ErrorIs(t, err, scraper.ErrBotDetected)
	client.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPageCacheSurvivesRedisOutage(t *testing.T) {
	ctx := context.Background()
	session := new(MockSession)
	client := new(MockRedisClient)
	c := newTestCache(session, client)

	outage := errors.New("dial tcp: connection refused")
	client.On("Get", ctx, mock.Anything).Return("", outage)
	client.On("Set", ctx, mock.Anything, mock.Anything, mock.Anything).Return(outage)
	session.On("Fetch", ctx, pageURL).Return("<html>fresh</html>", nil)

	html, err := c.Fetch(ctx, pageURL)
	require.NoError(t, err)
	assert.Equal(t, "<html>fresh</html>", html)
}

func TestPageCacheInitDelegates(t *testing.T) {
	ctx := context.Background()
	session := new(MockSession)
	session.On("Init", ctx).Return(nil).Once()

	c := newTestCache(session, new(MockRedisClient))
	require.NoError(t, c.Init(ctx))
	session.AssertExpectations(t)
}

func TestPageCacheKey(t *testing.T) {
	c := newTestCache(new(MockSession), new(MockRedisClient))

	key := c.Key(pageURL)
	assert.Equal(t, key, c.Key(pageURL))
	assert.NotEqual(t, key, c.Key("https://www.amazon.de/dp/B07FZ8S74R"))
	assert.Len(t, key, len("terraplen:page:")+40)
	assert.Equal(t, DefaultTTL, NewPageCache(nil, nil, "p:", 0, slog.Default()).ttl)
}

var _ scraper.Session = (*PageCache)(nil)
