package scraper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/terraplen/internal/locale"
)

func TestRegistryReusesScraperPerStorefront(t *testing.T) {
	opened := map[string]int{}
	factory := func(ctx context.Context, m locale.Marketplace) (Session, error) {
		opened[m.Domain]++
		return new(MockSession), nil
	}

	r := NewRegistry(factory, new(MockParser), testLogger())
	ctx := context.Background()

	first, m, err := r.For(ctx, "co.jp")
	require.NoError(t, err)
	assert.Equal(t, "co.jp", m.Domain)

	second, _, err := r.For(ctx, "JP")
	require.NoError(t, err)
	assert.Same(t, first, second)

	_, _, err = r.For(ctx, "de")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"co.jp": 1, "de": 1}, opened)
}

func TestRegistryUnknownCountry(t *testing.T) {
	r := NewRegistry(func(context.Context, locale.Marketplace) (Session, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	}, new(MockParser), testLogger())

	_, _, err := r.For(context.Background(), "atlantis")
	assert.ErrorIs(t, err, locale.ErrUnknownCountry)
}

func TestRegistryFactoryFailureIsNotCached(t *testing.T) {
	calls := 0
	factory := func(ctx context.Context, m locale.Marketplace) (Session, error) {
		calls++
		if calls == 1 {
			return nil, ErrBotDetected
		}
		return new(MockSession), nil
	}

	r := NewRegistry(factory, new(MockParser), testLogger())

	_, _, err := r.For(context.Background(), "com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBotDetected))

	_, _, err = r.For(context.Background(), "com")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRegistryOpensStorefrontsIndependently(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var deOpens atomic.Int32

	factory := func(ctx context.Context, m locale.Marketplace) (Session, error) {
		if m.Domain == "de" {
			deOpens.Add(1)
			select {
			case started <- struct{}{}:
			default:
			}
			<-release
		}
		return new(MockSession), nil
	}

	r := NewRegistry(factory, new(MockParser), testLogger())
	ctx := context.Background()

	com, _, err := r.For(ctx, "com")
	require.NoError(t, err)

	de := make(chan *AmazonScraper, 2)
	for range 2 {
		go func() {
			s, _, err := r.For(ctx, "de")
			assert.NoError(t, err)
			de <- s
		}()
	}
	<-started

	done := make(chan *AmazonScraper)
	go func() {
		s, _, _ := r.For(ctx, "com")
		done <- s
	}()

	select {
	case s := <-done:
		assert.Same(t, com, s)
	case <-time.After(time.Second):
		t.Fatal("open storefront blocked behind a session being opened")
	}

	close(release)
	first, second := <-de, <-de
	assert.Same(t, first, second)
	assert.EqualValues(t, 1, deOpens.Load())
}
