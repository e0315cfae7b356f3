package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/maltedev/terraplen/internal/locale"
	"github.com/maltedev/terraplen/internal/parser"
)

// SessionFactory opens a ready to use session for a storefront.
type SessionFactory func(ctx context.Context, m locale.Marketplace) (Session, error)

// Registry hands out one AmazonScraper per storefront, opening its session
// on first use. Sessions of different storefronts open concurrently;
// callers racing for the same storefront share one open.
type Registry struct {
	factory SessionFactory
	parser  parser.Parser
	logger  *slog.Logger

	opening  singleflight.Group
	mu       sync.RWMutex
	scrapers map[string]*AmazonScraper
}

func NewRegistry(factory SessionFactory, p parser.Parser, logger *slog.Logger) *Registry {
	return &Registry{
		factory:  factory,
		parser:   p,
		logger:   logger,
		scrapers: make(map[string]*AmazonScraper),
	}
}

// For returns the scraper of country, which may be a domain suffix or an
// ISO code.
func (r *Registry) For(ctx context.Context, country string) (*AmazonScraper, locale.Marketplace, error) {
	m, err := locale.Lookup(country)
	if err != nil {
		return nil, locale.Marketplace{}, err
	}

	if s, ok := r.cached(m.Domain); ok {
		return s, m, nil
	}

	v, err, _ := r.opening.Do(m.Domain, func() (any, error) {
		if s, ok := r.cached(m.Domain); ok {
			return s, nil
		}

		session, err := r.factory(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("failed to open session for %s: %w", m.Domain, err)
		}

		s := NewAmazonScraper(session, r.parser, m.BaseURL(), r.logger.With("domain", m.Domain))
		r.mu.Lock()
		r.scrapers[m.Domain] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, m, err
	}
	return v.(*AmazonScraper), m, nil
}

func (r *Registry) cached(domain string) (*AmazonScraper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scrapers[domain]
	return s, ok
}
