// Package app wires configuration into the storefront sessions shared by
// the API server and the CLI.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/maltedev/terraplen/internal/browser"
	"github.com/maltedev/terraplen/internal/cache"
	"github.com/maltedev/terraplen/internal/config"
	"github.com/maltedev/terraplen/internal/locale"
	"github.com/maltedev/terraplen/internal/scraper"
)

// ScraperOptions maps the scraper section of the configuration.
func ScraperOptions(cfg config.ScraperConfig) scraper.Options {
	return scraper.Options{
		Language:   cfg.Language,
		Currency:   cfg.Currency,
		UserAgents: cfg.UserAgents,
		Timeout:    cfg.Timeout,
		MinDelay:   cfg.RateLimitMin,
		MaxDelay:   cfg.RateLimitMax,
	}
}

// BrowserOptions localizes the browser defaults for m.
func BrowserOptions(cfg *config.Config, m locale.Marketplace) *browser.Options {
	opts := browser.OptionsFor(m)
	opts.Headless = cfg.Browser.Headless
	opts.Timeout = cfg.Browser.Timeout
	opts.ProxyServer = cfg.Browser.ProxyServer
	opts.MaxRetries = cfg.Browser.MaxRetries
	opts.MinDelay = cfg.Scraper.RateLimitMin
	opts.MaxDelay = cfg.Scraper.RateLimitMax
	if len(cfg.Scraper.UserAgents) > 0 {
		opts.UserAgent = cfg.Scraper.UserAgents[0]
	}
	if cfg.Scraper.Language != "" {
		opts.Cookies[m.LanguageCookie()] = cfg.Scraper.Language
	}
	if cfg.Scraper.Currency != "" {
		opts.Cookies[m.CurrencyCookie()] = cfg.Scraper.Currency
	}
	return opts
}

// Sessions opens storefront sessions on the configured backend, optionally
// behind the redis page cache, and closes the browsers it started.
type Sessions struct {
	cfg    *config.Config
	pages  cache.RedisClient
	logger *slog.Logger

	mu       sync.Mutex
	browsers []*browser.Browser
}

// NewSessions creates the session source. pages may be nil to disable the
// page cache.
func NewSessions(cfg *config.Config, pages cache.RedisClient, logger *slog.Logger) *Sessions {
	return &Sessions{cfg: cfg, pages: pages, logger: logger}
}

// Open satisfies scraper.SessionFactory.
func (s *Sessions) Open(ctx context.Context, m locale.Marketplace) (scraper.Session, error) {
	var session scraper.Session

	switch s.cfg.Scraper.Backend {
	case config.BackendBrowser:
		b, err := browser.New(BrowserOptions(s.cfg, m), s.logger)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.browsers = append(s.browsers, b)
		s.mu.Unlock()
		session = b
	default:
		session = scraper.NewHTTPSession(m, "", ScraperOptions(s.cfg.Scraper), s.logger)
	}

	if s.pages != nil {
		session = cache.NewPageCache(session, s.pages, "", s.cfg.Redis.PageCacheTTL, s.logger)
	}

	if !s.cfg.Scraper.SkipInit {
		if err := session.Init(ctx); err != nil {
			return nil, err
		}
	}

	s.logger.Info("storefront session opened", "domain", m.Domain, "backend", s.cfg.Scraper.Backend)
	return session, nil
}

func (s *Sessions) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, b := range s.browsers {
		if err := b.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.browsers = nil
	return errors.Join(errs...)
}
