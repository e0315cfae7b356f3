package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/maltedev/terraplen/internal/locale"
	"github.com/maltedev/terraplen/internal/ratelimit"
)

// HTTPSession fetches storefront pages over plain HTTP and keeps the cookies
// the storefront hands out, including the display language and currency.
type HTTPSession struct {
	client      *http.Client
	marketplace locale.Marketplace
	baseURL     string
	agents      *UserAgentPool
	limiter     *ratelimit.AdaptiveRateLimiter
	logger      *slog.Logger

	mu       sync.Mutex
	cookies  map[string]string
	language string
	currency string
}

// NewHTTPSession creates a session for a storefront. baseURL overrides the
// storefront's public address when not empty.
func NewHTTPSession(m locale.Marketplace, baseURL string, opts Options, logger *slog.Logger) *HTTPSession {
	if baseURL == "" {
		baseURL = m.BaseURL()
	}

	s := &HTTPSession{
		client:      &http.Client{Timeout: opts.Timeout},
		marketplace: m,
		baseURL:     strings.TrimRight(baseURL, "/"),
		agents:      NewUserAgentPool(opts.UserAgents),
		limiter:     ratelimit.NewAdaptiveRateLimiter(opts.MinDelay, opts.MaxDelay),
		logger:      logger.With("component", "session", "domain", m.Domain),
		cookies:     make(map[string]string),
		language:    m.DefaultLanguage,
		currency:    m.Currency,
	}

	if opts.Language != "" {
		s.language = opts.Language
	}
	if opts.Currency != "" {
		s.currency = opts.Currency
	}

	s.cookies[m.LanguageCookie()] = s.language
	s.cookies[m.CurrencyCookie()] = s.currency

	return s
}

// Init visits the top page to pick up session cookies.
func (s *HTTPSession) Init(ctx context.Context) error {
	if _, err := s.Fetch(ctx, s.baseURL); err != nil {
		return fmt.Errorf("failed to initialize session: %w", err)
	}
	s.logger.Debug("session initialized", "language", s.Language(), "currency", s.Currency())
	return nil
}

func (s *HTTPSession) Fetch(ctx context.Context, url string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := s.fetch(ctx, url)
	s.limiter.Observe(err)
	return body, err
}

func (s *HTTPSession) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.agents.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", strings.ReplaceAll(s.Language(), "_", "-"))
	req.Header.Set("Cookie", s.cookieHeader())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		s.logger.Warn("storefront refused request", "url", url, "status", resp.StatusCode)
		return "", fmt.Errorf("%w: %s", ErrBotDetected, url)
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode >= 400:
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	s.updateCookies(resp.Cookies())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", url, err)
	}
	return string(body), nil
}

// updateCookies stores the cookies set by the storefront. A language or
// currency the storefront does not accept is replaced with its choice.
func (s *HTTPSession) updateCookies(cookies []*http.Cookie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cookies {
		switch c.Name {
		case s.marketplace.LanguageCookie():
			if c.Value != s.language {
				s.logger.Warn("language not accepted by storefront, using server choice",
					"requested", s.language, "server", c.Value)
				s.language = c.Value
			}
		case s.marketplace.CurrencyCookie():
			if c.Value != s.currency {
				s.logger.Warn("currency not accepted by storefront, using server choice",
					"requested", s.currency, "server", c.Value)
				s.currency = c.Value
			}
		}
		s.cookies[c.Name] = c.Value
	}
}

func (s *HTTPSession) cookieHeader() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.cookies))
	for name := range s.cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, len(names))
	for i, name := range names {
		pairs[i] = name + "=" + s.cookies[name]
	}
	return strings.Join(pairs, "; ")
}

func (s *HTTPSession) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *HTTPSession) Currency() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currency
}

func (s *HTTPSession) BaseURL() string {
	return s.baseURL
}
