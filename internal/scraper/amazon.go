package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/maltedev/terraplen/internal/models"
	"github.com/maltedev/terraplen/internal/parser"
)

// AmazonScraper fetches product detail pages of one storefront and turns
// them into entities. It holds no state of its own and is safe for
// concurrent use when its session is.
type AmazonScraper struct {
	session Session
	parser  parser.Parser
	baseURL string
	logger  *slog.Logger
}

func NewAmazonScraper(session Session, p parser.Parser, baseURL string, logger *slog.Logger) *AmazonScraper {
	return &AmazonScraper{
		session: session,
		parser:  p,
		baseURL: baseURL,
		logger:  logger.With("component", "scraper"),
	}
}

// GetProduct scrapes the product detail page of asin.
func (s *AmazonScraper) GetProduct(ctx context.Context, asin string) (models.Entity, error) {
	if !ValidASIN(asin) {
		return nil, fmt.Errorf("%w: malformed ASIN %q", ErrInvalidURL, asin)
	}

	url := ProductURL(s.baseURL, asin)
	s.logger.Info("scraping product", "asin", asin, "url", url)

	html, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	entity, err := s.parser.ParseProductPage(html, asin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product %s: %w", asin, err)
	}

	s.logger.Info("product scraped", "asin", asin, "kind", entity.Kind())
	return entity, nil
}

// ScrapeProduct scrapes a product given its URL.
func (s *AmazonScraper) ScrapeProduct(ctx context.Context, rawURL string) (models.Entity, error) {
	_, asin, err := ExtractASIN(rawURL)
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, asin)
}

// fetch retries once after refreshing the session when the storefront
// flagged the request as a bot.
func (s *AmazonScraper) fetch(ctx context.Context, url string) (string, error) {
	html, err := s.session.Fetch(ctx, url)
	if err == nil || !errors.Is(err, ErrBotDetected) {
		return html, err
	}

	s.logger.Warn("bot detected, refreshing session", "url", url)
	if initErr := s.session.Init(ctx); initErr != nil {
		return "", fmt.Errorf("failed to refresh session: %w", initErr)
	}

	return s.session.Fetch(ctx, url)
}
