package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/maltedev/terraplen/internal/api"
	"github.com/maltedev/terraplen/internal/app"
	"github.com/maltedev/terraplen/internal/config"
	"github.com/maltedev/terraplen/internal/database"
	"github.com/maltedev/terraplen/internal/models"
	"github.com/maltedev/terraplen/internal/parser"
	"github.com/maltedev/terraplen/internal/scraper"
)

var errScrapesFailed = errors.New("some products could not be scraped")

func NewProductCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "product [ASIN or URL]...",
		Short: "Scrape product detail pages",
		Long: `Scrape one or more product detail pages and print one JSON result per
argument, in argument order. Arguments are ASINs, scraped on --country, or
product URLs, scraped on the storefront they point to.

Examples:
  terraplen product B07FZ8S74R
  terraplen product --country co.jp 4798121967 B00KINDLE1
  terraplen product --backend browser https://www.amazon.de/dp/B07FZ8S74R
  terraplen product --save B07FZ8S74R`,
		Args: cobra.MinimumNArgs(1),
		RunE: runProductCmd,
	}

	cmd.Flags().StringP("country", "c", "", "Storefront for bare ASINs (default SCRAPER_COUNTRY)")
	cmd.Flags().String("backend", "", "Fetch backend: http or browser (default FETCH_BACKEND)")
	cmd.Flags().IntP("concurrency", "j", 2, "Number of pages scraped at once")
	cmd.Flags().Bool("pretty", false, "Indent the JSON output")
	cmd.Flags().Bool("save", false, "Store the entities in DATABASE_URL")

	return cmd
}

func runProductCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if country, _ := cmd.Flags().GetString("country"); country != "" {
		cfg.Scraper.Country = country
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		cfg.Scraper.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newCLILogger(cmd)
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	pretty, _ := cmd.Flags().GetBool("pretty")
	save, _ := cmd.Flags().GetBool("save")

	targets, err := parseTargets(args, cfg.Scraper.Country)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store api.EntityStore
	if save {
		if !cfg.PersistenceEnabled() {
			return errors.New("--save needs DATABASE_URL")
		}
		db, err := database.New(ctx, database.Config{URL: cfg.Database.URL, MaxConns: cfg.Database.MaxConns})
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		store = database.NewEntityStore(db, cfg.Redis.EntityStream)
	}

	sessions := app.NewSessions(cfg, nil, logger)
	defer sessions.Close()

	registry := scraper.NewRegistry(sessions.Open, parser.NewAmazonParser(), logger)
	results := scrapeAll(ctx, api.FromRegistry(registry), store, targets, concurrency, logger)

	return writeResults(cmd.OutOrStdout(), results, pretty)
}

func newCLILogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// target is one product to scrape.
type target struct {
	Arg     string
	ASIN    string
	Country string
}

// parseTargets resolves arguments to ASINs and storefronts. URLs carry their
// own storefront; bare ASINs use country.
func parseTargets(args []string, country string) ([]target, error) {
	targets := make([]target, 0, len(args))

	for _, arg := range args {
		arg = strings.TrimSpace(arg)

		if strings.Contains(arg, "/") {
			domain, asin, err := scraper.ExtractASIN(arg)
			if err != nil {
				return nil, err
			}
			targets = append(targets, target{Arg: arg, ASIN: asin, Country: domain})
			continue
		}

		if !scraper.ValidASIN(arg) {
			return nil, fmt.Errorf("%w: malformed ASIN %q", scraper.ErrInvalidURL, arg)
		}
		targets = append(targets, target{Arg: arg, ASIN: arg, Country: country})
	}

	return targets, nil
}

// scrapeAll scrapes every target, at most concurrency at a time. A failed
// target yields an error result and does not stop the others.
func scrapeAll(ctx context.Context, lookup api.ScraperLookup, store api.EntityStore, targets []target, concurrency int, logger *slog.Logger) []*models.ScrapeResult {
	results := make([]*models.ScrapeResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, t := range targets {
		g.Go(func() error {
			results[i] = scrapeOne(ctx, lookup, store, t, logger)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

func scrapeOne(ctx context.Context, lookup api.ScraperLookup, store api.EntityStore, t target, logger *slog.Logger) *models.ScrapeResult {
	s, m, err := lookup(ctx, t.Country)
	if err != nil {
		return models.NewErrorResult("session_failed", err, t.Arg)
	}

	entity, err := s.GetProduct(ctx, t.ASIN)
	if err != nil {
		logger.Warn("scrape failed", "asin", t.ASIN, "domain", m.Domain, "error", err)
		return models.NewErrorResult(errorCode(err), err, scraper.ProductURL(m.BaseURL(), t.ASIN))
	}

	if store != nil {
		if _, err := store.SaveEntity(ctx, m.Domain, entity); err != nil {
			logger.Error("failed to store entity", "asin", t.ASIN, "error", err)
		}
	}

	return models.NewResult(entity)
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, scraper.ErrNotFound):
		return "not_found"
	case errors.Is(err, scraper.ErrBotDetected):
		return "bot_detected"
	case errors.Is(err, parser.ErrUnknownProductType):
		return "unknown_product_type"
	case errors.Is(err, parser.ErrUnknownEntityType):
		return "unknown_entity_type"
	case errors.Is(err, parser.ErrMalformedPageData):
		return "malformed_page_data"
	default:
		return "scrape_failed"
	}
}

// writeResults prints one JSON document per result and reports whether any
// scrape failed.
func writeResults(w io.Writer, results []*models.ScrapeResult, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}

	failed := 0
	for _, r := range results {
		if !r.Success {
			failed++
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to write result: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errScrapesFailed, failed, len(results))
	}
	return nil
}
