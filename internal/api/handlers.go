package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/maltedev/terraplen/internal/database"
	"github.com/maltedev/terraplen/internal/locale"
	"github.com/maltedev/terraplen/internal/models"
	"github.com/maltedev/terraplen/internal/parser"
	"github.com/maltedev/terraplen/internal/scraper"
)

type ProductScraper interface {
	GetProduct(ctx context.Context, asin string) (models.Entity, error)
}

// ScraperLookup resolves the scraper serving a storefront.
type ScraperLookup func(ctx context.Context, country string) (ProductScraper, locale.Marketplace, error)

// FromRegistry adapts a scraper registry for the handlers.
func FromRegistry(r *scraper.Registry) ScraperLookup {
	return func(ctx context.Context, country string) (ProductScraper, locale.Marketplace, error) {
		s, m, err := r.For(ctx, country)
		if err != nil {
			return nil, m, err
		}
		return s, m, nil
	}
}

type EntityStore interface {
	SaveEntity(ctx context.Context, domain string, entity models.Entity) (*database.StoredEntity, error)
	GetEntity(ctx context.Context, domain, asin string) (*database.StoredEntity, error)
}

type OutboxStats interface {
	GetPendingCount(ctx context.Context) (int64, error)
	GetDeadLetterCount(ctx context.Context) (int64, error)
}

type Handlers struct {
	scrapers       ScraperLookup
	store          EntityStore
	outbox         OutboxStats
	defaultCountry string
	logger         *slog.Logger
}

// NewHandlers wires the HTTP handlers. store and outbox may be nil when
// persistence is disabled.
func NewHandlers(scrapers ScraperLookup, store EntityStore, outbox OutboxStats, defaultCountry string, logger *slog.Logger) *Handlers {
	return &Handlers{
		scrapers:       scrapers,
		store:          store,
		outbox:         outbox,
		defaultCountry: defaultCountry,
		logger:         logger.With("component", "api"),
	}
}

type ProductRequest struct {
	ASIN    string `json:"asin"`
	URL     string `json:"url"`
	Country string `json:"country"`
}

// resolve fills ASIN and country from the URL when one is given.
func (req *ProductRequest) resolve(defaultCountry string) error {
	req.ASIN = strings.TrimSpace(req.ASIN)

	if req.URL != "" {
		domain, asin, err := scraper.ExtractASIN(req.URL)
		if err != nil {
			return err
		}
		if req.ASIN == "" {
			req.ASIN = asin
		}
		if req.Country == "" {
			req.Country = domain
		}
	}

	if req.ASIN == "" {
		return errors.New("either asin or url is required")
	}
	if req.Country == "" {
		req.Country = defaultCountry
	}
	return nil
}

// ScrapeProduct handles POST /api/v1/products.
func (h *Handlers) ScrapeProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", errors.New("invalid request body"), "")
		return
	}

	if err := req.resolve(h.defaultCountry); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", err, req.URL)
		return
	}

	scrapeID := uuid.NewString()
	w.Header().Set("X-Scrape-ID", scrapeID)
	logger := h.logger.With(
		"scrape_id", scrapeID,
		"request_id", middleware.GetReqID(r.Context()),
		"asin", req.ASIN,
		"country", req.Country)

	s, m, err := h.scrapers(r.Context(), req.Country)
	if err != nil {
		status, code := errorStatus(err)
		logger.Error("failed to resolve storefront", "error", err)
		h.respondError(w, status, code, err, req.URL)
		return
	}

	entity, err := s.GetProduct(r.Context(), req.ASIN)
	if err != nil {
		status, code := errorStatus(err)
		logger.Error("failed to scrape product", "error", err, "status", status)
		h.respondError(w, status, code, err, scraper.ProductURL(m.BaseURL(), req.ASIN))
		return
	}

	if h.store != nil {
		if _, err := h.store.SaveEntity(r.Context(), m.Domain, entity); err != nil {
			logger.Error("failed to store entity", "error", err)
		}
	}

	logger.Info("product scraped", "kind", entity.Kind())
	h.respondJSON(w, http.StatusOK, models.NewResult(entity))
}

// GetStoredProduct handles GET /api/v1/products/{country}/{asin}.
func (h *Handlers) GetStoredProduct(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.respondError(w, http.StatusNotImplemented, "persistence_disabled", errors.New("entity storage is not configured"), "")
		return
	}

	m, err := locale.Lookup(chi.URLParam(r, "country"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "unknown_country", err, "")
		return
	}

	stored, err := h.store.GetEntity(r.Context(), m.Domain, chi.URLParam(r, "asin"))
	if errors.Is(err, database.ErrEntityNotFound) {
		h.respondError(w, http.StatusNotFound, "not_found", err, "")
		return
	}
	if err != nil {
		h.logger.Error("failed to load entity", "error", err)
		h.respondError(w, http.StatusInternalServerError, "storage_failed", errors.New("failed to load entity"), "")
		return
	}

	h.respondJSON(w, http.StatusOK, stored)
}

// Health reports liveness and, when persistence is enabled, the outbox
// backlog.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{"status": "ok"}
	status := http.StatusOK

	if h.outbox != nil {
		pending, err := h.outbox.GetPendingCount(r.Context())
		if err != nil {
			h.logger.Warn("failed to count pending events", "error", err)
		}
		deadLetter, err := h.outbox.GetDeadLetterCount(r.Context())
		if err != nil {
			h.logger.Warn("failed to count dead letter events", "error", err)
		}

		health["outbox"] = map[string]any{
			"pending":     pending,
			"dead_letter": deadLetter,
		}

		if pending > 1000 {
			health["status"] = "warning"
			health["message"] = "high number of pending outbox events"
		}
		if deadLetter > 100 {
			health["status"] = "error"
			health["message"] = "high number of dead letter events"
			status = http.StatusServiceUnavailable
		}
	}

	h.respondJSON(w, status, health)
}

// errorStatus maps scrape failures to an HTTP status and an error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, locale.ErrUnknownCountry):
		return http.StatusBadRequest, "unknown_country"
	case errors.Is(err, scraper.ErrInvalidURL):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, scraper.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, parser.ErrUnknownProductType):
		return http.StatusUnprocessableEntity, "unknown_product_type"
	case errors.Is(err, parser.ErrUnknownEntityType):
		return http.StatusUnprocessableEntity, "unknown_entity_type"
	case errors.Is(err, parser.ErrMalformedPageData):
		return http.StatusBadGateway, "malformed_page_data"
	case errors.Is(err, scraper.ErrBotDetected):
		return http.StatusServiceUnavailable, "bot_detected"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "scrape_failed"
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, code string, err error, url string) {
	h.respondJSON(w, status, models.NewErrorResult(code, err, url))
}
