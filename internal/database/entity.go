package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/maltedev/terraplen/internal/models"
)

var ErrEntityNotFound = errors.New("entity not found")

const (
	EntityAggregateType    = "entity"
	EventTypeEntityScraped = "ENTITY_SCRAPED"
)

// StoredEntity is a scraped entity as persisted, keyed by ASIN and
// storefront domain. Payload holds the entity's JSON encoding.
type StoredEntity struct {
	ASIN      string          `json:"asin"`
	Domain    string          `json:"domain"`
	Kind      models.Kind     `json:"kind"`
	Title     string          `json:"title"`
	Payload   json.RawMessage `json:"payload"`
	ScrapedAt time.Time       `json:"scraped_at"`
}

// EntityScrapedEvent is the outbox payload announcing a stored entity.
type EntityScrapedEvent struct {
	ASIN      string      `json:"asin"`
	Domain    string      `json:"domain"`
	Kind      models.Kind `json:"kind"`
	Title     string      `json:"title"`
	ScrapedAt time.Time   `json:"scraped_at"`
}

type EntityStore struct {
	db     *DB
	outbox *OutboxRepository
	stream string
}

func NewEntityStore(db *DB, stream string) *EntityStore {
	if stream == "" {
		stream = DefaultEntityStream
	}
	return &EntityStore{
		db:     db,
		outbox: NewOutboxRepository(db),
		stream: stream,
	}
}

// SaveEntity upserts entity for domain and queues an ENTITY_SCRAPED event
// in the same transaction.
func (s *EntityStore) SaveEntity(ctx context.Context, domain string, entity models.Entity) (*StoredEntity, error) {
	stored, err := NewStoredEntity(domain, entity, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	event, err := s.scrapedEvent(stored)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO scraped_entities (asin, domain, kind, title, payload, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (asin, domain) DO UPDATE SET
				kind = EXCLUDED.kind,
				title = EXCLUDED.title,
				payload = EXCLUDED.payload,
				scraped_at = EXCLUDED.scraped_at`

		if _, err := tx.Exec(ctx, query,
			stored.ASIN, stored.Domain, string(stored.Kind), stored.Title,
			stored.Payload, stored.ScrapedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert entity %s: %w", stored.ASIN, err)
		}

		return s.outbox.InsertWithTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// GetEntity loads the last stored scrape of asin on domain.
func (s *EntityStore) GetEntity(ctx context.Context, domain, asin string) (*StoredEntity, error) {
	stored := &StoredEntity{}
	var kind string

	err := s.db.pool.QueryRow(ctx, `
		SELECT asin, domain, kind, title, payload, scraped_at
		FROM scraped_entities
		WHERE asin = $1 AND domain = $2`, asin, domain).Scan(
		&stored.ASIN, &stored.Domain, &kind, &stored.Title, &stored.Payload, &stored.ScrapedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s on %s", ErrEntityNotFound, asin, domain)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity %s: %w", asin, err)
	}

	stored.Kind = models.Kind(kind)
	return stored, nil
}

func (s *EntityStore) scrapedEvent(stored *StoredEntity) (*OutboxEvent, error) {
	payload, err := json.Marshal(EntityScrapedEvent{
		ASIN:      stored.ASIN,
		Domain:    stored.Domain,
		Kind:      stored.Kind,
		Title:     stored.Title,
		ScrapedAt: stored.ScrapedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &OutboxEvent{
		AggregateType: EntityAggregateType,
		AggregateID:   AggregateID(stored.Domain, stored.ASIN),
		EventType:     EventTypeEntityScraped,
		Payload:       payload,
		TargetStream:  s.stream,
	}, nil
}

// NewStoredEntity encodes entity for persistence.
func NewStoredEntity(domain string, entity models.Entity, scrapedAt time.Time) (*StoredEntity, error) {
	if entity == nil || entity.ProductASIN() == "" {
		return nil, errors.New("entity without ASIN cannot be stored")
	}

	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity %s: %w", entity.ProductASIN(), err)
	}

	return &StoredEntity{
		ASIN:      entity.ProductASIN(),
		Domain:    domain,
		Kind:      entity.Kind(),
		Title:     EntityTitle(entity),
		Payload:   payload,
		ScrapedAt: scrapedAt,
	}, nil
}

// AggregateID identifies an entity across storefronts.
func AggregateID(domain, asin string) string {
	return domain + ":" + asin
}

// EntityTitle returns the display title of any entity kind.
func EntityTitle(entity models.Entity) string {
	switch e := entity.(type) {
	case *models.Product:
		return e.Title
	case *models.ProductVariations:
		return e.Title
	case *models.Book:
		return e.Title
	case *models.Movie:
		return e.Title
	case *models.Kindle:
		return e.Title
	case *models.PrimeVideoMovie:
		return e.Title
	case *models.PrimeVideoTV:
		return e.Title
	default:
		return ""
	}
}
