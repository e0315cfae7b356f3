package database

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DATABASE_URL and skips the test when it is
// not set.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := New(ctx, Config{URL: url, MaxConns: 4})
	require.NoError(t, err)
	require.NoError(t, db.EnsureSchema(ctx))

	t.Cleanup(db.Close)
	return db
}

func TestRetryBackoff(t *testing.T) {
	tests := []struct {
		retries int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{8, 256 * time.Second},
		{9, 5 * time.Minute},
		{64, 5 * time.Minute},
		{-1, time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, retryBackoff(tt.retries), "retries=%d", tt.retries)
	}
}

func TestFailureState(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	status, next := failureState(1, now)
	assert.Equal(t, OutboxStatusFailed, status)
	assert.Equal(t, now.Add(2*time.Second), next)

	status, _ = failureState(MaxRetryCount-1, now)
	assert.Equal(t, OutboxStatusFailed, status)

	status, _ = failureState(MaxRetryCount, now)
	assert.Equal(t, OutboxStatusDeadLetter, status)
}

func TestOutboxEventPrepare(t *testing.T) {
	now := time.Now()

	event := &OutboxEvent{EventType: EventTypeEntityScraped}
	event.prepare(now)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, OutboxStatusPending, event.Status)
	assert.Equal(t, DefaultEntityStream, event.TargetStream)
	assert.Equal(t, now, event.CreatedAt)
	require.NotNil(t, event.NextRetryAt)
	assert.Equal(t, now, *event.NextRetryAt)

	id := uuid.New()
	custom := &OutboxEvent{ID: id, TargetStream: "stream:custom"}
	custom.prepare(now)
	assert.Equal(t, id, custom.ID)
	assert.Equal(t, "stream:custom", custom.TargetStream)
}

func TestOutboxRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)

	event := &OutboxEvent{
		AggregateType: EntityAggregateType,
		AggregateID:   AggregateID("com", "B0TESTOUT1"),
		EventType:     EventTypeEntityScraped,
		Payload:       json.RawMessage(`{"asin":"B0TESTOUT1"}`),
	}

	err := db.Transaction(ctx, func(tx pgx.Tx) error {
		return repo.InsertWithTx(ctx, tx, event)
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = db.Exec(ctx, "DELETE FROM outbox_event WHERE id = $1", event.ID)
	})

	pending, err := repo.GetPending(ctx, 100)
	require.NoError(t, err)
	assert.True(t, containsEvent(pending, event.ID))

	require.NoError(t, repo.MarkFailed(ctx, event.ID, errors.New("redis unavailable")))

	var status, message string
	var retries int
	err = db.QueryRow(ctx,
		"SELECT status, retry_count, error_message FROM outbox_event WHERE id = $1", event.ID).
		Scan(&status, &retries, &message)
	require.NoError(t, err)
	assert.Equal(t, OutboxStatusFailed, status)
	assert.Equal(t, 1, retries)
	assert.Equal(t, "redis unavailable", message)

	pending, err = repo.GetPending(ctx, 100)
	require.NoError(t, err)
	assert.False(t, containsEvent(pending, event.ID), "backoff should hide the event")

	require.NoError(t, repo.MarkProcessed(ctx, event.ID))
	assert.Error(t, repo.MarkProcessed(ctx, uuid.New()))
}

func TestOutboxRepository_RolledBackInsertIsInvisible(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	repo := NewOutboxRepository(db)

	event := &OutboxEvent{
		AggregateType: EntityAggregateType,
		AggregateID:   AggregateID("com", "B0TESTOUT2"),
		EventType:     EventTypeEntityScraped,
		Payload:       json.RawMessage(`{"asin":"B0TESTOUT2"}`),
	}

	rollback := errors.New("abort")
	err := db.Transaction(ctx, func(tx pgx.Tx) error {
		if err := repo.InsertWithTx(ctx, tx, event); err != nil {
			return err
		}
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	pending, err := repo.GetPending(ctx, 1000)
	require.NoError(t, err)
	assert.False(t, containsEvent(pending, event.ID))
}

func containsEvent(events []*OutboxEvent, id uuid.UUID) bool {
	for _, e := range events {
		if e.ID == id {
			return true
		}
	}
	return false
}
