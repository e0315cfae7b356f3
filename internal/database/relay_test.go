package database

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) XAdd(ctx context.Context, args *redis.XAddArgs) *redis.StringCmd {
	mockArgs := m.Called(ctx, args)
	cmd := redis.NewStringCmd(ctx)
	if mockArgs.Get(0) != nil {
		cmd.SetErr(mockArgs.Error(0))
	} else {
		cmd.SetVal("1700000000000-0")
	}
	return cmd
}

func (m *MockRedisClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockOutboxRepository struct {
	mock.Mock
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, err error) error {
	args := m.Called(ctx, id, err)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scrapedEvent(domain, asin string) *OutboxEvent {
	return &OutboxEvent{
		ID:            uuid.New(),
		AggregateType: EntityAggregateType,
		AggregateID:   AggregateID(domain, asin),
		EventType:     EventTypeEntityScraped,
		Payload:       json.RawMessage(`{"asin":"` + asin + `","domain":"` + domain + `","kind":"book"}`),
		TargetStream:  DefaultEntityStream,
		CreatedAt:     time.Now(),
	}
}

func TestRelay_ProcessEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes every pending event", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, mockRedis, mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		events := []*OutboxEvent{
			scrapedEvent("com", "B07FZ8S74R"),
			scrapedEvent("co.jp", "4798121967"),
		}
		mockOutbox.On("GetPending", ctx, 10).Return(events, nil)

		for _, event := range events {
			mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
				return args.Stream == DefaultEntityStream &&
					streamValue(args, "event_type") == EventTypeEntityScraped &&
					streamValue(args, "aggregate_id") == event.AggregateID
			})).Return(nil)
			mockOutbox.On("MarkProcessed", ctx, event.ID).Return(nil)
		}

		published, err := relay.processEvents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, published)

		mockRedis.AssertExpectations(t)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("marks event failed when redis rejects it", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, mockRedis, mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		event := scrapedEvent("de", "B00KINDLE1")
		mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{event}, nil)
		mockRedis.On("XAdd", ctx, mock.Anything).Return(errors.New("connection refused"))
		mockOutbox.On("MarkFailed", ctx, event.ID, mock.MatchedBy(func(err error) bool {
			return err.Error() == "failed to publish to redis: connection refused"
		})).Return(nil)

		published, err := relay.processEvents(ctx)
		assert.NoError(t, err)
		assert.Zero(t, published)

		mockOutbox.AssertExpectations(t)
		mockOutbox.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)
	})

	t.Run("undecodable payload is marked failed without publishing", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, mockRedis, mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		event := scrapedEvent("com", "B07FZ8S74R")
		event.Payload = json.RawMessage(`{not json`)
		mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{event}, nil)
		mockOutbox.On("MarkFailed", ctx, event.ID, mock.Anything).Return(nil)

		_, err := relay.processEvents(ctx)
		require.NoError(t, err)

		mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("empty batch does not touch redis", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, mockRedis, mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		mockOutbox.On("GetPending", ctx, 10).Return([]*OutboxEvent{}, nil)

		published, err := relay.processEvents(ctx)
		require.NoError(t, err)
		assert.Zero(t, published)
		mockRedis.AssertNotCalled(t, "XAdd", mock.Anything, mock.Anything)
	})

	t.Run("one failure does not stop the batch", func(t *testing.T) {
		mockRedis := new(MockRedisClient)
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, mockRedis, mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		events := []*OutboxEvent{
			scrapedEvent("com", "B000000001"),
			scrapedEvent("com", "B000000002"),
		}
		mockOutbox.On("GetPending", ctx, 10).Return(events, nil)

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			return streamValue(args, "aggregate_id") == "com:B000000001"
		})).Return(errors.New("redis error"))
		mockOutbox.On("MarkFailed", ctx, events[0].ID, mock.Anything).Return(nil)

		mockRedis.On("XAdd", ctx, mock.MatchedBy(func(args *redis.XAddArgs) bool {
			return streamValue(args, "aggregate_id") == "com:B000000002"
		})).Return(nil)
		mockOutbox.On("MarkProcessed", ctx, events[1].ID).Return(nil)

		published, err := relay.processEvents(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, published)

		mockRedis.AssertExpectations(t)
		mockOutbox.AssertExpectations(t)
	})

	t.Run("outbox query failure is returned", func(t *testing.T) {
		mockOutbox := new(MockOutboxRepository)
		relay := newRelay(nil, new(MockRedisClient), mockOutbox, testLogger(), RelayConfig{BatchSize: 10})

		mockOutbox.On("GetPending", ctx, 10).Return(nil, errors.New("db down"))

		_, err := relay.processEvents(ctx)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestStreamArgs(t *testing.T) {
	event := scrapedEvent("co.jp", "4798121967")
	event.RetryCount = 2

	args, err := streamArgs(event)
	require.NoError(t, err)

	assert.Equal(t, DefaultEntityStream, args.Stream)
	assert.Equal(t, "co.jp:4798121967", streamValue(args, "aggregate_id"))
	assert.Equal(t, event.ID.String(), streamValue(args, "original_id"))

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(streamValue(args, "data").(string)), &data))

	assert.Equal(t, EventTypeEntityScraped, data["type"])
	assert.Equal(t, EntityAggregateType, data["aggregate_type"])

	payload, ok := data["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "4798121967", payload["asin"])

	metadata, ok := data["metadata"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "terraplen", metadata["source"])
	assert.EqualValues(t, 2, metadata["retry_count"])
}

func TestNewRelayDefaults(t *testing.T) {
	relay := newRelay(nil, new(MockRedisClient), new(MockOutboxRepository), testLogger(), RelayConfig{})

	assert.Equal(t, 5*time.Second, relay.interval)
	assert.Equal(t, 100, relay.batchSize)
}

func TestRelay_Start(t *testing.T) {
	mockOutbox := new(MockOutboxRepository)
	relay := newRelay(nil, new(MockRedisClient), mockOutbox, testLogger(), RelayConfig{
		PollInterval: 20 * time.Millisecond,
		BatchSize:    10,
	})

	mockOutbox.On("GetPending", mock.Anything, 10).Return([]*OutboxEvent{}, nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- relay.Start(ctx)
	}()

	time.Sleep(60 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop on context cancellation")
	}
}

func streamValue(args *redis.XAddArgs, key string) any {
	values, ok := args.Values.(map[string]any)
	if !ok {
		return nil
	}
	return values[key]
}
