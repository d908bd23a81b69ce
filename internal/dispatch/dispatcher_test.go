package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"orderdesk-be/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	previous := logger.L()
	logger.Set(zap.New(core))
	t.Cleanup(func() { logger.Set(previous) })
	return logs
}

func testOptions() Options {
	return Options{Workers: 2, QueueSize: 8, MaxAttempts: 3, Backoff: time.Millisecond}
}

func TestDispatcher_DeliversToEveryHandler(t *testing.T) {
	d := New(testOptions())

	var mu sync.Mutex
	got := map[string]Event{}
	record := func(name string) Handler {
		return HandlerFunc(func(ctx context.Context, e Event) error {
			mu.Lock()
			defer mu.Unlock()
			got[name] = e
			assert.Equal(t, "req-1", logger.RequestIDFrom(ctx))
			return nil
		})
	}
	d.Register("order.created", "notification", record("notification"))
	d.Register("order.created", "audit", record("audit"))
	d.Start()

	ctx := logger.WithRequestID(context.Background(), "req-1")
	ok := d.Enqueue(ctx, Event{Topic: "order.created", BusinessID: uuid.New()})
	require.True(t, ok)

	require.NoError(t, d.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
	assert.NotEqual(t, uuid.Nil, got["audit"].ID)
	assert.Equal(t, "req-1", got["audit"].RequestID)
	assert.False(t, got["audit"].OccurredAt.IsZero())
}

func TestDispatcher_RetriesThenSucceeds(t *testing.T) {
	d := New(testOptions())

	var calls atomic.Int32
	d.Register("t", "flaky", HandlerFunc(func(ctx context.Context, e Event) error {
		if calls.Add(1) < 3 {
			return errors.New("broker unavailable")
		}
		return nil
	}))
	d.Start()

	require.True(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, int32(3), calls.Load())
}

func TestDispatcher_FailureIsLoggedWithKind(t *testing.T) {
	logs := observe(t)
	d := New(testOptions())

	var calls atomic.Int32
	d.Register("t", "broken", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		return errors.New("smtp down")
	}))
	d.Start()

	require.True(t, d.Enqueue(context.Background(), Event{Topic: "t", FailureKind: "admin/system order creation error"}))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, int32(3), calls.Load())
	failed := logs.FilterMessage("side effect failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "admin/system order creation error", failed[0].ContextMap()["error_kind"])
	assert.Equal(t, "broken", failed[0].ContextMap()["handler"])
}

func TestDispatcher_BreakerOpensAfterFailures(t *testing.T) {
	opts := testOptions()
	opts.Workers = 1
	opts.MaxAttempts = 1
	opts.Breaker = BreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2}
	d := New(opts)

	var calls atomic.Int32
	d.Register("t", "failing", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		return errors.New("down")
	}))
	d.Start()

	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
	}
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, int32(2), calls.Load())
}

func TestDispatcher_EnqueueNeverBlocks(t *testing.T) {
	logs := observe(t)
	opts := testOptions()
	opts.QueueSize = 1
	d := New(opts)

	// Not started, so nothing drains the queue.
	assert.True(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
	assert.False(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
	assert.Equal(t, 1, logs.FilterMessage("dispatch queue full, event dropped").Len())

	require.NoError(t, d.Shutdown(context.Background()))
	assert.False(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
}

func TestDispatcher_ShutdownTimeoutAbandonsRetries(t *testing.T) {
	opts := testOptions()
	opts.MaxAttempts = 5
	opts.Backoff = time.Hour
	d := New(opts)
	d.Register("t", "slow", HandlerFunc(func(ctx context.Context, e Event) error {
		return errors.New("nope")
	}))
	d.Start()
	require.True(t, d.Enqueue(context.Background(), Event{Topic: "t"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := d.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_ShutdownHonoursDeadlineWithBacklog(t *testing.T) {
	logs := observe(t)
	opts := testOptions()
	opts.Workers = 1
	opts.HandlerTimeout = time.Minute
	d := New(opts)

	var calls, cancelled atomic.Int32
	d.Register("t", "slow", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		select {
		case <-ctx.Done():
			cancelled.Add(1)
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
			return nil
		}
	}))
	d.Start()
	for i := 0; i < 5; i++ {
		require.True(t, d.Enqueue(context.Background(), Event{Topic: "t"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := d.Shutdown(ctx)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 150*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), cancelled.Load())
	assert.Equal(t, 4, logs.FilterMessage("event abandoned on shutdown").Len())
}

func TestDispatcher_UnknownTopic(t *testing.T) {
	logs := observe(t)
	d := New(testOptions())
	d.Start()

	require.True(t, d.Enqueue(context.Background(), Event{Topic: "nobody.listens"}))
	require.NoError(t, d.Shutdown(context.Background()))

	assert.Equal(t, 1, logs.FilterMessage("no handler registered for topic").Len())
}
