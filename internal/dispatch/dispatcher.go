package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/metrics"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

const defaultFailureKind = "side effect error"

type Options struct {
	Workers        int
	QueueSize      int
	MaxAttempts    int
	Backoff        time.Duration
	HandlerTimeout time.Duration
	Breaker        BreakerConfig
}

type BreakerConfig struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type route struct {
	name    string
	handler Handler
	breaker *gobreaker.CircuitBreaker[struct{}]
}

// Dispatcher runs registered handlers for enqueued events on a fixed pool
// of workers. Enqueue never blocks; a full queue drops the event.
type Dispatcher struct {
	opts   Options
	queue  chan Event
	routes map[string][]*route

	mu      sync.RWMutex
	started bool
	closed  bool

	wg   sync.WaitGroup
	quit chan struct{}

	// base parents every handler context and is cancelled when Shutdown
	// gives up waiting.
	base       context.Context
	cancelBase context.CancelFunc
}

func New(opts Options) *Dispatcher {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 10 * time.Second
	}
	if opts.Breaker == (BreakerConfig{}) {
		opts.Breaker = DefaultBreakerConfig()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		opts:       opts,
		queue:      make(chan Event, opts.QueueSize),
		routes:     make(map[string][]*route),
		quit:       make(chan struct{}),
		base:       base,
		cancelBase: cancel,
	}
}

// Register adds a handler for topic. It must be called before Start.
func (d *Dispatcher) Register(topic, name string, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg := d.opts.Breaker
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("dispatch circuit breaker state change",
				zap.String("handler", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	d.routes[topic] = append(d.routes[topic], &route{
		name:    name,
		handler: h,
		breaker: gobreaker.NewCircuitBreaker[struct{}](settings),
	})
}

func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue schedules e and reports whether it was accepted. It returns false
// when the queue is full or the dispatcher is shut down.
func (d *Dispatcher) Enqueue(ctx context.Context, e Event) bool {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = logger.RequestIDFrom(ctx)
	}
	if e.ActorID == "" {
		e.ActorID = logger.ActorIDFrom(ctx)
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "dispatch"),
		zap.String("topic", e.Topic),
		zap.String("event_id", e.ID.String()),
	)
	if d.closed {
		log.Warn("dispatcher closed, event dropped")
		metrics.DispatchDropped.Inc()
		return false
	}

	select {
	case d.queue <- e:
		return true
	default:
		log.Warn("dispatch queue full, event dropped", zap.Int("queue_size", d.opts.QueueSize))
		metrics.DispatchDropped.Inc()
		return false
	}
}

// Shutdown stops accepting events and waits for queued ones to finish. When
// ctx expires first, running handlers are cancelled, queued events and
// pending retries are abandoned, and ctx.Err is returned.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	started := d.started
	d.mu.Unlock()

	if !started {
		d.cancelBase()
		return nil
	}

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancelBase()
		return nil
	case <-ctx.Done():
		close(d.quit)
		d.cancelBase()
		<-done
		return ctx.Err()
	}
}

func (d *Dispatcher) stopping() bool {
	select {
	case <-d.quit:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for e := range d.queue {
		if d.stopping() {
			d.abandon(e)
			continue
		}
		d.deliver(e)
	}
}

func (d *Dispatcher) abandon(e Event) {
	metrics.DispatchDropped.Inc()
	logger.L().Warn("event abandoned on shutdown",
		zap.String("layer", "dispatch"),
		zap.String("topic", e.Topic),
		zap.String("event_id", e.ID.String()),
		zap.String("error_kind", failureKindOf(e)),
	)
}

func failureKindOf(e Event) string {
	if e.FailureKind == "" {
		return defaultFailureKind
	}
	return e.FailureKind
}

func (d *Dispatcher) deliver(e Event) {
	d.mu.RLock()
	routes := d.routes[e.Topic]
	d.mu.RUnlock()

	ctx := logger.WithRequestID(d.base, e.RequestID)
	if e.ActorID != "" {
		ctx = logger.WithActorID(ctx, e.ActorID)
	}
	if len(routes) == 0 {
		logger.FromCtx(ctx).Warn("no handler registered for topic", zap.String("topic", e.Topic))
		return
	}

	for _, r := range routes {
		if d.stopping() {
			d.abandon(e)
			return
		}
		d.run(ctx, r, e)
	}
}

func (d *Dispatcher) run(ctx context.Context, r *route, e Event) {
	failureKind := failureKindOf(e)
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "dispatch"),
		zap.String("handler", r.name),
		zap.String("topic", e.Topic),
		zap.String("event_id", e.ID.String()),
		zap.String("business_id", e.BusinessID.String()),
	)

	for attempt := 1; attempt <= d.opts.MaxAttempts; attempt++ {
		_, err := r.breaker.Execute(func() (struct{}, error) {
			hctx, cancel := context.WithTimeout(ctx, d.opts.HandlerTimeout)
			defer cancel()
			return struct{}{}, r.handler.Handle(hctx, e)
		})
		if err == nil {
			metrics.DispatchEvents.WithLabelValues(r.name, metrics.OutcomeSuccess).Inc()
			return
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.DispatchEvents.WithLabelValues(r.name, metrics.OutcomeRejected).Inc()
			log.Error("side effect skipped, circuit open",
				zap.String("error_kind", failureKind),
				zap.Error(err),
			)
			return
		}

		if attempt == d.opts.MaxAttempts {
			metrics.DispatchEvents.WithLabelValues(r.name, metrics.OutcomeFailed).Inc()
			log.Error("side effect failed",
				zap.String("error_kind", failureKind),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return
		}

		metrics.DispatchEvents.WithLabelValues(r.name, metrics.OutcomeRetry).Inc()
		log.Warn("side effect attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))

		if !d.wait(time.Duration(attempt) * d.opts.Backoff) {
			log.Error("side effect abandoned on shutdown",
				zap.String("error_kind", failureKind),
				zap.Error(err),
			)
			return
		}
	}
}

func (d *Dispatcher) wait(delay time.Duration) bool {
	if d.stopping() {
		return false
	}
	if delay <= 0 {
		return true
	}
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-d.quit:
		return false
	}
}
