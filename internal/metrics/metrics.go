package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"type"},
	)

	OrderCreateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_create_failures_total",
			Help: "Total number of failed order creations by error kind",
		},
		[]string{"kind"},
	)

	OrderCreateDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_create_duration_seconds",
			Help:    "Duration of order creation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	InventoryDecrements = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inventory_decrements_total",
			Help: "Total number of stock counter decrements",
		},
	)

	DispatchEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_events_total",
			Help: "Side-effect deliveries by handler and outcome",
		},
		[]string{"handler", "outcome"},
	)

	DispatchDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_dropped_total",
			Help: "Side-effect events dropped because the queue was full",
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)
)

// Dispatch outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRetry    = "retry"
	OutcomeFailed   = "failed"
	OutcomeRejected = "breaker_open"
)

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// ObserveSeconds records the elapsed time on h.
func (t *Timer) ObserveSeconds(h prometheus.Observer) {
	h.Observe(t.Duration().Seconds())
}
