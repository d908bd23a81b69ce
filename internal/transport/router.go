package transport

import (
	"context"
	"net/http"
	"time"

	"orderdesk-be/internal/auth"
	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

type RouterDeps struct {
	Orders         *OrderHandler
	Products       *ProductHandler
	Tokens         *auth.TokenManager
	Limiter        *middleware.RateLimiter
	Health         HealthCheck
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP API. Middleware order: request id, access log,
// metrics, then auth and the per-actor rate limit on the business routes.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	if d.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.RequestTimeout))
	}

	r.Get("/health", healthHandler(d.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1/businesses/{businessID}", func(r chi.Router) {
		r.Use(middleware.Authenticate(d.Tokens))
		if d.Limiter != nil {
			r.Use(d.Limiter.Middleware)
		}
		r.Use(middleware.RequireBusiness("businessID"))
		r.Route("/orders", d.Orders.Routes)
		if d.Products != nil {
			r.Route("/products", d.Products.Routes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, Response{Error: &ErrorResponse{
			Code:      "NOT_FOUND",
			Message:   "route not found",
			RequestID: logger.RequestIDFrom(r.Context()),
		}})
	})

	return r
}

func healthHandler(check HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				logger.FromCtx(r.Context()).Error("health check failed", zap.Error(err))
				WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
				return
			}
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "up"})
	}
}
