package middleware

import (
	"net/http"

	"orderdesk-be/internal/auth"
	"orderdesk-be/internal/logger"
	"orderdesk-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Authenticate rejects requests without a valid staff token and stores the
// actor in the request context.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := tokens.Parse(auth.ExtractAccessToken(r))
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected token", zap.Error(err))
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid access token")
				return
			}

			ctx := utils.SetActorContext(r.Context(), claims.ActorID, claims.BusinessID, claims.Role)
			ctx = logger.WithActorID(ctx, claims.ActorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireBusiness allows the request only when the actor may operate on the
// business named by the route parameter.
func RequireBusiness(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			businessID := chi.URLParam(r, param)
			if !utils.CanActOnBusiness(r.Context(), businessID) {
				logger.FromCtx(r.Context()).Warn("business access denied",
					zap.String("business_id", businessID),
				)
				writeError(w, r, http.StatusForbidden, "FORBIDDEN", "not allowed to act on this business")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
