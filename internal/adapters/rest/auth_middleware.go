package rest

import (
	"listing-service/internal/contextkeys"
	"listing-service/internal/core/port"
	"listing-service/internal/core/port/usecases_port"
	"net/http"
	"strings"
)

// NewAdminAuthMiddleware пропускает только запросы с Bearer-токеном администратора.
func NewAdminAuthMiddleware(authorize usecases_port.AuthorizeAdminUseCasePort) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"middleware": "AdminAuth"})

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || strings.TrimSpace(token) == "" {
				WriteJSONError(w, http.StatusUnauthorized, "Authentication error: bearer token is missing")
				return
			}

			profile, err := authorize.Execute(r.Context(), strings.TrimSpace(token))
			if err != nil {
				writeDomainError(w, logger, err, "Failed to authorize request")
				return
			}

			ctx := contextkeys.ContextWithProfileID(r.Context(), profile.ID.String())
			ctx = contextkeys.ContextWithLogger(ctx, contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
				"profile_id": profile.ID.String(),
			}))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
