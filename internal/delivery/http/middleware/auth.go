package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	h "gamecalendar/internal/delivery/http/helpers"
	"gamecalendar/internal/domain"
)

type contextKey string

const playerIDKey contextKey = "playerID"

// SetPlayerID returns a context carrying the authenticated player.
func SetPlayerID(ctx context.Context, id domain.PlayerID) context.Context {
	return context.WithValue(ctx, playerIDKey, id)
}

// PlayerIDFromContext returns the authenticated player from the context, if present.
func PlayerIDFromContext(ctx context.Context) (domain.PlayerID, bool) {
	id, ok := ctx.Value(playerIDKey).(domain.PlayerID)
	return id, ok && id != 0
}

// RequireAuth returns a wrapper that validates the Bearer token and sets the player ID in the request context.
// If the token is missing or invalid, it responds with 401 and does not call next.
func RequireAuth(verifier domain.TokenVerifier, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authorization header")
				return
			}
			token, found := strings.CutPrefix(auth, "Bearer ")
			if !found {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid authorization format")
				return
			}
			token = strings.TrimSpace(token)
			if token == "" {
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing token")
				return
			}
			playerID, err := verifier.Verify(token)
			if err != nil {
				logger.DebugContext(r.Context(), "token rejected", "err", err)
				h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "invalid or expired token")
				return
			}
			next(w, r.WithContext(SetPlayerID(r.Context(), playerID)))
		}
	}
}
