package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/playerledger/internal/api/apierr"
	"github.com/mcoot/playerledger/internal/model"
)

type contextKey string

const playerIDContextKey contextKey = "player_id"

// Authenticator resolves an access token to the player it was issued for
type Authenticator interface {
	Authenticate(token string) (model.PlayerID, error)
}

// Auth creates authentication middleware. Requests without a valid bearer
// token are rejected before reaching the handler.
func Auth(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			playerID, err := authenticator.Authenticate(extractToken(r))
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), playerIDContextKey, playerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return token
	}
	return ""
}

// GetPlayerID returns the authenticated player id from the request context
func GetPlayerID(ctx context.Context) (model.PlayerID, bool) {
	id, ok := ctx.Value(playerIDContextKey).(model.PlayerID)
	return id, ok
}

// MustGetPlayerID returns the authenticated player id or panics
func MustGetPlayerID(ctx context.Context) model.PlayerID {
	id, ok := GetPlayerID(ctx)
	if !ok {
		panic("no player in context - auth middleware not applied?")
	}
	return id
}
