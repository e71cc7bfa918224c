package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/courgette-crush/internal/api/apierr"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/auth"
)

type contextKey string

const (
	playerContextKey  contextKey = "player"
	sessionContextKey contextKey = "session"
)

// SessionExpiresHeader tells clients when their token stops working
const SessionExpiresHeader = "X-Session-Expires"

// Auth rejects requests without a valid session token and puts the session
// and its player in the request context
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, err := authService.ValidateSession(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			w.Header().Set(SessionExpiresHeader, session.ExpiresAt.UTC().Format(time.RFC3339))

			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			ctx = context.WithValue(ctx, playerContextKey, &session.Player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the bearer token. Browsers cannot set headers on an
// EventSource, so event streams may pass it as ?access_token instead. The
// web session cookie is accepted last.
func extractToken(r *http.Request) string {
	if bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return bearer
	}

	if isStreamRequest(r) {
		if token := r.URL.Query().Get("access_token"); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}

func isStreamRequest(r *http.Request) bool {
	return r.Method == http.MethodGet &&
		(strings.HasSuffix(r.URL.Path, "/events") || strings.Contains(r.Header.Get("Accept"), "text/event-stream"))
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *auth.Session {
	session, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return session
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
