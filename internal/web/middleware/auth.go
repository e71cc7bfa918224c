package middleware

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/auth"
)

type contextKey string

const (
	playerContextKey  contextKey = "player"
	sessionCookieName            = "session"
)

// GetPlayer returns the signed-in player, or nil for anonymous visitors
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// Auth requires a signed-in player. Anyone else is sent home with the page
// they wanted as ?next, so signing in brings them back to it.
func Auth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := playerFromCookie(w, r, authService)
			if player == nil {
				target := r.URL.Path
				if r.Method != http.MethodGet {
					// Form posts cannot be replayed; return to the page they came from
					target = refererPath(r)
				}
				http.Redirect(w, r, "/?"+url.Values{"next": {target}}.Encode(), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth sets the player when the visitor is signed in. Game pages and
// streams are public, so spectators get through with a nil player.
func OptionalAuth(authService *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			player := playerFromCookie(w, r, authService)
			ctx := context.WithValue(r.Context(), playerContextKey, player)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// playerFromCookie validates the session cookie, clearing it when the token
// has expired or been revoked
func playerFromCookie(w http.ResponseWriter, r *http.Request, authService *auth.Service) *model.Player {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	player, err := authService.GetPlayer(r.Context(), cookie.Value)
	if err != nil {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return nil
	}
	return player
}

func refererPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Path == "" || (ref.Host != "" && ref.Host != r.Host) {
		return "/"
	}
	return ref.Path
}
