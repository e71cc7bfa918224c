package middleware

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mcoot/courgette-crush/internal/web/view"
)

const (
	flashCookieName = "flash"
	flashContextKey = contextKey("flash")
	flashMaxAge     = 60 // seconds
)

// GetFlash returns the flash message carried into this request, or nil
func GetFlash(ctx context.Context) *view.Flash {
	flash, _ := ctx.Value(flashContextKey).(*view.Flash)
	return flash
}

// SetFlash queues a message for the next page the browser loads. Messages
// often quote player input or error text, so the cookie holds base64 JSON.
func SetFlash(w http.ResponseWriter, kind view.FlashKind, message string) {
	value, err := encodeFlash(view.Flash{Kind: kind, Message: message})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   flashMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Flash moves a pending flash cookie into the request context and clears it
func Flash() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var flash *view.Flash
			if cookie, err := r.Cookie(flashCookieName); err == nil && cookie.Value != "" {
				flash = decodeFlash(cookie.Value)
				http.SetCookie(w, &http.Cookie{
					Name:     flashCookieName,
					Value:    "",
					Path:     "/",
					MaxAge:   -1,
					Expires:  time.Unix(0, 0),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), flashContextKey, flash)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func encodeFlash(f view.Flash) (string, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// decodeFlash drops cookies it cannot read rather than showing garbage
func decodeFlash(value string) *view.Flash {
	b, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var f view.Flash
	if err := json.Unmarshal(b, &f); err != nil || f.Message == "" {
		return nil
	}
	switch f.Kind {
	case view.FlashSuccess, view.FlashError, view.FlashInfo:
	default:
		f.Kind = view.FlashInfo
	}
	return &f
}
