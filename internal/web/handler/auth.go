package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/mcoot/courgette-crush/internal/services/auth"
	"github.com/mcoot/courgette-crush/internal/web/middleware"
	"github.com/mcoot/courgette-crush/internal/web/view"
)

const maxDisplayNameLength = 20

// AuthHandler handles sign-in and sign-out form actions
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// CreateGuest handles guest player creation
func (h *AuthHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, view.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	displayName := strings.TrimSpace(r.FormValue("display_name"))
	next := r.FormValue("next")

	if displayName == "" {
		middleware.SetFlash(w, view.FlashError, "Display name is required")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if runes := []rune(displayName); len(runes) > maxDisplayNameLength {
		displayName = string(runes[:maxDisplayNameLength])
	}

	session, err := h.authService.CreateGuestPlayer(r.Context(), displayName)
	if err != nil {
		middleware.SetFlash(w, view.FlashError, "Failed to create guest player")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setSessionCookie(w, session)
	middleware.SetFlash(w, view.FlashSuccess, "Welcome, "+session.Player.DisplayName+"!")
	redirectNext(w, r, next)
}

// Login handles login form submission
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, view.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	next := r.FormValue("next")

	if username == "" || password == "" {
		middleware.SetFlash(w, view.FlashError, "Username and password are required")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	session, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		middleware.SetFlash(w, view.FlashError, "Invalid username or password")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	setSessionCookie(w, session)
	middleware.SetFlash(w, view.FlashSuccess, "Welcome back, "+session.Player.DisplayName+"!")
	redirectNext(w, r, next)
}

// Logout revokes the session token and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("session"); err == nil {
		h.authService.InvalidateSession(cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	middleware.SetFlash(w, view.FlashInfo, "You have been logged out")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookie stores the token until the session itself expires
func setSessionCookie(w http.ResponseWriter, session *auth.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session",
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// redirectNext follows a local next path, falling back to home
func redirectNext(w http.ResponseWriter, r *http.Request, next string) {
	if next != "" && strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
