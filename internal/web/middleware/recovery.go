package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/courgette-crush/internal/middleware"
	"github.com/mcoot/courgette-crush/internal/web/view"
)

// Recovery renders the site error page when a handler panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, webPanicHandler)
}

func webPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	// The player is unknown here: auth middleware sits inside recovery
	page := view.ErrorPage(view.PageData{}, http.StatusInternalServerError, "Something went wrong. Please try again later.")
	_ = page.Render(r.Context(), w)
}
