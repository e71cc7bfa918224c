package handler

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/web/middleware"
	"github.com/mcoot/courgette-crush/internal/web/view"
)

// HomeHandler handles the home page
type HomeHandler struct {
	gameController *game.Controller
	logger         *slog.Logger
}

// NewHomeHandler creates a new HomeHandler
func NewHomeHandler(gameController *game.Controller, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{
		gameController: gameController,
		logger:         logger,
	}
}

// Home renders the home page
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	data := pageData(r, "")
	next := r.URL.Query().Get("next")

	var games []*model.Game
	if data.Player != nil {
		var err error
		games, err = h.gameController.GetGamesForPlayer(r.Context(), data.Player.ID)
		if err != nil {
			h.logger.Error("failed to list games",
				slog.String("player_id", string(data.Player.ID)),
				slog.Any("error", err))
		}
	}

	render(w, r, http.StatusOK, view.HomePage(data, next, games))
}

// pageData collects the shell data every page needs from the request
func pageData(r *http.Request, title string) view.PageData {
	return view.PageData{
		Title:  title,
		Player: middleware.GetPlayer(r.Context()),
		Flash:  middleware.GetFlash(r.Context()),
	}
}

// render buffers the page so a failed render can still become a 500
func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	var buf bytes.Buffer
	if err := c.Render(r.Context(), &buf); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
