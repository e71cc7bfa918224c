package handler

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/courgette-crush/internal/api/apierr"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/web/middleware"
	"github.com/mcoot/courgette-crush/internal/web/sse"
	"github.com/mcoot/courgette-crush/internal/web/view"
)

const leaderboardSize = 20

// GameHandler handles game pages and actions
type GameHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	broadcaster    *sse.Broadcaster
	renderer       *sse.Renderer
	logger         *slog.Logger
}

// NewGameHandler creates a new GameHandler
func NewGameHandler(gameController *game.Controller, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
		broadcaster:    sse.NewBroadcaster(hubManager, logger),
		renderer:       sse.NewRenderer(),
		logger:         logger,
	}
}

// Create starts a game and redirects to its page
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())

	if err := r.ParseForm(); err != nil {
		middleware.SetFlash(w, view.FlashError, "Invalid form data")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var opts game.CreateOptions
	if raw := r.FormValue("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			middleware.SetFlash(w, view.FlashError, "Seed must be a whole number")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		opts.Seed = &seed
	}

	g, err := h.gameController.CreateGame(r.Context(), player.ID, opts)
	if err != nil {
		h.logger.Error("failed to create game",
			slog.String("player_id", string(player.ID)),
			slog.Any("error", err))
		middleware.SetFlash(w, view.FlashError, "Could not start a game")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, gamePath(g.ID), http.StatusSeeOther)
}

// View renders the game page. Anyone may watch; only the owner gets controls.
func (h *GameHandler) View(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, view.GamePage(pageData(r, ""), g))
}

// Swap handles the swap form. htmx requests get the new board and status as
// out-of-band fragments; plain form posts are redirected back to the page.
func (h *GameHandler) Swap(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	if err := r.ParseForm(); err != nil {
		h.actionError(w, r, id, "Invalid form data")
		return
	}

	var coords [4]int
	for i, name := range []string{"from_row", "from_col", "to_row", "to_col"} {
		n, err := strconv.Atoi(r.FormValue(name))
		if err != nil {
			h.actionError(w, r, id, "Pick two cells to swap")
			return
		}
		coords[i] = n
	}

	a := model.Position{Row: coords[0], Col: coords[1]}
	b := model.Position{Row: coords[2], Col: coords[3]}
	result, err := h.gameController.Swap(r.Context(), id, player.ID, a, b)
	if err != nil {
		h.actionError(w, r, id, "Could not swap: "+err.Error())
		return
	}

	h.broadcaster.Publish(r.Context(), result.Game, result.Events...)

	if !isHTMX(r) {
		if result.Outcome.Reverted {
			middleware.SetFlash(w, view.FlashInfo, "No match - tiles swapped back")
		}
		http.Redirect(w, r, gamePath(id), http.StatusSeeOther)
		return
	}
	h.writeFragments(w, r, result.Game)
}

// End finishes the game early
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	id := gameID(r)

	result, err := h.gameController.EndGame(r.Context(), id, player.ID)
	if err != nil {
		h.actionError(w, r, id, "Could not end game: "+err.Error())
		return
	}

	h.broadcaster.Publish(r.Context(), result.Game, result.Events...)

	if result.NewHighScore {
		middleware.SetFlash(w, view.FlashSuccess, "New high score: "+strconv.Itoa(result.Game.Score)+"!")
	} else {
		middleware.SetFlash(w, view.FlashInfo, "Game over. Final score: "+strconv.Itoa(result.Game.Score))
	}
	http.Redirect(w, r, gamePath(id), http.StatusSeeOther)
}

// Stream serves the page's SSE subscription, opening with the current
// board and status so a late watcher starts in sync
func (h *GameHandler) Stream(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		http.Error(w, http.StatusText(apierr.Status(err)), apierr.Status(err))
		return
	}

	initial, err := h.renderer.RenderBoard(r.Context(), g)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var watcher model.PlayerID
	if player := middleware.GetPlayer(r.Context()); player != nil {
		watcher = player.ID
	}

	sse.ServeSSE(w, r, h.hubManager.GetOrCreateHub(g.ID), watcher, initial...)
}

// Leaderboard renders the top scores
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	scores, err := h.gameController.Leaderboard(r.Context(), leaderboardSize)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	render(w, r, http.StatusOK, view.LeaderboardPage(pageData(r, ""), scores))
}

func (h *GameHandler) writeFragments(w http.ResponseWriter, r *http.Request, g *model.Game) {
	var board, status bytes.Buffer
	if err := view.Board(g.Board).Render(r.Context(), &board); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := view.Status(g).Render(r.Context(), &status); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(sse.WrapForOOBSwap("board-container", board.String())))
	_, _ = w.Write([]byte(sse.WrapForOOBSwap("status-container", status.String())))
}

// actionError reports a failed form action back on the game page
func (h *GameHandler) actionError(w http.ResponseWriter, r *http.Request, id model.GameID, message string) {
	middleware.SetFlash(w, view.FlashError, message)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", gamePath(id))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, gamePath(id), http.StatusSeeOther)
}

func (h *GameHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apierr.Status(err)
	message := "Something went wrong"
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		message = "Game not found"
	case status == http.StatusInternalServerError:
		h.logger.Error("web request failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
	default:
		message = err.Error()
	}
	render(w, r, status, view.ErrorPage(pageData(r, ""), status, message))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

func gamePath(id model.GameID) string {
	return "/games/" + string(id)
}
