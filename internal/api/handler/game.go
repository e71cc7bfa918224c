package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/courgette-crush/internal/api/middleware"
	"github.com/mcoot/courgette-crush/internal/api/request"
	"github.com/mcoot/courgette-crush/internal/api/response"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/web/sse"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

// GameHandler handles game-related endpoints
type GameHandler struct {
	gameController *game.Controller
	hubManager     *sse.HubManager
	broadcaster    *sse.Broadcaster
	renderer       *sse.Renderer
	logger         *slog.Logger
}

// NewGameHandler creates a new game handler. Without a hub manager the
// events endpoint is unavailable and nothing is broadcast.
func NewGameHandler(gameController *game.Controller, hubManager *sse.HubManager, logger *slog.Logger) *GameHandler {
	var broadcaster *sse.Broadcaster
	if hubManager != nil {
		broadcaster = sse.NewBroadcaster(hubManager, logger)
	}
	return &GameHandler{
		gameController: gameController,
		hubManager:     hubManager,
		broadcaster:    broadcaster,
		renderer:       sse.NewRenderer(),
		logger:         logger,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.CreateGameRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	g, err := h.gameController.CreateGame(r.Context(), player.ID, game.CreateOptions{
		Seed:  req.Seed,
		Moves: req.Moves,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	games, err := h.gameController.GetGamesForPlayer(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameListFromModel(games))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Swap handles POST /api/v1/games/{id}/swap
func (h *GameHandler) Swap(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.SwapRequest
	if err := decodeBody(r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	from, to := req.Positions()
	result, err := h.gameController.Swap(r.Context(), gameID(r), player.ID, from, to)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.publish(r, result)
	response.JSON(w, http.StatusOK, response.SwapResponseFromResult(result))
}

// End handles DELETE /api/v1/games/{id}
func (h *GameHandler) End(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	result, err := h.gameController.EndGame(r.Context(), gameID(r), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	h.publish(r, result)
	response.JSON(w, http.StatusOK, response.EndGameResponse{
		Game:         response.GameFromModel(result.Game),
		NewHighScore: result.NewHighScore,
	})
}

// Events handles GET /api/v1/games/{id}/events. The stream opens with a
// "game" snapshot, then carries swap, shuffled and finished events.
func (h *GameHandler) Events(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())
	if h.hubManager == nil {
		WriteError(w, errors.New("event streaming is not enabled"))
		return
	}

	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	snapshot, err := h.renderer.RenderSnapshot(g)
	if err != nil {
		WriteError(w, err)
		return
	}

	hub := h.hubManager.GetOrCreateHub(g.ID)
	sse.ServeSSE(w, r, hub, player.ID, snapshot)
}

// Leaderboard handles GET /api/v1/leaderboard?limit=N
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLeaderboardSize {
			WriteError(w, NewInvalidRequestError("limit must be between 1 and 100"))
			return
		}
		limit = n
	}

	scores, err := h.gameController.Leaderboard(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromModel(scores))
}

// HighScore handles GET /api/v1/players/me/highscore
func (h *GameHandler) HighScore(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	hs, err := h.gameController.GetHighScore(r.Context(), player.ID)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HighScoreFromModel(hs))
}

func (h *GameHandler) publish(r *http.Request, result *game.SwapResult) {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Publish(r.Context(), result.Game, result.Events...)
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}
