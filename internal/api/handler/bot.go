package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/courgette-crush/internal/api/middleware"
	"github.com/mcoot/courgette-crush/internal/api/request"
	"github.com/mcoot/courgette-crush/internal/api/response"
	"github.com/mcoot/courgette-crush/internal/services/bot"
	"github.com/mcoot/courgette-crush/internal/web/sse"
)

// BotHandler handles move suggestions and bot play
type BotHandler struct {
	botService  *bot.Service
	broadcaster *sse.Broadcaster
	logger      *slog.Logger
}

// NewBotHandler creates a new bot handler
func NewBotHandler(botService *bot.Service, hubManager *sse.HubManager, logger *slog.Logger) *BotHandler {
	var broadcaster *sse.Broadcaster
	if hubManager != nil {
		broadcaster = sse.NewBroadcaster(hubManager, logger)
	}
	return &BotHandler{
		botService:  botService,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Hint handles GET /api/v1/games/{id}/hint?strategy=name
func (h *BotHandler) Hint(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	strategy := r.URL.Query().Get("strategy")
	if strategy == "" {
		strategy = bot.DefaultStrategy
	}

	move, err := h.botService.Suggest(r.Context(), gameID(r), player.ID, strategy)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Hint{
		Strategy: strategy,
		From:     response.CellFromModel(move.From),
		To:       response.CellFromModel(move.To),
	})
}

// AutoPlay handles POST /api/v1/games/{id}/autoplay
func (h *BotHandler) AutoPlay(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.AutoPlayRequest
	if err := decodeBody(r, &req, true); err != nil {
		WriteError(w, err)
		return
	}

	results, err := h.botService.AutoPlay(r.Context(), gameID(r), player.ID, req.Strategy, req.Moves)
	for _, result := range results {
		if h.broadcaster != nil {
			h.broadcaster.Publish(r.Context(), result.Game, result.Events...)
		}
	}
	if err != nil && len(results) == 0 {
		WriteError(w, err)
		return
	}
	if err != nil {
		// Some swaps were played; report them and log why the run stopped
		h.logger.Warn("bot auto-play stopped early",
			slog.String("game_id", string(gameID(r))),
			slog.Int("moves", len(results)),
			slog.String("error", err.Error()))
	}

	response.JSON(w, http.StatusOK, response.AutoPlayResponseFromResults(results))
}
