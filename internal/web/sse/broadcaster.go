package sse

import (
	"context"
	"log/slog"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Broadcaster pushes session events to everyone watching a game
type Broadcaster struct {
	hubManager *HubManager
	renderer   *Renderer
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		renderer:   NewRenderer(),
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Publish sends each event as JSON, then the refreshed board fragments.
// Games nobody is watching are skipped.
func (b *Broadcaster) Publish(ctx context.Context, game *model.Game, events ...model.Event) {
	hub := b.hubManager.GetHub(game.ID)
	if hub == nil {
		return
	}

	for _, event := range events {
		msg, ok, err := b.renderer.RenderEvent(event)
		if err != nil {
			b.logger.Error("sse failed to encode event",
				slog.String("game_id", string(game.ID)),
				slog.String("event", string(event.Type)),
				slog.Any("error", err))
			continue
		}
		if ok {
			hub.Broadcast(msg)
		}
	}

	fragments, err := b.renderer.RenderBoard(ctx, game)
	if err != nil {
		b.logger.Error("sse failed to render board",
			slog.String("game_id", string(game.ID)),
			slog.Any("error", err))
		return
	}
	for _, msg := range fragments {
		hub.Broadcast(msg)
	}
}
