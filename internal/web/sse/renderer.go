package sse

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/a-h/templ"

	"github.com/mcoot/courgette-crush/internal/api/response"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/web/view"
)

// Renderer turns session state and events into SSE messages
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// WrapForOOBSwap wraps HTML in a div with hx-swap-oob for out-of-band swaps
func WrapForOOBSwap(id, html string) string {
	return `<div id="` + id + `" hx-swap-oob="true">` + html + `</div>`
}

// RenderEvent encodes a session event as a named JSON SSE message.
// ok is false for events with no stream form.
func (r *Renderer) RenderEvent(event model.Event) (msg []byte, ok bool, err error) {
	data, ok := response.EventData(event)
	if !ok {
		return nil, false, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, false, err
	}
	return formatSSEMessage(string(event.Type), string(b)), true, nil
}

// RenderSnapshot encodes the full session as a "game" JSON message, the
// first thing API stream clients see
func (r *Renderer) RenderSnapshot(game *model.Game) ([]byte, error) {
	b, err := json.Marshal(response.GameFromModel(game))
	if err != nil {
		return nil, err
	}
	return formatSSEMessage("game", string(b)), nil
}

// RenderBoard renders the board and status fragments the game page swaps in
func (r *Renderer) RenderBoard(ctx context.Context, game *model.Game) ([][]byte, error) {
	board, err := renderString(ctx, view.Board(game.Board))
	if err != nil {
		return nil, err
	}
	status, err := renderString(ctx, view.Status(game))
	if err != nil {
		return nil, err
	}
	return [][]byte{
		formatSSEMessage("board", WrapForOOBSwap("board-container", board)),
		formatSSEMessage("status", WrapForOOBSwap("status-container", status)),
	}, nil
}

func renderString(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
