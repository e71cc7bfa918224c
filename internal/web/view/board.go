// Package view holds the server-rendered HTML components
package view

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Board renders the grid as a table, one cell per tile carrying its code
func Board(board *model.Board) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.printf(`<table id="board" class="board" data-rows="%d" data-cols="%d"><tbody>`, board.Rows, board.Cols)
		for row := 0; row < board.Rows; row++ {
			b.print(`<tr>`)
			for col := 0; col < board.Cols; col++ {
				tile := board.Get(model.Position{Row: row, Col: col})
				b.printf(`<td class="%s" data-row="%d" data-col="%d" data-code="%d" title="%s"></td>`,
					templ.EscapeString(tileClass(tile)), row, col, tile.Code(), templ.EscapeString(tile.String()))
			}
			b.print(`</tr>`)
		}
		b.print(`</tbody></table>`)
		return b.err
	})
}

// Status renders score, moves and session status
func Status(game *model.Game) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.printf(`<div id="status" class="status" data-status="%s">`, templ.EscapeString(string(game.Status)))
		b.printf(`<span class="score">%d</span>`, game.Score)
		b.printf(`<span class="moves">%d</span>`, game.MovesRemaining)
		if game.IsFinished() {
			b.print(`<span class="finished">Game over</span>`)
		}
		b.print(`</div>`)
		return b.err
	})
}

func tileClass(t model.Tile) string {
	class := "tile tile-" + t.Kind.String()
	if color, ok := t.MatchColor(); ok {
		class += " color-" + strconv.Itoa(color)
	}
	if t.Kind == model.TileStriped {
		class += " striped-" + t.Orientation.String()
	}
	return class
}

// writer remembers the first write error so components can render
// without checking every call
type writer struct {
	w   io.Writer
	err error
}

func (b *writer) print(s string) {
	if b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

func (b *writer) printf(format string, args ...any) {
	if b.err != nil {
		return
	}
	_, b.err = fmt.Fprintf(b.w, format, args...)
}
