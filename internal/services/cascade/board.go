package cascade

import (
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
)

// maxShuffleAttempts bounds the search for a board with a legal move
const maxShuffleAttempts = 100

// NewBoard generates a full board of normal tiles containing no runs.
// Each cell, in row-major order, takes a colour that does not complete a
// run with the two cells to its left or the two above, so generation never
// needs to retry.
func (e *Engine) NewBoard(rows, cols int) *model.Board {
	board := model.NewBoard(rows, cols)
	e.fill(board)
	return board
}

func (e *Engine) fill(board *model.Board) {
	for row := 0; row < board.Rows; row++ {
		for col := 0; col < board.Cols; col++ {
			banned := make(map[int]bool, 2)
			if col >= 2 && board.Cells[row][col-1].Color == board.Cells[row][col-2].Color {
				banned[board.Cells[row][col-1].Color] = true
			}
			if row >= 2 && board.Cells[row-1][col].Color == board.Cells[row-2][col].Color {
				banned[board.Cells[row-1][col].Color] = true
			}

			allowed := make([]int, 0, model.PaletteSize)
			for color := 0; color < model.PaletteSize; color++ {
				if !banned[color] {
					allowed = append(allowed, color)
				}
			}
			board.Cells[row][col] = model.Normal(allowed[e.random.Intn(len(allowed))])
		}
	}
}

// HasPossibleMove reports whether any adjacent swap on the board would
// resolve. Any special tile counts, since swapping it always fires.
func (e *Engine) HasPossibleMove(board *model.Board) bool {
	for _, p := range board.Positions() {
		if board.Get(p).IsSpecial() {
			return true
		}
	}

	probe := board.Clone()
	for _, p := range probe.Positions() {
		for _, q := range []model.Position{{Row: p.Row, Col: p.Col + 1}, {Row: p.Row + 1, Col: p.Col}} {
			if !probe.InBounds(q) {
				continue
			}
			probe.Swap(p, q)
			found := match.HasGroups(probe)
			probe.Swap(p, q)
			if found {
				return true
			}
		}
	}
	return false
}

// Shuffle regenerates every tile of a dead board in place, retrying until
// the new layout has a legal move. It returns false if no such layout was
// found, in which case the board still holds a valid run-free layout.
func (e *Engine) Shuffle(board *model.Board) bool {
	for attempt := 0; attempt < maxShuffleAttempts; attempt++ {
		e.fill(board)
		if e.HasPossibleMove(board) {
			return true
		}
	}
	return false
}
