package bot

import (
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
)

// Move is a swap of two adjacent cells
type Move struct {
	From model.Position
	To   model.Position
}

func (m Move) String() string {
	return m.From.String() + "->" + m.To.String()
}

// Strategy chooses the next swap for a session
type Strategy interface {
	// ChooseMove returns the swap to play, or false if no swap would fire
	ChooseMove(game *model.Game) (Move, bool)
}

// Candidates lists every swap on board that would not be reverted, in
// row-major order with the right neighbour before the one below
func Candidates(board *model.Board) []Move {
	var moves []Move
	probe := board.Clone()
	for _, p := range probe.Positions() {
		for _, q := range []model.Position{{Row: p.Row, Col: p.Col + 1}, {Row: p.Row + 1, Col: p.Col}} {
			if !probe.InBounds(q) {
				continue
			}
			// A special tile fires whatever it is swapped with
			if probe.Get(p).IsSpecial() || probe.Get(q).IsSpecial() {
				moves = append(moves, Move{From: p, To: q})
				continue
			}
			probe.Swap(p, q)
			if match.HasGroups(probe) {
				moves = append(moves, Move{From: p, To: q})
			}
			probe.Swap(p, q)
		}
	}
	return moves
}
