package bot

import (
	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
)

// RandomStrategy picks uniformly among the swaps that would fire
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// ChooseMove returns a random firing swap
func (s *RandomStrategy) ChooseMove(game *model.Game) (Move, bool) {
	moves := Candidates(game.Board)
	if len(moves) == 0 {
		return Move{}, false
	}
	return moves[s.random.Intn(len(moves))], true
}
