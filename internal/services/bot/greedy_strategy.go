package bot

import (
	"log/slog"

	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/cascade"
)

// GreedyStrategy plays the swap that scores the most this turn. Each
// candidate is resolved on a copy of the board with the session's own
// seeded stream, so the prediction matches what the swap will really score.
type GreedyStrategy struct {
	cfg    cascade.Config
	logger *slog.Logger
}

// NewGreedyStrategy creates a GreedyStrategy. cfg must match the engine
// configuration the game controller uses.
func NewGreedyStrategy(cfg cascade.Config, logger *slog.Logger) *GreedyStrategy {
	return &GreedyStrategy{cfg: cfg, logger: logger}
}

// ChooseMove returns the highest scoring swap; ties go to the first found
func (s *GreedyStrategy) ChooseMove(game *model.Game) (Move, bool) {
	var best Move
	bestScore := -1

	for _, move := range Candidates(game.Board) {
		score := s.Predict(game, move)
		if score > bestScore {
			best, bestScore = move, score
		}
	}
	return best, bestScore >= 0
}

// Predict returns the score the swap would earn as the session's next
// accepted move, or -1 if it would be reverted
func (s *GreedyStrategy) Predict(game *model.Game, move Move) int {
	eng := cascade.New(s.cfg, random.NewSeeded(game.Seed, uint64(game.MovesUsed+1)), s.logger)
	outcome, err := eng.ResolveSwap(game.Board.Clone(), move.From, move.To)
	if err != nil || outcome.Reverted {
		return -1
	}
	return outcome.ScoreDelta
}
