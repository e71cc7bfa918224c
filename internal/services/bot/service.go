package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/cascade"
	"github.com/mcoot/courgette-crush/internal/services/game"
)

// Strategy names
const (
	StrategyRandom = "random"
	StrategyGreedy = "greedy"

	DefaultStrategy = StrategyGreedy
)

var (
	ErrUnknownStrategy = errors.New("unknown bot strategy")
	ErrNoMoveAvailable = errors.New("no swap on the board would fire")
)

// DefaultStrategies returns the built-in strategies keyed by name
func DefaultStrategies(rnd random.Random, cfg cascade.Config, logger *slog.Logger) map[string]Strategy {
	return map[string]Strategy{
		StrategyRandom: NewRandomStrategy(rnd),
		StrategyGreedy: NewGreedyStrategy(cfg, logger),
	}
}

// Service suggests swaps and plays sessions on a player's behalf
type Service struct {
	gameController *game.Controller
	strategies     map[string]Strategy
	logger         *slog.Logger
}

// NewService creates a new bot Service
func NewService(gameController *game.Controller, strategies map[string]Strategy, logger *slog.Logger) *Service {
	return &Service{
		gameController: gameController,
		strategies:     strategies,
		logger:         logger.With(slog.String("component", "bot-service")),
	}
}

// Strategies returns the registered strategy names, sorted
func (s *Service) Strategies() []string {
	names := make([]string, 0, len(s.strategies))
	for name := range s.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Suggest returns the swap a strategy would play next. An empty strategy
// name selects DefaultStrategy.
func (s *Service) Suggest(ctx context.Context, gameID model.GameID, playerID model.PlayerID, strategy string) (Move, error) {
	st, err := s.strategy(strategy)
	if err != nil {
		return Move{}, err
	}

	g, err := s.playableGame(ctx, gameID, playerID)
	if err != nil {
		return Move{}, err
	}

	move, ok := st.ChooseMove(g)
	if !ok {
		return Move{}, ErrNoMoveAvailable
	}
	return move, nil
}

// AutoPlay plays up to maxMoves swaps, stopping early when the session
// finishes. maxMoves <= 0 plays until the move budget runs out. The results
// carry the events each swap produced, for the caller to publish.
func (s *Service) AutoPlay(ctx context.Context, gameID model.GameID, playerID model.PlayerID, strategy string, maxMoves int) ([]*game.SwapResult, error) {
	if strategy == "" {
		strategy = DefaultStrategy
	}
	st, err := s.strategy(strategy)
	if err != nil {
		return nil, err
	}

	var results []*game.SwapResult
	for maxMoves <= 0 || len(results) < maxMoves {
		g, err := s.playableGame(ctx, gameID, playerID)
		if err != nil {
			if errors.Is(err, model.ErrGameFinished) && len(results) > 0 {
				break
			}
			return results, err
		}

		move, ok := st.ChooseMove(g)
		if !ok {
			return results, ErrNoMoveAvailable
		}

		result, err := s.gameController.Swap(ctx, gameID, playerID, move.From, move.To)
		if err != nil {
			return results, fmt.Errorf("playing %s: %w", move, err)
		}
		results = append(results, result)

		s.logger.Debug("bot played swap",
			slog.String("game_id", string(gameID)),
			slog.String("move", move.String()),
			slog.Int("score_delta", result.Outcome.ScoreDelta))

		if result.Game.IsFinished() {
			break
		}
	}

	s.logger.Info("bot auto-play finished",
		slog.String("game_id", string(gameID)),
		slog.String("strategy", strategy),
		slog.Int("moves", len(results)))
	return results, nil
}

func (s *Service) strategy(name string) (Strategy, error) {
	if name == "" {
		name = DefaultStrategy
	}
	st, ok := s.strategies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
	return st, nil
}

func (s *Service) playableGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	g, err := s.gameController.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	if g.IsFinished() {
		return nil, model.ErrGameFinished
	}
	return g, nil
}
