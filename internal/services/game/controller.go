package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mcoot/courgette-crush/internal/dependencies/clock"
	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/cascade"
	"github.com/mcoot/courgette-crush/internal/storage"
)

const gameIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Config holds session defaults
type Config struct {
	Rows    int
	Cols    int
	Moves   int
	Cascade cascade.Config
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		Rows:    8,
		Cols:    8,
		Moves:   model.DefaultMoves,
		Cascade: cascade.DefaultConfig(),
	}
}

// CreateOptions overrides per-session defaults. Zero values mean "use config".
type CreateOptions struct {
	Seed  *uint64
	Moves int
}

// SwapResult is everything a caller needs after a swap resolves
type SwapResult struct {
	Game         *model.Game
	Outcome      model.Outcome
	Shuffled     bool // Board had no legal move left and was regenerated
	NewHighScore bool
	Events       []model.Event
}

// Controller manages session lifecycle: creation, swaps, move budget and
// high scores
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger

	mu   sync.Mutex
	busy map[model.GameID]bool
}

// NewController creates a new game Controller. rnd supplies game IDs and
// seeds; all in-game randomness derives from each session's seed.
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	defaults := DefaultConfig()
	if cfg.Rows < 3 {
		cfg.Rows = defaults.Rows
	}
	if cfg.Cols < 3 {
		cfg.Cols = defaults.Cols
	}
	if cfg.Moves <= 0 {
		cfg.Moves = defaults.Moves
	}
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  rnd,
		cfg:     cfg,
		logger:  logger,
		busy:    make(map[model.GameID]bool),
	}
}

// engine builds a cascade engine whose draws are fixed by the session seed
// and stream, so a stored session replays identically
func (c *Controller) engine(seed uint64, stream int) *cascade.Engine {
	return cascade.New(c.cfg.Cascade, random.NewSeeded(seed, uint64(stream)), c.logger)
}

// CreateGame starts a new session for a player on a fresh run-free board
func (c *Controller) CreateGame(ctx context.Context, playerID model.PlayerID, opts CreateOptions) (*model.Game, error) {
	if _, err := c.storage.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	seed := c.random.Uint64()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	moves := c.cfg.Moves
	if opts.Moves > 0 {
		moves = opts.Moves
	}

	eng := c.engine(seed, 0)
	board := eng.NewBoard(c.cfg.Rows, c.cfg.Cols)
	if !eng.HasPossibleMove(board) {
		eng.Shuffle(board)
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:             model.GameID(c.random.String(12, gameIDAlphabet)),
		PlayerID:       playerID,
		Status:         model.GameStatusActive,
		State:          model.SessionIdle,
		Board:          board,
		Seed:           seed,
		MovesRemaining: moves,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("player_id", string(playerID)),
		slog.Int("moves", moves),
		slog.Int("rows", c.cfg.Rows),
		slog.Int("cols", c.cfg.Cols),
	)

	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// GetGamesForPlayer lists a player's sessions
func (c *Controller) GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error) {
	return c.storage.GetGamesForPlayer(ctx, playerID)
}

// Swap resolves a player swap of a and b on their session. A swap that
// matches nothing comes back with Outcome.Reverted set and costs no move.
func (c *Controller) Swap(ctx context.Context, gameID model.GameID, playerID model.PlayerID, a, b model.Position) (*SwapResult, error) {
	if !c.acquire(gameID) {
		return nil, model.ErrSessionBusy
	}
	defer c.release(gameID)

	game, err := c.ownedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}

	if !game.Board.InBounds(a) || !game.Board.InBounds(b) || !model.IsAdjacent(a, b) {
		return nil, model.ErrInvalidCoordinates
	}

	if err := game.Begin(); err != nil {
		return nil, err
	}
	// Persist Resolving so other instances sharing storage reject the swap
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("swap resolution panicked",
				slog.String("game_id", string(gameID)),
				slog.Any("panic", r),
			)
			c.unstick(context.WithoutCancel(ctx), gameID)
			panic(r)
		}
	}()

	eng := c.engine(game.Seed, game.MovesUsed+1)
	outcome, err := eng.ResolveSwap(game.Board, a, b)
	if err != nil {
		c.unstick(context.WithoutCancel(ctx), gameID)
		return nil, err
	}

	now := c.clock.Now()
	game.ApplyOutcome(outcome, now)

	result := &SwapResult{Outcome: outcome}
	if !outcome.Reverted && !game.IsFinished() && !eng.HasPossibleMove(game.Board) {
		if !eng.Shuffle(game.Board) {
			c.logger.Warn("shuffle found no playable layout",
				slog.String("game_id", string(gameID)),
			)
		}
		result.Shuffled = true
	}

	game.End()
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		c.unstick(context.WithoutCancel(ctx), gameID)
		return nil, err
	}

	result.Events = append(result.Events, model.Event{
		Type:      model.EventSwapResolved,
		Timestamp: now,
		GameID:    gameID,
		PlayerID:  playerID,
		Payload: model.SwapResolvedPayload{
			From:           a,
			To:             b,
			Outcome:        outcome,
			Score:          game.Score,
			MovesRemaining: game.MovesRemaining,
		},
	})
	if result.Shuffled {
		result.Events = append(result.Events, model.Event{
			Type:      model.EventBoardShuffled,
			Timestamp: now,
			GameID:    gameID,
			PlayerID:  playerID,
			Payload:   game.Board.Clone(),
		})
	}

	if game.IsFinished() {
		result.NewHighScore, err = c.finish(ctx, game)
		if err != nil {
			return nil, err
		}
		result.Events = append(result.Events, finishedEvent(game, result.NewHighScore))
	}

	c.logger.Info("swap resolved",
		slog.String("game_id", string(gameID)),
		slog.String("from", a.String()),
		slog.String("to", b.String()),
		slog.Bool("reverted", outcome.Reverted),
		slog.Int("score_delta", outcome.ScoreDelta),
		slog.Int("iterations", outcome.Iterations),
		slog.Int("moves_remaining", game.MovesRemaining),
	)

	result.Game = game
	return result, nil
}

// EndGame finishes a session early, recording its score
func (c *Controller) EndGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*SwapResult, error) {
	if !c.acquire(gameID) {
		return nil, model.ErrSessionBusy
	}
	defer c.release(gameID)

	game, err := c.ownedGame(ctx, gameID, playerID)
	if err != nil {
		return nil, err
	}
	if game.IsFinished() {
		return nil, model.ErrGameFinished
	}
	if game.State == model.SessionResolving {
		return nil, model.ErrSessionBusy
	}

	game.Finish(c.clock.Now())
	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	newHigh, err := c.finish(ctx, game)
	if err != nil {
		return nil, err
	}

	c.logger.Info("game ended early",
		slog.String("game_id", string(gameID)),
		slog.Int("score", game.Score),
		slog.Int("moves_used", game.MovesUsed),
	)

	return &SwapResult{
		Game:         game,
		NewHighScore: newHigh,
		Events:       []model.Event{finishedEvent(game, newHigh)},
	}, nil
}

// GetHighScore returns a player's best finished score
func (c *Controller) GetHighScore(ctx context.Context, playerID model.PlayerID) (*model.HighScore, error) {
	return c.storage.GetHighScore(ctx, playerID)
}

// Leaderboard returns the best scores across players, best first
func (c *Controller) Leaderboard(ctx context.Context, limit int) ([]*model.HighScore, error) {
	return c.storage.TopHighScores(ctx, limit)
}

// finish compares a finished session's score with the player's stored
// best and replaces it when beaten. Zero scores are never recorded.
func (c *Controller) finish(ctx context.Context, game *model.Game) (bool, error) {
	if game.Score <= 0 {
		return false, nil
	}

	existing, err := c.storage.GetHighScore(ctx, game.PlayerID)
	if err != nil && !errors.Is(err, model.ErrHighScoreNotFound) {
		return false, err
	}
	if existing != nil && existing.Score >= game.Score {
		return false, nil
	}

	displayName := string(game.PlayerID)
	if player, err := c.storage.GetPlayer(ctx, game.PlayerID); err == nil {
		displayName = player.DisplayName
	}

	hs := &model.HighScore{
		PlayerID:    game.PlayerID,
		DisplayName: displayName,
		Score:       game.Score,
		GameID:      game.ID,
		AchievedAt:  game.FinishedAt,
	}
	if err := c.storage.SaveHighScore(ctx, hs); err != nil {
		return false, err
	}

	c.logger.Info("new high score",
		slog.String("player_id", string(game.PlayerID)),
		slog.String("game_id", string(game.ID)),
		slog.Int("score", game.Score),
	)
	return true, nil
}

func (c *Controller) ownedGame(ctx context.Context, gameID model.GameID, playerID model.PlayerID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.PlayerID != playerID {
		return nil, model.ErrNotGameOwner
	}
	return game, nil
}

// unstick returns a stored session to Idle after a failed resolution
func (c *Controller) unstick(ctx context.Context, gameID model.GameID) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return
	}
	game.End()
	if err := c.storage.SaveGame(ctx, game); err != nil {
		c.logger.Error("failed to reset session state",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) acquire(gameID model.GameID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy[gameID] {
		return false
	}
	c.busy[gameID] = true
	return true
}

func (c *Controller) release(gameID model.GameID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.busy, gameID)
}

func finishedEvent(game *model.Game, newHigh bool) model.Event {
	return model.Event{
		Type:      model.EventGameFinished,
		Timestamp: game.FinishedAt,
		GameID:    game.ID,
		PlayerID:  game.PlayerID,
		Payload: model.GameFinishedPayload{
			FinalScore:   game.Score,
			MovesUsed:    game.MovesUsed,
			NewHighScore: newHigh,
		},
	}
}
