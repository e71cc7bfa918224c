package storage

import (
	"context"
	"slices"
	"strings"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Player operations
	SavePlayer(ctx context.Context, player *model.Player) error
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	DeletePlayer(ctx context.Context, id model.PlayerID) error

	// Registered player operations
	SaveRegisteredPlayer(ctx context.Context, rp *model.RegisteredPlayer) error
	GetRegisteredPlayer(ctx context.Context, playerID model.PlayerID) (*model.RegisteredPlayer, error)
	GetRegisteredPlayerByUsername(ctx context.Context, username string) (*model.RegisteredPlayer, error)

	// Game operations
	SaveGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	GetGamesForPlayer(ctx context.Context, playerID model.PlayerID) ([]*model.Game, error)

	// High score operations. SaveHighScore overwrites unconditionally;
	// callers decide whether a score beats the stored one.
	SaveHighScore(ctx context.Context, hs *model.HighScore) error
	GetHighScore(ctx context.Context, playerID model.PlayerID) (*model.HighScore, error)
	TopHighScores(ctx context.Context, limit int) ([]*model.HighScore, error)
}

// SortHighScores orders scores best first, earliest achiever winning ties
func SortHighScores(scores []*model.HighScore) {
	slices.SortStableFunc(scores, func(a, b *model.HighScore) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		if c := a.AchievedAt.Compare(b.AchievedAt); c != 0 {
			return c
		}
		return strings.Compare(string(a.PlayerID), string(b.PlayerID))
	})
}
