// Package storagetest holds the behaviour every storage backend must share
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/storage"
)

// Suite runs the common storage contract against a backend built by NewStorage
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

var baseTime = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

// Player tests

func (s *Suite) TestSaveAndGetPlayer() {
	player := &model.Player{
		ID:          "player-1",
		DisplayName: "Alice",
		IsGuest:     true,
		CreatedAt:   baseTime,
	}
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, player))

	retrieved, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(player.ID, retrieved.ID)
	s.Equal("Alice", retrieved.DisplayName)
	s.True(retrieved.IsGuest)
	s.True(baseTime.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetPlayerNotFound() {
	_, err := s.Storage.GetPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *Suite) TestDeletePlayer() {
	s.Require().NoError(s.Storage.SavePlayer(s.Ctx, &model.Player{ID: "player-1", DisplayName: "Alice"}))
	s.Require().NoError(s.Storage.DeletePlayer(s.Ctx, "player-1"))

	_, err := s.Storage.GetPlayer(s.Ctx, "player-1")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Registered player tests

func (s *Suite) TestSaveAndGetRegisteredPlayer() {
	rp := &model.RegisteredPlayer{
		PlayerID:     "player-1",
		Username:     "alice",
		PasswordHash: "hash123",
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	s.Require().NoError(s.Storage.SaveRegisteredPlayer(s.Ctx, rp))

	byID, err := s.Storage.GetRegisteredPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)
	s.Equal("hash123", byID.PasswordHash)

	byName, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.PlayerID("player-1"), byName.PlayerID)
}

func (s *Suite) TestGetRegisteredPlayerByUsernameNotFound() {
	_, err := s.Storage.GetRegisteredPlayerByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)

	_, err = s.Storage.GetRegisteredPlayer(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Game tests

func (s *Suite) TestSaveAndGetGame() {
	game := newGame("game-1", "player-1")
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	retrieved, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(game.PlayerID, retrieved.PlayerID)
	s.Equal(model.GameStatusActive, retrieved.Status)
	s.Equal(model.SessionIdle, retrieved.State)
	s.Equal(game.Seed, retrieved.Seed)
	s.Equal(120, retrieved.Score)
	s.Equal(27, retrieved.MovesRemaining)
	s.Equal(3, retrieved.MovesUsed)
	s.True(game.Board.Equal(retrieved.Board))
	s.True(baseTime.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestSavedGameIsNotAliased() {
	game := newGame("game-1", "player-1")
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	game.Board.Set(model.Position{Row: 0, Col: 0}, model.Rainbow())
	game.Score = 9999

	retrieved, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(120, retrieved.Score)
	s.Equal(model.Normal(0), retrieved.Board.Get(model.Position{Row: 0, Col: 0}))
}

func (s *Suite) TestSaveGameOverwrites() {
	game := newGame("game-1", "player-1")
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	game.State = model.SessionResolving
	game.Score = 300
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, game))

	retrieved, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.SessionResolving, retrieved.State)
	s.Equal(300, retrieved.Score)
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestDeleteGame() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGame("game-1", "player-1")))
	s.Require().NoError(s.Storage.DeleteGame(s.Ctx, "game-1"))

	_, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.ErrorIs(err, model.ErrGameNotFound)

	games, err := s.Storage.GetGamesForPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestDeleteMissingGameIsNoop() {
	s.NoError(s.Storage.DeleteGame(s.Ctx, "nonexistent"))
}

func (s *Suite) TestGetGamesForPlayer() {
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGame("game-1", "player-1")))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGame("game-2", "player-1")))
	s.Require().NoError(s.Storage.SaveGame(s.Ctx, newGame("game-3", "player-2")))

	games, err := s.Storage.GetGamesForPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)

	ids := make([]model.GameID, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	s.ElementsMatch([]model.GameID{"game-1", "game-2"}, ids)
}

func (s *Suite) TestGetGamesForPlayerEmpty() {
	games, err := s.Storage.GetGamesForPlayer(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.NotNil(games)
	s.Empty(games)
}

// High score tests

func (s *Suite) TestSaveAndGetHighScore() {
	hs := &model.HighScore{
		PlayerID:    "player-1",
		DisplayName: "Alice",
		Score:       480,
		GameID:      "game-1",
		AchievedAt:  baseTime,
	}
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, hs))

	retrieved, err := s.Storage.GetHighScore(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(480, retrieved.Score)
	s.Equal("Alice", retrieved.DisplayName)
	s.Equal(model.GameID("game-1"), retrieved.GameID)
	s.True(baseTime.Equal(retrieved.AchievedAt))
}

func (s *Suite) TestGetHighScoreNotFound() {
	_, err := s.Storage.GetHighScore(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrHighScoreNotFound)
}

func (s *Suite) TestSaveHighScoreOverwrites() {
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("player-1", 480, 0)))
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("player-1", 200, 1)))

	retrieved, err := s.Storage.GetHighScore(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(200, retrieved.Score)

	top, err := s.Storage.TopHighScores(s.Ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(200, top[0].Score)
}

func (s *Suite) TestTopHighScoresOrdering() {
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("p-low", 100, 0)))
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("p-late", 500, 2)))
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("p-early", 500, 1)))
	s.Require().NoError(s.Storage.SaveHighScore(s.Ctx, highScore("p-mid", 300, 0)))

	top, err := s.Storage.TopHighScores(s.Ctx, 0)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-early", "p-late", "p-mid", "p-low"}, playerIDs(top))

	top, err = s.Storage.TopHighScores(s.Ctx, 3)
	s.Require().NoError(err)
	s.Equal([]model.PlayerID{"p-early", "p-late", "p-mid"}, playerIDs(top))
}

func (s *Suite) TestTopHighScoresEmpty() {
	top, err := s.Storage.TopHighScores(s.Ctx, 10)
	s.Require().NoError(err)
	s.Empty(top)
}

func newGame(id model.GameID, playerID model.PlayerID) *model.Game {
	return &model.Game{
		ID:       id,
		PlayerID: playerID,
		Status:   model.GameStatusActive,
		State:    model.SessionIdle,
		Board: model.MustBoardFromCodes([][]int{
			{0, 1, 2},
			{3, 15, 4},
			{21, 7, 12},
		}),
		Seed:           0xdeadbeefcafe1234,
		Score:          120,
		MovesRemaining: 27,
		MovesUsed:      3,
		CreatedAt:      baseTime,
		UpdatedAt:      baseTime,
	}
}

func highScore(playerID model.PlayerID, score int, minutes int) *model.HighScore {
	return &model.HighScore{
		PlayerID:    playerID,
		DisplayName: string(playerID),
		Score:       score,
		GameID:      model.GameID("game-" + string(playerID)),
		AchievedAt:  baseTime.Add(time.Duration(minutes) * time.Minute),
	}
}

func playerIDs(scores []*model.HighScore) []model.PlayerID {
	ids := make([]model.PlayerID, len(scores))
	for i, hs := range scores {
		ids[i] = hs.PlayerID
	}
	return ids
}
