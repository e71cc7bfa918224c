package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courgette-crush/internal/dependencies/mocks"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
	"github.com/mcoot/courgette-crush/internal/storage/memory"
	"github.com/mcoot/courgette-crush/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

var startTime = time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

// goldenBoard has exactly one triple available via (3,3)-(3,4), a vertical
// run in column 4
var goldenBoard = [][]int{
	{0, 2, 4, 1, 3, 0, 2, 4},
	{1, 3, 0, 2, 4, 1, 3, 0},
	{2, 4, 1, 3, 4, 2, 4, 1},
	{3, 0, 2, 4, 1, 3, 0, 2},
	{4, 1, 3, 0, 2, 4, 1, 3},
	{0, 2, 4, 1, 3, 0, 2, 4},
	{1, 3, 0, 2, 4, 1, 3, 0},
	{2, 4, 1, 3, 0, 2, 4, 1},
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(startTime)
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()

	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-1", DisplayName: "Alice"}))
	s.Require().NoError(s.storage.SavePlayer(s.ctx, &model.Player{ID: "player-2", DisplayName: "Bob"}))
}

func pos(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

// saveGoldenGame stores an active session on the golden board
func (s *ControllerSuite) saveGoldenGame(moves int) *model.Game {
	game := &model.Game{
		ID:             "g1",
		PlayerID:       "player-1",
		Status:         model.GameStatusActive,
		State:          model.SessionIdle,
		Board:          model.MustBoardFromCodes(goldenBoard),
		Seed:           99,
		MovesRemaining: moves,
		CreatedAt:      startTime,
		UpdatedAt:      startTime,
	}
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	return game
}

// legalSwap finds the first right/down swap on board that forms a run
func legalSwap(board *model.Board) (model.Position, model.Position, bool) {
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
				return p, q, true
			}
		}
	}
	return model.Position{}, model.Position{}, false
}

// failingSaves fails the failOn'th SaveGame made through it
type failingSaves struct {
	*memory.Storage
	failOn int
	saves  int
}

func (f *failingSaves) SaveGame(ctx context.Context, game *model.Game) error {
	f.saves++
	if f.saves == f.failOn {
		return errors.New("transient write failure")
	}
	return f.Storage.SaveGame(ctx, game)
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGame() {
	s.random.QueueString("GAME00000001")
	s.random.QueueUint64(42)

	game, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{})
	s.Require().NoError(err)

	s.Equal(model.GameID("GAME00000001"), game.ID)
	s.Equal(uint64(42), game.Seed)
	s.Equal(model.GameStatusActive, game.Status)
	s.Equal(model.SessionIdle, game.State)
	s.Equal(model.DefaultMoves, game.MovesRemaining)
	s.Equal(8, game.Board.Rows)
	s.Equal(8, game.Board.Cols)
	s.True(game.Board.IsFull())
	s.Empty(match.FindGroups(game.Board))
	s.Equal(startTime, game.CreatedAt)

	stored, err := s.storage.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(game.Board.Equal(stored.Board))
}

func (s *ControllerSuite) TestCreateGameUnknownPlayer() {
	_, err := s.controller.CreateGame(s.ctx, "nobody", CreateOptions{})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *ControllerSuite) TestCreateGameOptionsOverrideDefaults() {
	seed := uint64(1234)
	game, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{Seed: &seed, Moves: 5})
	s.Require().NoError(err)
	s.Equal(seed, game.Seed)
	s.Equal(5, game.MovesRemaining)
}

func (s *ControllerSuite) TestSameSeedGivesSameBoard() {
	s.random.QueueString("A", "B")
	seed := uint64(777)

	first, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{Seed: &seed})
	s.Require().NoError(err)
	second, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{Seed: &seed})
	s.Require().NoError(err)

	s.True(first.Board.Equal(second.Board))
}

func (s *ControllerSuite) TestCustomBoardSize() {
	cfg := DefaultConfig()
	cfg.Rows = 6
	cfg.Cols = 5
	controller := NewController(s.storage, s.clock, s.random, cfg, testutil.NopLogger())

	game, err := controller.CreateGame(s.ctx, "player-1", CreateOptions{})
	s.Require().NoError(err)
	s.Equal(6, game.Board.Rows)
	s.Equal(5, game.Board.Cols)
}

// Swap tests

func (s *ControllerSuite) TestSwapAppliesOutcome() {
	s.saveGoldenGame(30)
	s.clock.Advance(time.Minute)

	result, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.Require().NoError(err)

	s.False(result.Outcome.Reverted)
	s.Require().NotEmpty(result.Outcome.Events)
	first := result.Outcome.Events[0]
	s.ElementsMatch([]model.Position{pos(1, 4), pos(2, 4), pos(3, 4)}, first.Removed)
	s.Equal(60, first.ScoreDelta)
	s.Nil(first.Special)

	game := result.Game
	s.Equal(result.Outcome.ScoreDelta, game.Score)
	s.GreaterOrEqual(game.Score, 60)
	s.Equal(29, game.MovesRemaining)
	s.Equal(1, game.MovesUsed)
	s.Equal(model.SessionIdle, game.State)
	s.Equal(startTime.Add(time.Minute), game.UpdatedAt)
	s.True(game.Board.IsFull())
	s.Empty(match.FindGroups(game.Board))

	stored, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.SessionIdle, stored.State)
	s.Equal(game.Score, stored.Score)
	s.True(game.Board.Equal(stored.Board))

	s.Require().NotEmpty(result.Events)
	s.Equal(model.EventSwapResolved, result.Events[0].Type)
	payload, ok := result.Events[0].Payload.(model.SwapResolvedPayload)
	s.Require().True(ok)
	s.Equal(29, payload.MovesRemaining)
}

func (s *ControllerSuite) TestRevertedSwapCostsNoMove() {
	s.saveGoldenGame(30)

	result, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(0, 0), pos(0, 1))
	s.Require().NoError(err)

	s.True(result.Outcome.Reverted)
	s.Equal(30, result.Game.MovesRemaining)
	s.Equal(0, result.Game.Score)
	s.Equal(goldenBoard, result.Game.Board.Codes())
}

func (s *ControllerSuite) TestSwapRejectsInvalidCoordinates() {
	s.saveGoldenGame(30)

	_, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(0, 0), pos(2, 0))
	s.ErrorIs(err, model.ErrInvalidCoordinates)

	_, err = s.controller.Swap(s.ctx, "g1", "player-1", pos(7, 7), pos(7, 8))
	s.ErrorIs(err, model.ErrInvalidCoordinates)

	stored, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.SessionIdle, stored.State)
	s.Equal(goldenBoard, stored.Board.Codes())
}

func (s *ControllerSuite) TestSwapRejectsOtherPlayer() {
	s.saveGoldenGame(30)

	_, err := s.controller.Swap(s.ctx, "g1", "player-2", pos(3, 3), pos(3, 4))
	s.ErrorIs(err, model.ErrNotGameOwner)
}

func (s *ControllerSuite) TestSwapUnknownGame() {
	_, err := s.controller.Swap(s.ctx, "missing", "player-1", pos(3, 3), pos(3, 4))
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestSwapRejectedWhileResolvingInProcess() {
	s.saveGoldenGame(30)
	s.Require().True(s.controller.acquire("g1"))

	_, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.ErrorIs(err, model.ErrSessionBusy)

	s.controller.release("g1")
	_, err = s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.NoError(err)
}

func (s *ControllerSuite) TestSwapRejectedWhileResolvingElsewhere() {
	game := s.saveGoldenGame(30)
	game.State = model.SessionResolving
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.ErrorIs(err, model.ErrSessionBusy)
}

func (s *ControllerSuite) TestFailedFinalSaveReturnsSessionToIdle() {
	s.saveGoldenGame(30)
	// First save marks the session Resolving, the second stores the outcome
	store := &failingSaves{Storage: s.storage, failOn: 2}
	controller := NewController(store, s.clock, s.random, DefaultConfig(), testutil.NopLogger())

	_, err := controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.Require().EqualError(err, "transient write failure")

	stored, err := s.storage.GetGame(s.ctx, "g1")
	s.Require().NoError(err)
	s.Equal(model.SessionIdle, stored.State)
	s.Equal(goldenBoard, stored.Board.Codes())
	s.Equal(30, stored.MovesRemaining)

	result, err := controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.Require().NoError(err)
	s.False(result.Outcome.Reverted)
	s.Equal(29, result.Game.MovesRemaining)
	s.Equal(model.SessionIdle, result.Game.State)
}

func (s *ControllerSuite) TestSwapOnFinishedGame() {
	game := s.saveGoldenGame(30)
	game.Finish(startTime)
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))

	_, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ControllerSuite) TestLastMoveFinishesAndRecordsHighScore() {
	s.saveGoldenGame(1)

	result, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.Require().NoError(err)

	s.True(result.Game.IsFinished())
	s.Equal(0, result.Game.MovesRemaining)
	s.True(result.NewHighScore)
	s.False(result.Shuffled)

	last := result.Events[len(result.Events)-1]
	s.Equal(model.EventGameFinished, last.Type)
	payload, ok := last.Payload.(model.GameFinishedPayload)
	s.Require().True(ok)
	s.Equal(result.Game.Score, payload.FinalScore)
	s.True(payload.NewHighScore)

	hs, err := s.controller.GetHighScore(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(result.Game.Score, hs.Score)
	s.Equal("Alice", hs.DisplayName)
	s.Equal(model.GameID("g1"), hs.GameID)

	_, err = s.controller.Swap(s.ctx, "g1", "player-1", pos(0, 0), pos(0, 1))
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ControllerSuite) TestLowerScoreKeepsExistingHighScore() {
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, &model.HighScore{
		PlayerID: "player-1", DisplayName: "Alice", Score: 1_000_000, GameID: "old",
	}))
	s.saveGoldenGame(1)

	result, err := s.controller.Swap(s.ctx, "g1", "player-1", pos(3, 3), pos(3, 4))
	s.Require().NoError(err)
	s.False(result.NewHighScore)

	hs, err := s.controller.GetHighScore(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("old"), hs.GameID)
}

func (s *ControllerSuite) TestSameSeedReplaysSameOutcome() {
	seed := uint64(2024)
	s.random.QueueString("A", "B")
	first, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{Seed: &seed})
	s.Require().NoError(err)
	second, err := s.controller.CreateGame(s.ctx, "player-1", CreateOptions{Seed: &seed})
	s.Require().NoError(err)

	a, b, ok := legalSwap(first.Board)
	s.Require().True(ok)

	r1, err := s.controller.Swap(s.ctx, first.ID, "player-1", a, b)
	s.Require().NoError(err)
	r2, err := s.controller.Swap(s.ctx, second.ID, "player-1", a, b)
	s.Require().NoError(err)

	s.Equal(r1.Outcome, r2.Outcome)
	s.True(r1.Game.Board.Equal(r2.Game.Board))
}

// EndGame tests

func (s *ControllerSuite) TestEndGameRecordsScore() {
	game := s.saveGoldenGame(30)
	game.Score = 420
	s.Require().NoError(s.storage.SaveGame(s.ctx, game))
	s.clock.Advance(5 * time.Minute)

	result, err := s.controller.EndGame(s.ctx, "g1", "player-1")
	s.Require().NoError(err)
	s.True(result.Game.IsFinished())
	s.Equal(startTime.Add(5*time.Minute), result.Game.FinishedAt)
	s.True(result.NewHighScore)

	hs, err := s.controller.GetHighScore(s.ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(420, hs.Score)

	_, err = s.controller.EndGame(s.ctx, "g1", "player-1")
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ControllerSuite) TestEndGameWithZeroScoreRecordsNothing() {
	s.saveGoldenGame(30)

	result, err := s.controller.EndGame(s.ctx, "g1", "player-1")
	s.Require().NoError(err)
	s.False(result.NewHighScore)

	_, err = s.controller.GetHighScore(s.ctx, "player-1")
	s.ErrorIs(err, model.ErrHighScoreNotFound)
}

func (s *ControllerSuite) TestEndGameRejectsOtherPlayer() {
	s.saveGoldenGame(30)
	_, err := s.controller.EndGame(s.ctx, "g1", "player-2")
	s.ErrorIs(err, model.ErrNotGameOwner)
}

// Leaderboard tests

func (s *ControllerSuite) TestLeaderboard() {
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, &model.HighScore{PlayerID: "player-1", Score: 300}))
	s.Require().NoError(s.storage.SaveHighScore(s.ctx, &model.HighScore{PlayerID: "player-2", Score: 500}))

	top, err := s.controller.Leaderboard(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.PlayerID("player-2"), top[0].PlayerID)

	top, err = s.controller.Leaderboard(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(top, 1)
}
