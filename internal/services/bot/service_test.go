package bot_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courgette-crush/internal/dependencies/mocks"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/bot"
	"github.com/mcoot/courgette-crush/internal/services/cascade"
	"github.com/mcoot/courgette-crush/internal/services/game"
	"github.com/mcoot/courgette-crush/internal/storage/memory"
	"github.com/mcoot/courgette-crush/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	store      *memory.Storage
	mockClock  *mocks.MockClock
	mockRandom *mocks.MockRandom

	gameController *game.Controller
	botService     *bot.Service

	ctx context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.mockRandom = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.ctx = context.Background()

	cfg := game.Config{Rows: 8, Cols: 8, Moves: 3, Cascade: cascade.DefaultConfig()}
	s.gameController = game.NewController(s.store, s.mockClock, s.mockRandom, cfg, logger)
	s.botService = bot.NewService(s.gameController,
		bot.DefaultStrategies(s.mockRandom, cfg.Cascade, logger), logger)

	s.createPlayer("p1", "Alice")
	s.createPlayer("p2", "Bob")
}

func (s *ServiceSuite) createPlayer(id, name string) {
	p := model.Player{
		ID:          model.PlayerID(id),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   s.mockClock.Now(),
	}
	s.Require().NoError(s.store.SavePlayer(s.ctx, &p))
}

func (s *ServiceSuite) createGame(id string, seed uint64) *model.Game {
	s.mockRandom.QueueString(id)
	g, err := s.gameController.CreateGame(s.ctx, "p1", game.CreateOptions{Seed: &seed})
	s.Require().NoError(err)
	return g
}

func (s *ServiceSuite) TestStrategies() {
	s.Equal([]string{"greedy", "random"}, s.botService.Strategies())
}

func (s *ServiceSuite) TestSuggestReturnsFiringSwap() {
	g := s.createGame("GAME01", 42)

	move, err := s.botService.Suggest(s.ctx, g.ID, "p1", "")
	s.Require().NoError(err)

	result, err := s.gameController.Swap(s.ctx, g.ID, "p1", move.From, move.To)
	s.Require().NoError(err)
	s.False(result.Outcome.Reverted)
	s.Positive(result.Outcome.ScoreDelta)
}

func (s *ServiceSuite) TestSuggestUnknownStrategy() {
	g := s.createGame("GAME01", 42)

	_, err := s.botService.Suggest(s.ctx, g.ID, "p1", "clairvoyant")
	s.ErrorIs(err, bot.ErrUnknownStrategy)
}

func (s *ServiceSuite) TestSuggestNotOwner() {
	g := s.createGame("GAME01", 42)

	_, err := s.botService.Suggest(s.ctx, g.ID, "p2", bot.StrategyGreedy)
	s.ErrorIs(err, model.ErrNotGameOwner)
}

func (s *ServiceSuite) TestSuggestUnknownGame() {
	_, err := s.botService.Suggest(s.ctx, "NOPE", "p1", bot.StrategyGreedy)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ServiceSuite) TestSuggestFinishedGame() {
	g := s.createGame("GAME01", 42)
	_, err := s.gameController.EndGame(s.ctx, g.ID, "p1")
	s.Require().NoError(err)

	_, err = s.botService.Suggest(s.ctx, g.ID, "p1", bot.StrategyGreedy)
	s.ErrorIs(err, model.ErrGameFinished)
}

func (s *ServiceSuite) TestAutoPlayFinishesGame() {
	g := s.createGame("GAME01", 7)

	results, err := s.botService.AutoPlay(s.ctx, g.ID, "p1", bot.StrategyGreedy, 0)
	s.Require().NoError(err)
	s.Require().Len(results, 3)

	total := 0
	for _, r := range results {
		s.False(r.Outcome.Reverted)
		total += r.Outcome.ScoreDelta
	}
	last := results[len(results)-1]
	s.True(last.Game.IsFinished())
	s.Equal(total, last.Game.Score)
	s.True(last.NewHighScore)

	hs, err := s.gameController.GetHighScore(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(total, hs.Score)
}

func (s *ServiceSuite) TestAutoPlayStopsAtMaxMoves() {
	g := s.createGame("GAME01", 7)

	results, err := s.botService.AutoPlay(s.ctx, g.ID, "p1", bot.StrategyRandom, 2)
	s.Require().NoError(err)
	s.Require().Len(results, 2)

	stored, err := s.gameController.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.False(stored.IsFinished())
	s.Equal(1, stored.MovesRemaining)
	s.Equal(2, stored.MovesUsed)
}

func (s *ServiceSuite) TestAutoPlayNotOwner() {
	g := s.createGame("GAME01", 7)

	results, err := s.botService.AutoPlay(s.ctx, g.ID, "p2", bot.StrategyGreedy, 1)
	s.ErrorIs(err, model.ErrNotGameOwner)
	s.Empty(results)
}
