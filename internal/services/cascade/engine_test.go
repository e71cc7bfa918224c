package cascade

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/courgette-crush/internal/dependencies/mocks"
	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
	"github.com/mcoot/courgette-crush/internal/testutil"
)

// scriptedRandom serves queued Intn results, then defers to a seeded source
// so that unscripted refills behave like real play
type scriptedRandom struct {
	*mocks.MockRandom
	fallback *random.Seeded
}

func (r *scriptedRandom) Intn(n int) int {
	if r.PendingIntn() > 0 {
		return r.MockRandom.Intn(n)
	}
	return r.fallback.Intn(n)
}

type EngineSuite struct {
	suite.Suite
	random *mocks.MockRandom
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
	s.engine = New(DefaultConfig(), s.random, testutil.NopLogger())
}

// useScripted swaps the engine onto a queue-then-seeded random source
func (s *EngineSuite) useScripted(values ...int) {
	s.random.QueueIntn(values...)
	rnd := &scriptedRandom{MockRandom: s.random, fallback: random.NewSeeded(7, 7)}
	s.engine = New(DefaultConfig(), rnd, testutil.NopLogger())
}

func pos(row, col int) model.Position {
	return model.Position{Row: row, Col: col}
}

// baseCodes is an 8x8 layout with no two equal neighbours, colour (r+2c)%5
func baseCodes() [][]int {
	codes := make([][]int, 8)
	for r := range codes {
		codes[r] = make([]int, 8)
		for c := range codes[r] {
			codes[r][c] = (r + 2*c) % 5
		}
	}
	return codes
}

var goldenBefore = [][]int{
	{0, 2, 4, 1, 3, 0, 2, 4},
	{1, 3, 0, 2, 4, 1, 3, 0},
	{2, 4, 1, 3, 4, 2, 4, 1},
	{3, 0, 2, 4, 1, 3, 0, 2},
	{4, 1, 3, 0, 2, 4, 1, 3},
	{0, 2, 4, 1, 3, 0, 2, 4},
	{1, 3, 0, 2, 4, 1, 3, 0},
	{2, 4, 1, 3, 0, 2, 4, 1},
}

var goldenAfter = [][]int{
	{0, 2, 4, 1, 0, 0, 2, 4},
	{1, 3, 0, 2, 1, 1, 3, 0},
	{2, 4, 1, 3, 2, 2, 4, 1},
	{3, 0, 2, 1, 3, 3, 0, 2},
	{4, 1, 3, 0, 2, 4, 1, 3},
	{0, 2, 4, 1, 3, 0, 2, 4},
	{1, 3, 0, 2, 4, 1, 3, 0},
	{2, 4, 1, 3, 0, 2, 4, 1},
}

// goldenWith returns the golden start board with (1,4) replaced by code.
// Any colour-4 tile there keeps the swap (3,3)-(3,4) a vertical triple.
func goldenWith(code int) *model.Board {
	board := model.MustBoardFromCodes(goldenBefore)
	tile, err := model.TileFromCode(code)
	if err != nil {
		panic(err)
	}
	board.Set(pos(1, 4), tile)
	return board
}

// NewBoard tests

func (s *EngineSuite) TestNewBoardHasNoRunsForManySeeds() {
	for seed := uint64(0); seed < 50; seed++ {
		engine := New(DefaultConfig(), random.NewSeeded(seed, 0), testutil.NopLogger())
		board := engine.NewBoard(8, 8)

		s.True(board.IsFull(), "seed %d", seed)
		s.Empty(match.FindGroups(board), "seed %d", seed)
		for _, p := range board.Positions() {
			s.Equal(model.TileNormal, board.Get(p).Kind)
		}
	}
}

func (s *EngineSuite) TestNewBoardTerminatesWithDegenerateRandom() {
	// Every draw is 0, so each cell takes its lowest allowed colour
	board := s.engine.NewBoard(8, 8)
	s.Empty(match.FindGroups(board))
	s.Equal([]int{0, 0, 1, 0, 0, 1, 0, 0}, board.Codes()[0])
}

func (s *EngineSuite) TestNewBoardSupportsNonSquareGrids() {
	engine := New(DefaultConfig(), random.NewSeeded(3, 0), testutil.NopLogger())
	board := engine.NewBoard(5, 9)
	s.Equal(5, board.Rows)
	s.Equal(9, board.Cols)
	s.Empty(match.FindGroups(board))
}

// ResolveSwap validation tests

func (s *EngineSuite) TestNonAdjacentSwapRejected() {
	board := model.MustBoardFromCodes(goldenBefore)

	_, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 5))

	s.ErrorIs(err, model.ErrInvalidCoordinates)
	s.Equal(goldenBefore, board.Codes())
}

func (s *EngineSuite) TestDiagonalSwapRejected() {
	board := model.MustBoardFromCodes(goldenBefore)
	_, err := s.engine.ResolveSwap(board, pos(3, 3), pos(4, 4))
	s.ErrorIs(err, model.ErrInvalidCoordinates)
}

func (s *EngineSuite) TestOutOfBoundsSwapRejected() {
	board := model.MustBoardFromCodes(goldenBefore)

	_, err := s.engine.ResolveSwap(board, pos(7, 7), pos(7, 8))

	s.ErrorIs(err, model.ErrInvalidCoordinates)
	s.Equal(goldenBefore, board.Codes())
}

func (s *EngineSuite) TestSwapWithoutMatchIsReverted() {
	board := model.MustBoardFromCodes(baseCodes())

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	s.True(outcome.Reverted)
	s.Equal(0, outcome.ScoreDelta)
	s.Empty(outcome.Events)
	s.Equal(baseCodes(), board.Codes())
	s.Empty(s.random.IntnBounds)
}

func (s *EngineSuite) TestUnsettledBoardPanics() {
	codes := baseCodes()
	codes[0][0], codes[0][1], codes[0][2] = 1, 1, 1
	board := model.MustBoardFromCodes(codes)

	s.Panics(func() {
		_, _ = s.engine.ResolveSwap(board, pos(5, 5), pos(5, 6))
	})
}

func (s *EngineSuite) TestBoardWithHolePanics() {
	codes := baseCodes()
	codes[4][4] = -1
	board := model.MustBoardFromCodes(codes)

	s.Panics(func() {
		_, _ = s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))
	})
}

// Golden and basic match tests

func (s *EngineSuite) TestGoldenSwap() {
	board := model.MustBoardFromCodes(goldenBefore)
	s.random.QueueIntn(0, 1, 2)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 4))

	s.Require().NoError(err)
	s.Equal(goldenAfter, board.Codes())
	s.Equal(model.Outcome{
		ScoreDelta: 60,
		Iterations: 1,
		Events: []model.CascadeEvent{{
			Iteration:  1,
			Removed:    []model.Position{pos(1, 4), pos(2, 4), pos(3, 4)},
			Dropped:    []model.Drop{{From: pos(0, 4), To: pos(3, 4)}},
			Spawned: []model.SpawnedTile{
				{Position: pos(0, 4), Tile: model.Normal(0)},
				{Position: pos(1, 4), Tile: model.Normal(1)},
				{Position: pos(2, 4), Tile: model.Normal(2)},
			},
			ScoreDelta: 60,
		}},
	}, outcome)
	s.Equal([]int{5, 5, 5}, s.random.IntnBounds)
}

func (s *EngineSuite) TestPlainTripleScoresSixtyWithoutSpecial() {
	board := model.MustBoardFromCodes(goldenBefore)
	s.random.QueueIntn(0, 1, 2)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 4), pos(3, 3))

	s.Require().NoError(err)
	s.False(outcome.Reverted)
	s.Require().Len(outcome.Events, 1)
	s.Len(outcome.Events[0].Removed, 3)
	s.Nil(outcome.Events[0].Special)
	s.Equal(60, outcome.ScoreDelta)
	for _, p := range board.Positions() {
		s.False(board.Get(p).IsSpecial())
	}
}

// Special spawn tests

func (s *EngineSuite) TestFourInRowSpawnsColumnStriped() {
	codes := baseCodes()
	codes[3][1] = 3
	codes[3][3] = 3
	board := model.MustBoardFromCodes(codes)
	s.random.QueueIntn(0, 1, 2, 4)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 2), pos(4, 2))

	s.Require().NoError(err)
	s.Equal(1, outcome.Iterations)
	s.Equal(100, outcome.ScoreDelta)
	s.Require().NotNil(outcome.Events[0].Special)
	s.Equal(pos(3, 2), outcome.Events[0].Special.Position)
	s.Equal(model.Striped(3, model.DirectionColumn), outcome.Events[0].Special.Tile)
	s.Equal(13, board.Get(pos(3, 2)).Code())
	s.Empty(match.FindGroups(board))
}

func (s *EngineSuite) TestCrossBeatsRunOfFour() {
	codes := baseCodes()
	codes[2][3] = 0
	codes[3][2] = 0
	codes[3][4] = 0
	codes[5][3] = 0
	board := model.MustBoardFromCodes(codes)
	s.random.QueueIntn(1, 2, 3, 1, 2, 4)

	outcome, err := s.engine.ResolveSwap(board, pos(2, 3), pos(3, 3))

	s.Require().NoError(err)
	s.Equal(1, outcome.Iterations)
	event := outcome.Events[0]
	s.Equal(160, event.ScoreDelta)
	s.Len(event.Removed, 6)
	s.Require().NotNil(event.Special)
	s.Equal(pos(3, 3), event.Special.Position)
	s.Equal(model.Wrapped(0), event.Special.Tile)
	s.Equal(model.Wrapped(0), board.Get(pos(3, 3)))
}

// Trigger tests

func (s *EngineSuite) TestStripedTriggerClearsWholeRow() {
	board := goldenWith(model.Striped(4, model.DirectionRow).Code())
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 4))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Equal(60+(board.Cols-1)*10, event.ScoreDelta)
	s.Len(event.Removed, 3+board.Cols-1)
	for col := 0; col < board.Cols; col++ {
		s.Contains(event.Removed, pos(1, col))
	}
}

func (s *EngineSuite) TestWrappedTriggerClearsNeighbourhood() {
	board := goldenWith(model.Wrapped(4).Code())
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 4))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Equal(130, event.ScoreDelta)
	s.Len(event.Removed, 10)
	s.Contains(event.Removed, pos(0, 3))
	s.Contains(event.Removed, pos(2, 5))
}

func (s *EngineSuite) TestGiantTriggerDestroysThreeRandomCells() {
	board := goldenWith(model.Giant(4).Code())
	s.useScripted(0, 0, 0)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 4))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Equal(90, event.ScoreDelta)
	s.Equal([]model.Position{
		pos(1, 4), pos(2, 4), pos(3, 4),
		pos(0, 0), pos(0, 1), pos(0, 2),
	}, event.Removed)
	s.Equal([]int{63, 62, 61}, s.random.IntnBounds)
}

// Combination tests

func (s *EngineSuite) TestRainbowWithNormalClearsColour() {
	codes := baseCodes()
	codes[0][0] = model.Rainbow().Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	s.False(outcome.Reverted)
	event := outcome.Events[0]
	// 13 tiles of colour 2 plus the rainbow itself
	s.Len(event.Removed, 14)
	s.Contains(event.Removed, pos(0, 1))
	s.Equal(560, event.ScoreDelta)
	s.Nil(event.Special)
}

func (s *EngineSuite) TestStripedPairClearsRowAndColumn() {
	codes := baseCodes()
	codes[0][0] = model.Striped(0, model.DirectionRow).Code()
	codes[0][1] = model.Striped(2, model.DirectionColumn).Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Len(event.Removed, 15)
	s.Equal(600, event.ScoreDelta)
}

func (s *EngineSuite) TestStripedWrappedClearsLinesAndBlock() {
	codes := baseCodes()
	codes[3][3] = model.Striped(4, model.DirectionRow).Code()
	codes[3][4] = model.Wrapped(1).Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(3, 3), pos(3, 4))

	s.Require().NoError(err)
	event := outcome.Events[0]

	// The striped tile lands on (3,4): its row and column, plus the 3x3
	// around the wrapped tile now on (3,3)
	var want []model.Position
	for c := 0; c < 8; c++ {
		want = append(want, pos(3, c))
	}
	for r := 0; r < 8; r++ {
		if r != 3 {
			want = append(want, pos(r, 4))
		}
	}
	want = append(want, pos(2, 2), pos(2, 3), pos(4, 2), pos(4, 3))

	s.ElementsMatch(want, event.Removed)
	// Both swapped tiles are spent, so neither adds bonus cells
	s.Equal(19*40, event.ScoreDelta)
	s.Nil(event.Special)
}

func (s *EngineSuite) TestWrappedGiantClearsBoard() {
	codes := baseCodes()
	codes[0][0] = model.Wrapped(0).Code()
	codes[0][1] = model.Giant(2).Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Len(event.Removed, 64)
	s.Equal(64*40, event.ScoreDelta)
	s.Nil(event.Special)
	s.True(board.IsFull())
}

func (s *EngineSuite) TestRainbowTriggerCoversBoard() {
	codes := baseCodes()
	codes[5][5] = model.Rainbow().Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	s.Len(s.engine.triggerCells(board, pos(5, 5)), 64)
}

func (s *EngineSuite) TestDoubleRainbowClearsBoard() {
	codes := baseCodes()
	codes[0][0] = model.Rainbow().Code()
	codes[0][1] = model.Rainbow().Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	s.Len(outcome.Events[0].Removed, 64)
	s.Equal(64*40, outcome.Events[0].ScoreDelta)
}

func (s *EngineSuite) TestSingleSpecialWithNormalFiresItsEffect() {
	codes := baseCodes()
	codes[0][0] = model.Wrapped(0).Code()
	board := model.MustBoardFromCodes(codes)
	s.useScripted()

	outcome, err := s.engine.ResolveSwap(board, pos(0, 0), pos(0, 1))

	s.Require().NoError(err)
	event := outcome.Events[0]
	s.Equal(pos(0, 1), event.Removed[0])
	s.Len(event.Removed, 6)
	s.Equal(50, event.ScoreDelta)
}

// Cascade tests

// cascadeBoard produces three passes when (3,1) and (3,2) are swapped:
// a column triple, then a row triple at the bottom, then a column triple
// completed by the refill
var cascadeBoard = [][]int{
	{2, 4, 1},
	{2, 3, 4},
	{3, 1, 0},
	{4, 3, 0},
	{3, 0, 4},
	{1, 0, 1},
}

func (s *EngineSuite) TestThreeIterationCascade() {
	board := model.MustBoardFromCodes(cascadeBoard)
	s.random.QueueIntn(0, 1, 2, 2, 3, 0, 4, 2, 0)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 1), pos(3, 2))

	s.Require().NoError(err)
	s.Equal(3, outcome.Iterations)
	s.Equal(180, outcome.ScoreDelta)
	s.Require().Len(outcome.Events, 3)
	s.Equal([]model.Position{pos(3, 1), pos(4, 1), pos(5, 1)}, outcome.Events[0].Removed)
	s.Equal([]model.Position{pos(5, 0), pos(5, 1), pos(5, 2)}, outcome.Events[1].Removed)
	s.Equal([]model.Position{pos(0, 0), pos(1, 0), pos(2, 0)}, outcome.Events[2].Removed)
	for i, event := range outcome.Events {
		s.Equal(i+1, event.Iteration)
		s.Equal(60, event.ScoreDelta)
	}
	s.Equal([][]int{
		{4, 3, 0},
		{2, 0, 1},
		{0, 1, 4},
		{3, 2, 0},
		{4, 4, 3},
		{3, 3, 4},
	}, board.Codes())
	s.Equal(0, s.random.PendingIntn())
}

func (s *EngineSuite) TestCascadeFirstPassDropsInOrder() {
	board := model.MustBoardFromCodes(cascadeBoard)
	s.random.QueueIntn(0, 1, 2, 2, 3, 0, 4, 2, 0)

	outcome, err := s.engine.ResolveSwap(board, pos(3, 1), pos(3, 2))

	s.Require().NoError(err)
	s.Equal([]model.Drop{
		{From: pos(2, 1), To: pos(5, 1)},
		{From: pos(1, 1), To: pos(4, 1)},
		{From: pos(0, 1), To: pos(3, 1)},
	}, outcome.Events[0].Dropped)
}

func (s *EngineSuite) TestExceedingMaxIterationsPanics() {
	engine := New(Config{MaxIterations: 2}, s.random, testutil.NopLogger())
	board := model.MustBoardFromCodes(cascadeBoard)
	s.random.QueueIntn(0, 1, 2, 2, 3, 0, 4, 2, 0)

	s.Panics(func() {
		_, _ = engine.ResolveSwap(board, pos(3, 1), pos(3, 2))
	})
}

func (s *EngineSuite) TestCollapseIsStable() {
	board := model.MustBoardFromCodes([][]int{
		{0, 1},
		{-1, 2},
		{3, -1},
		{-1, 4},
	})
	s.random.QueueIntn(1, 2, 3)

	drops, spawned := s.engine.collapse(board)

	s.Equal([][]int{
		{1, 3},
		{2, 1},
		{0, 2},
		{3, 4},
	}, board.Codes())
	s.Equal([]model.Drop{
		{From: pos(2, 0), To: pos(3, 0)},
		{From: pos(0, 0), To: pos(2, 0)},
		{From: pos(1, 1), To: pos(2, 1)},
		{From: pos(0, 1), To: pos(1, 1)},
	}, drops)
	s.Len(spawned, 3)
}

// Possible move tests

func (s *EngineSuite) TestHasPossibleMove() {
	s.True(s.engine.HasPossibleMove(model.MustBoardFromCodes(goldenBefore)))

	dead := model.MustBoardFromCodes([][]int{
		{0, 1, 2},
		{3, 4, 0},
		{1, 2, 3},
	})
	s.False(s.engine.HasPossibleMove(dead))

	dead.Set(pos(1, 1), model.Rainbow())
	s.True(s.engine.HasPossibleMove(dead))
}

func (s *EngineSuite) TestHasPossibleMoveLeavesBoardUntouched() {
	board := model.MustBoardFromCodes(goldenBefore)
	s.engine.HasPossibleMove(board)
	s.Equal(goldenBefore, board.Codes())
}

func (s *EngineSuite) TestShuffleProducesPlayableBoard() {
	engine := New(DefaultConfig(), random.NewSeeded(11, 0), testutil.NopLogger())
	board := model.MustBoardFromCodes([][]int{
		{0, 1, 2, 3},
		{3, 4, 0, 1},
		{1, 2, 3, 4},
		{4, 0, 1, 2},
	})

	s.True(engine.Shuffle(board))
	s.Equal(4, board.Rows)
	s.Empty(match.FindGroups(board))
	s.True(engine.HasPossibleMove(board))
}

func (s *EngineSuite) TestShuffleReportsBoardWithNoPossibleLayout() {
	engine := New(DefaultConfig(), random.NewSeeded(11, 0), testutil.NopLogger())
	board := model.MustBoardFromCodes([][]int{{0, 1}, {2, 3}})

	s.False(engine.Shuffle(board))
	s.True(board.IsFull())
	s.Empty(match.FindGroups(board))
}
