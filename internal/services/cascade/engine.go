package cascade

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/mcoot/courgette-crush/internal/dependencies/random"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
	"github.com/mcoot/courgette-crush/internal/services/scoring"
	"github.com/mcoot/courgette-crush/internal/services/special"
)

// Config holds tuning for the cascade engine
type Config struct {
	MaxIterations int // Cascade passes allowed before the engine gives up
	GiantTargets  int // Cells a Giant tile destroys when triggered
}

// DefaultConfig returns default engine configuration
func DefaultConfig() Config {
	return Config{
		MaxIterations: 1000,
		GiantTargets:  3,
	}
}

// Engine resolves swaps on a board: match removal, trigger effects,
// special spawns, gravity, refill and cascades
type Engine struct {
	cfg    Config
	random random.Random
	logger *slog.Logger
}

// New creates an Engine drawing refill colours and Giant targets from rnd
func New(cfg Config, rnd random.Random, logger *slog.Logger) *Engine {
	defaults := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = defaults.MaxIterations
	}
	if cfg.GiantTargets <= 0 {
		cfg.GiantTargets = defaults.GiantTargets
	}
	return &Engine{
		cfg:    cfg,
		random: rnd,
		logger: logger,
	}
}

// swap is the pair of cells the player exchanged
type swap struct {
	a, b model.Position
}

// ResolveSwap applies a player swap of a and b to board, mutating it in place.
// Coordinates that are out of bounds or not adjacent return
// model.ErrInvalidCoordinates and leave the board untouched. A swap that
// neither matches nor combines specials is undone and reported as Reverted.
func (e *Engine) ResolveSwap(board *model.Board, a, b model.Position) (model.Outcome, error) {
	if !board.InBounds(a) || !board.InBounds(b) || !model.IsAdjacent(a, b) {
		return model.Outcome{}, fmt.Errorf("%w: %s and %s", model.ErrInvalidCoordinates, a, b)
	}
	assertSettled(board)

	board.Swap(a, b)

	if groups := match.FindGroups(board); len(groups) > 0 {
		return e.resolve(board, groups, &swap{a: a, b: b}, nil), nil
	}

	cells, consumed := e.combination(board, a, b)
	if len(cells) == 0 {
		board.Swap(a, b)
		e.logger.Debug("swap reverted",
			slog.String("from", a.String()),
			slog.String("to", b.String()))
		return model.Outcome{Reverted: true}, nil
	}

	group := model.Group{Cells: cells, Direction: model.DirectionRow, Color: model.NoColor}
	return e.resolve(board, []model.Group{group}, nil, consumed), nil
}

// resolve runs cascade passes until the board settles
func (e *Engine) resolve(board *model.Board, groups []model.Group, origin *swap, consumed map[model.Position]bool) model.Outcome {
	var outcome model.Outcome

	for iteration := 1; len(groups) > 0; iteration++ {
		if iteration > e.cfg.MaxIterations {
			panic(fmt.Sprintf("cascade did not settle within %d iterations", e.cfg.MaxIterations))
		}

		event := e.step(board, groups, origin, consumed)
		event.Iteration = iteration

		outcome.ScoreDelta += event.ScoreDelta
		outcome.Events = append(outcome.Events, event)
		outcome.Iterations = iteration

		origin = nil
		consumed = nil
		groups = match.FindGroups(board)
	}

	e.logger.Debug("cascade settled",
		slog.Int("iterations", outcome.Iterations),
		slog.Int("score_delta", outcome.ScoreDelta))

	return outcome
}

// step performs one removal/drop/refill pass. origin is only set for the
// first pass of a player swap, the one pass that may spawn a special tile.
// Cells in consumed have already spent their effect and do not trigger.
func (e *Engine) step(board *model.Board, groups []model.Group, origin *swap, consumed map[model.Position]bool) model.CascadeEvent {
	var event model.CascadeEvent

	matchCells := match.CellSet(groups)
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = g.Len()
	}
	event.ScoreDelta = scoring.GroupsScore(sizes...)

	cleared := make(map[model.Position]bool, len(matchCells))
	for _, pos := range matchCells {
		cleared[pos] = true
	}

	// Single pass over the matched cells; bonus cells do not chain.
	var bonus []model.Position
	for _, pos := range matchCells {
		if consumed[pos] {
			continue
		}
		for _, target := range e.triggerCells(board, pos) {
			if !cleared[target] {
				cleared[target] = true
				bonus = append(bonus, target)
			}
		}
	}
	event.ScoreDelta += scoring.BonusScore(len(bonus))

	var spawn *special.Spawn
	if origin != nil {
		if s, ok := special.Resolve(groups, origin.a, origin.b); ok {
			if !board.InBounds(s.Position) {
				s.Position = origin.b
			}
			spawn = &s
		}
	}

	event.Removed = append(slices.Clone(matchCells), bonus...)
	for _, pos := range event.Removed {
		board.Set(pos, model.Tile{})
	}

	event.Dropped, event.Spawned = e.collapse(board)

	if spawn != nil {
		board.Set(spawn.Position, spawn.Tile)
		event.Special = &model.SpawnedTile{Position: spawn.Position, Tile: spawn.Tile}
	}

	return event
}

// triggerCells returns the cells destroyed by the special tile at pos
func (e *Engine) triggerCells(board *model.Board, pos model.Position) []model.Position {
	tile := board.Get(pos)
	switch tile.Kind {
	case model.TileStriped:
		if tile.Orientation == model.DirectionColumn {
			return columnCells(board, pos.Col)
		}
		return rowCells(board, pos.Row)
	case model.TileWrapped:
		return neighbourhood(board, pos)
	case model.TileGiant:
		return e.giantTargets(board, pos)
	case model.TileRainbow:
		// Swapped rainbows resolve through combination; this covers one
		// reaching matchCells any other way
		return occupiedCells(board)
	default:
		return nil
	}
}

// giantTargets picks up to GiantTargets distinct occupied cells other than pos
func (e *Engine) giantTargets(board *model.Board, pos model.Position) []model.Position {
	remaining := slices.DeleteFunc(occupiedCells(board), func(p model.Position) bool {
		return p == pos
	})

	n := min(e.cfg.GiantTargets, len(remaining))
	targets := make([]model.Position, 0, n)
	for i := 0; i < n; i++ {
		idx := e.random.Intn(len(remaining))
		targets = append(targets, remaining[idx])
		remaining = slices.Delete(remaining, idx, idx+1)
	}
	return targets
}

// combination returns the cells cleared when two tiles are swapped without
// forming a run, and the swapped cells whose effect the combination already
// covers. No cells means the swap is invalid.
func (e *Engine) combination(board *model.Board, a, b model.Position) ([]model.Position, map[model.Position]bool) {
	ta, tb := board.Get(a), board.Get(b)
	both := map[model.Position]bool{a: true, b: true}

	switch {
	case ta.Kind == model.TileRainbow && tb.Kind == model.TileNormal:
		return colorCells(board, tb.Color, a), both
	case tb.Kind == model.TileRainbow && ta.Kind == model.TileNormal:
		return colorCells(board, ta.Color, b), both
	case ta.Kind == model.TileRainbow || tb.Kind == model.TileRainbow:
		return occupiedCells(board), both
	case ta.Kind == model.TileStriped && tb.Kind == model.TileStriped:
		return union(rowCells(board, a.Row), columnCells(board, b.Col)), both
	case ta.Kind == model.TileStriped && tb.Kind == model.TileWrapped:
		return stripedWrapped(board, a, b), both
	case tb.Kind == model.TileStriped && ta.Kind == model.TileWrapped:
		return stripedWrapped(board, b, a), both
	case ta.IsSpecial() && tb.IsSpecial():
		return occupiedCells(board), both
	case ta.IsSpecial():
		return []model.Position{a}, nil
	case tb.IsSpecial():
		return []model.Position{b}, nil
	default:
		return nil, nil
	}
}

// collapse lets tiles fall into empty cells, preserving their vertical order,
// then refills each column from the top with random normal tiles
func (e *Engine) collapse(board *model.Board) ([]model.Drop, []model.SpawnedTile) {
	var drops []model.Drop
	var spawned []model.SpawnedTile

	for col := 0; col < board.Cols; col++ {
		write := board.Rows - 1
		for row := board.Rows - 1; row >= 0; row-- {
			tile := board.Cells[row][col]
			if tile.IsEmpty() {
				continue
			}
			if write != row {
				board.Cells[write][col] = tile
				board.Cells[row][col] = model.Tile{}
				drops = append(drops, model.Drop{
					From: model.Position{Row: row, Col: col},
					To:   model.Position{Row: write, Col: col},
				})
			}
			write--
		}

		for row := 0; row <= write; row++ {
			tile := model.Normal(e.random.Intn(model.PaletteSize))
			board.Cells[row][col] = tile
			spawned = append(spawned, model.SpawnedTile{
				Position: model.Position{Row: row, Col: col},
				Tile:     tile,
			})
		}
	}

	return drops, spawned
}

// assertSettled panics if the board is not at rest
func assertSettled(board *model.Board) {
	if n := board.EmptyCount(); n > 0 {
		panic(fmt.Sprintf("board is not settled: %d empty cells before swap", n))
	}
	if groups := match.FindGroups(board); len(groups) > 0 {
		panic(fmt.Sprintf("board is not settled: run of %d at %s before swap", groups[0].Len(), groups[0].Cells[0]))
	}
}
