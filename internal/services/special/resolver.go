package special

import (
	"slices"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
)

// Spawn is a special tile to be placed once the board has been refilled
type Spawn struct {
	Position model.Position
	Tile     model.Tile
}

// Resolve decides which special tile, if any, a player swap of a and b earns.
//
// The active colour is taken from the first group in scan order that touches
// a swapped cell, falling back to the first group. Only groups of that colour
// touching a swapped cell are considered (all groups of the colour if none
// touch). Shapes are checked in priority order: cross, 2x2 square, run of
// five or more, run of exactly four.
func Resolve(groups []model.Group, a, b model.Position) (Spawn, bool) {
	if len(groups) == 0 {
		return Spawn{}, false
	}

	color := activeColor(groups, a, b)
	candidates := candidateGroups(groups, color, a, b)
	cells := match.CellSet(candidates)

	if pos, ok := findCross(candidates, cells); ok {
		return Spawn{Position: pos, Tile: model.Wrapped(color)}, true
	}

	if pos, ok := findSquare(cells); ok {
		return Spawn{Position: pos, Tile: model.Giant(color)}, true
	}

	var longest *model.Group
	for i := range candidates {
		if candidates[i].Len() >= 5 && (longest == nil || candidates[i].Len() > longest.Len()) {
			longest = &candidates[i]
		}
	}
	if longest != nil {
		return Spawn{Position: middle(*longest), Tile: model.Rainbow()}, true
	}

	for _, g := range candidates {
		if g.Len() == 4 {
			return Spawn{Position: middle(g), Tile: model.Striped(color, perpendicular(g.Direction))}, true
		}
	}

	return Spawn{}, false
}

func activeColor(groups []model.Group, a, b model.Position) int {
	for _, g := range groups {
		if g.Contains(a) || g.Contains(b) {
			return g.Color
		}
	}
	return groups[0].Color
}

func candidateGroups(groups []model.Group, color int, a, b model.Position) []model.Group {
	var touching, sameColor []model.Group
	for _, g := range groups {
		if g.Color != color {
			continue
		}
		sameColor = append(sameColor, g)
		if g.Contains(a) || g.Contains(b) {
			touching = append(touching, g)
		}
	}
	if len(touching) > 0 {
		return touching
	}
	return sameColor
}

// findCross returns the first cell lying in both a row group and a column group
func findCross(groups []model.Group, cells []model.Position) (model.Position, bool) {
	inRow := make(map[model.Position]bool)
	inCol := make(map[model.Position]bool)
	for _, g := range groups {
		for _, pos := range g.Cells {
			if g.Direction == model.DirectionRow {
				inRow[pos] = true
			} else {
				inCol[pos] = true
			}
		}
	}
	for _, pos := range cells {
		if inRow[pos] && inCol[pos] {
			return pos, true
		}
	}
	return model.Position{}, false
}

// findSquare returns the top-left corner of the first fully matched 2x2 block
func findSquare(cells []model.Position) (model.Position, bool) {
	set := make(map[model.Position]bool, len(cells))
	for _, pos := range cells {
		set[pos] = true
	}
	for _, pos := range cells {
		right := model.Position{Row: pos.Row, Col: pos.Col + 1}
		down := model.Position{Row: pos.Row + 1, Col: pos.Col}
		diag := model.Position{Row: pos.Row + 1, Col: pos.Col + 1}
		if set[right] && set[down] && set[diag] {
			return pos, true
		}
	}
	return model.Position{}, false
}

// middle returns the cell at index len/2 of the run sorted along its axis
func middle(g model.Group) model.Position {
	cells := slices.Clone(g.Cells)
	slices.SortFunc(cells, func(x, y model.Position) int {
		if x.Row != y.Row {
			return x.Row - y.Row
		}
		return x.Col - y.Col
	})
	return cells[len(cells)/2]
}

// perpendicular gives the clearing orientation for a striped tile made from a
// run along dir
func perpendicular(dir model.Direction) model.Direction {
	if dir == model.DirectionRow {
		return model.DirectionColumn
	}
	return model.DirectionRow
}
