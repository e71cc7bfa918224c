package match

import "github.com/mcoot/courgette-crush/internal/model"

// MinRun is the shortest run that counts as a match
const MinRun = 3

// FindGroups returns every maximal straight run of MinRun or more tiles
// sharing a colour. Rows are scanned top to bottom with cells left to right,
// then columns left to right with cells top to bottom. A cell may appear in
// both a row group and a column group; groups are never merged.
func FindGroups(board *model.Board) []model.Group {
	var groups []model.Group

	for row := 0; row < board.Rows; row++ {
		groups = appendRuns(groups, board, board.Cols, model.DirectionRow, func(i int) model.Position {
			return model.Position{Row: row, Col: i}
		})
	}
	for col := 0; col < board.Cols; col++ {
		groups = appendRuns(groups, board, board.Rows, model.DirectionColumn, func(i int) model.Position {
			return model.Position{Row: i, Col: col}
		})
	}

	return groups
}

// HasGroups returns true if the board holds at least one run
func HasGroups(board *model.Board) bool {
	return len(FindGroups(board)) > 0
}

// CellSet returns the union of all group cells in first-seen order
func CellSet(groups []model.Group) []model.Position {
	seen := make(map[model.Position]bool)
	var cells []model.Position
	for _, g := range groups {
		for _, pos := range g.Cells {
			if !seen[pos] {
				seen[pos] = true
				cells = append(cells, pos)
			}
		}
	}
	return cells
}

// appendRuns scans one line of length n and appends its runs
func appendRuns(groups []model.Group, board *model.Board, n int, dir model.Direction, at func(int) model.Position) []model.Group {
	start := 0
	for i := 1; i <= n; i++ {
		if i < n && sameColor(board.Get(at(i-1)), board.Get(at(i))) {
			continue
		}
		if i-start >= MinRun {
			color, _ := board.Get(at(start)).MatchColor()
			cells := make([]model.Position, 0, i-start)
			for j := start; j < i; j++ {
				cells = append(cells, at(j))
			}
			groups = append(groups, model.Group{Cells: cells, Direction: dir, Color: color})
		}
		start = i
	}
	return groups
}

func sameColor(a, b model.Tile) bool {
	ca, okA := a.MatchColor()
	cb, okB := b.MatchColor()
	return okA && okB && ca == cb
}
