package cascade

import "github.com/mcoot/courgette-crush/internal/model"

func rowCells(board *model.Board, row int) []model.Position {
	cells := make([]model.Position, 0, board.Cols)
	for col := 0; col < board.Cols; col++ {
		cells = append(cells, model.Position{Row: row, Col: col})
	}
	return cells
}

func columnCells(board *model.Board, col int) []model.Position {
	cells := make([]model.Position, 0, board.Rows)
	for row := 0; row < board.Rows; row++ {
		cells = append(cells, model.Position{Row: row, Col: col})
	}
	return cells
}

// neighbourhood returns the in-bounds 3x3 block centred on pos
func neighbourhood(board *model.Board, pos model.Position) []model.Position {
	var cells []model.Position
	for row := pos.Row - 1; row <= pos.Row+1; row++ {
		for col := pos.Col - 1; col <= pos.Col+1; col++ {
			p := model.Position{Row: row, Col: col}
			if board.InBounds(p) {
				cells = append(cells, p)
			}
		}
	}
	return cells
}

// occupiedCells returns every non-empty cell in row-major order
func occupiedCells(board *model.Board) []model.Position {
	var cells []model.Position
	for _, p := range board.Positions() {
		if !board.Get(p).IsEmpty() {
			cells = append(cells, p)
		}
	}
	return cells
}

// colorCells returns every tile of the given colour plus the rainbow at rainbow
func colorCells(board *model.Board, color int, rainbow model.Position) []model.Position {
	var cells []model.Position
	for _, p := range board.Positions() {
		if c, ok := board.Get(p).MatchColor(); ok && c == color {
			cells = append(cells, p)
		}
	}
	return append(cells, rainbow)
}

// stripedWrapped clears the striped tile's row and column plus the 3x3
// block around the wrapped tile
func stripedWrapped(board *model.Board, striped, wrapped model.Position) []model.Position {
	return union(rowCells(board, striped.Row), columnCells(board, striped.Col), neighbourhood(board, wrapped))
}

// union concatenates cell lists, dropping repeats
func union(lists ...[]model.Position) []model.Position {
	seen := make(map[model.Position]bool)
	var cells []model.Position
	for _, list := range lists {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				cells = append(cells, p)
			}
		}
	}
	return cells
}
