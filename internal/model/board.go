package model

import (
	"encoding/json"
	"fmt"
)

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// IsAdjacent returns true if the two positions share an edge
func IsAdjacent(a, b Position) bool {
	dr := a.Row - b.Row
	dc := a.Col - b.Col
	return (dr == 0 && (dc == 1 || dc == -1)) || (dc == 0 && (dr == 1 || dr == -1))
}

// Board is a rectangular grid of tiles
type Board struct {
	Rows  int
	Cols  int
	Cells [][]Tile // Row-major: Cells[row][col]
}

// NewBoard creates an empty board of the given dimensions
func NewBoard(rows, cols int) *Board {
	cells := make([][]Tile, rows)
	for i := range cells {
		cells[i] = make([]Tile, cols)
	}
	return &Board{
		Rows:  rows,
		Cols:  cols,
		Cells: cells,
	}
}

// BoardFromCodes builds a board from a grid of tile codes
func BoardFromCodes(codes [][]int) (*Board, error) {
	if len(codes) == 0 || len(codes[0]) == 0 {
		return nil, fmt.Errorf("%w: board must have at least one cell", ErrInvalidBoard)
	}
	b := NewBoard(len(codes), len(codes[0]))
	for row, line := range codes {
		if len(line) != b.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, row, len(line), b.Cols)
		}
		for col, code := range line {
			tile, err := TileFromCode(code)
			if err != nil {
				return nil, err
			}
			b.Cells[row][col] = tile
		}
	}
	return b, nil
}

// MustBoardFromCodes is BoardFromCodes for fixed fixtures; it panics on bad input
func MustBoardFromCodes(codes [][]int) *Board {
	b, err := BoardFromCodes(codes)
	if err != nil {
		panic(err)
	}
	return b
}

// Codes returns the board as a grid of tile codes
func (b *Board) Codes() [][]int {
	codes := make([][]int, b.Rows)
	for row := range codes {
		codes[row] = make([]int, b.Cols)
		for col := range codes[row] {
			codes[row][col] = b.Cells[row][col].Code()
		}
	}
	return codes
}

// Get returns the tile at the given position, or an empty tile if out of bounds
func (b *Board) Get(pos Position) Tile {
	if !b.InBounds(pos) {
		return Tile{}
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set places a tile at the given position
func (b *Board) Set(pos Position, tile Tile) {
	if b.InBounds(pos) {
		b.Cells[pos.Row][pos.Col] = tile
	}
}

// Swap exchanges the tiles at two positions
func (b *Board) Swap(a, c Position) {
	if !b.InBounds(a) || !b.InBounds(c) {
		return
	}
	b.Cells[a.Row][a.Col], b.Cells[c.Row][c.Col] = b.Cells[c.Row][c.Col], b.Cells[a.Row][a.Col]
}

// InBounds returns true if the position is within the grid
func (b *Board) InBounds(pos Position) bool {
	return pos.Row >= 0 && pos.Row < b.Rows && pos.Col >= 0 && pos.Col < b.Cols
}

// IsFull returns true if no cell is empty
func (b *Board) IsFull() bool {
	return b.EmptyCount() == 0
}

// EmptyCount returns the number of empty cells
func (b *Board) EmptyCount() int {
	count := 0
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			if b.Cells[row][col].IsEmpty() {
				count++
			}
		}
	}
	return count
}

// Positions returns every cell position in row-major order
func (b *Board) Positions() []Position {
	positions := make([]Position, 0, b.Rows*b.Cols)
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			positions = append(positions, Position{Row: row, Col: col})
		}
	}
	return positions
}

// Clone returns a deep copy of the board
func (b *Board) Clone() *Board {
	c := NewBoard(b.Rows, b.Cols)
	for row := range b.Cells {
		copy(c.Cells[row], b.Cells[row])
	}
	return c
}

// Equal returns true if both boards have the same shape and tiles
func (b *Board) Equal(other *Board) bool {
	if other == nil || b.Rows != other.Rows || b.Cols != other.Cols {
		return false
	}
	for row := 0; row < b.Rows; row++ {
		for col := 0; col < b.Cols; col++ {
			if b.Cells[row][col] != other.Cells[row][col] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the board as its grid of tile codes
func (b *Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Codes())
}

// UnmarshalJSON decodes a grid of tile codes
func (b *Board) UnmarshalJSON(data []byte) error {
	var codes [][]int
	if err := json.Unmarshal(data, &codes); err != nil {
		return err
	}
	decoded, err := BoardFromCodes(codes)
	if err != nil {
		return err
	}
	*b = *decoded
	return nil
}
