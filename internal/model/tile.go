package model

import (
	"fmt"
	"strconv"
)

// PaletteSize is the number of distinct tile colours
const PaletteSize = 5

// NoColor marks a tile or group that carries no matchable colour
const NoColor = -1

// TileKind distinguishes ordinary tiles from the special power-ups
type TileKind int

const (
	TileEmpty   TileKind = iota // Transient hole during a cascade
	TileNormal                  // Plain coloured tile
	TileStriped                 // Clears a full row or column
	TileWrapped                 // Clears the 3x3 neighbourhood
	TileGiant                   // Clears three random tiles
	TileRainbow                 // Colourless, clears by colour or the whole board
)

func (k TileKind) String() string {
	switch k {
	case TileEmpty:
		return "empty"
	case TileNormal:
		return "normal"
	case TileStriped:
		return "striped"
	case TileWrapped:
		return "wrapped"
	case TileGiant:
		return "giant"
	case TileRainbow:
		return "rainbow"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Direction is the axis of a match group or a striped tile's clearing line
type Direction int

const (
	DirectionRow    Direction = iota // Horizontal
	DirectionColumn                  // Vertical
)

func (d Direction) String() string {
	if d == DirectionColumn {
		return "column"
	}
	return "row"
}

// Tile is the content of one board cell. The zero value is an empty cell.
type Tile struct {
	Kind        TileKind
	Color       int       // 0..PaletteSize-1; ignored for Empty and Rainbow
	Orientation Direction // Striped only
}

// Normal returns a plain tile of the given colour
func Normal(color int) Tile {
	return Tile{Kind: TileNormal, Color: color}
}

// Striped returns a striped tile that clears along the given orientation
func Striped(color int, orientation Direction) Tile {
	return Tile{Kind: TileStriped, Color: color, Orientation: orientation}
}

// Wrapped returns a wrapped tile of the given colour
func Wrapped(color int) Tile {
	return Tile{Kind: TileWrapped, Color: color}
}

// Giant returns a giant tile of the given colour
func Giant(color int) Tile {
	return Tile{Kind: TileGiant, Color: color}
}

// Rainbow returns the colourless rainbow tile
func Rainbow() Tile {
	return Tile{Kind: TileRainbow, Color: NoColor}
}

// IsEmpty reports whether the cell holds no tile
func (t Tile) IsEmpty() bool {
	return t.Kind == TileEmpty
}

// IsSpecial reports whether the tile is one of the power-up kinds
func (t Tile) IsSpecial() bool {
	return t.Kind != TileEmpty && t.Kind != TileNormal
}

// MatchColor returns the colour used for run detection.
// Empty and Rainbow tiles never take part in a run.
func (t Tile) MatchColor() (int, bool) {
	if t.Kind == TileEmpty || t.Kind == TileRainbow {
		return NoColor, false
	}
	return t.Color, true
}

// Code returns the compact integer encoding used on the wire and in storage:
// -1 empty, 0-4 normal, 5-9 striped row, 10-14 striped column, 15 rainbow,
// 16-20 wrapped, 21-25 giant.
func (t Tile) Code() int {
	switch t.Kind {
	case TileNormal:
		return t.Color
	case TileStriped:
		if t.Orientation == DirectionColumn {
			return 2*PaletteSize + t.Color
		}
		return PaletteSize + t.Color
	case TileRainbow:
		return 3 * PaletteSize
	case TileWrapped:
		return 3*PaletteSize + 1 + t.Color
	case TileGiant:
		return 4*PaletteSize + 1 + t.Color
	default:
		return -1
	}
}

// TileFromCode decodes a tile from its integer encoding
func TileFromCode(code int) (Tile, error) {
	switch {
	case code < -1 || code > 5*PaletteSize:
		return Tile{}, fmt.Errorf("%w: %d", ErrInvalidTileCode, code)
	case code == -1:
		return Tile{}, nil
	case code < PaletteSize:
		return Normal(code), nil
	case code < 2*PaletteSize:
		return Striped(code-PaletteSize, DirectionRow), nil
	case code < 3*PaletteSize:
		return Striped(code-2*PaletteSize, DirectionColumn), nil
	case code == 3*PaletteSize:
		return Rainbow(), nil
	case code <= 4*PaletteSize:
		return Wrapped(code - 3*PaletteSize - 1), nil
	default:
		return Giant(code - 4*PaletteSize - 1), nil
	}
}

func (t Tile) String() string {
	switch t.Kind {
	case TileEmpty:
		return "empty"
	case TileRainbow:
		return "rainbow"
	case TileStriped:
		return fmt.Sprintf("striped(%d,%s)", t.Color, t.Orientation)
	default:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Color)
	}
}
