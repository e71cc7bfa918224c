package model

// Group is a maximal straight run of three or more same-coloured tiles,
// or a synthetic group produced by a special-tile combination
type Group struct {
	Cells     []Position // Ordered along the run
	Direction Direction
	Color     int // NoColor for synthetic groups
}

// Len returns the number of cells in the group
func (g Group) Len() int {
	return len(g.Cells)
}

// Contains returns true if the group covers the given position
func (g Group) Contains(pos Position) bool {
	for _, c := range g.Cells {
		if c == pos {
			return true
		}
	}
	return false
}
