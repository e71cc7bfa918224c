package model

// Drop records a tile falling from one cell to another during compaction
type Drop struct {
	From Position
	To   Position
}

// SpawnedTile records a tile written into a cell, either by refill or
// by a special tile being created
type SpawnedTile struct {
	Position Position
	Tile     Tile
}

// CascadeEvent describes a single removal/drop/refill pass of a cascade
type CascadeEvent struct {
	Iteration  int // 1-based
	Removed    []Position
	Dropped    []Drop
	Spawned    []SpawnedTile
	Special    *SpawnedTile // Only ever set on the first iteration
	ScoreDelta int
}

// Outcome is the result of resolving one swap
type Outcome struct {
	Reverted   bool // Swap produced nothing; board unchanged
	ScoreDelta int
	Events     []CascadeEvent
	Iterations int
}
