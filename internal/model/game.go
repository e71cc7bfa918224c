package model

import (
	"fmt"
	"time"
)

// GameID uniquely identifies a game session
type GameID string

// GameStatus is whether a session still accepts swaps
type GameStatus string

const (
	GameStatusActive   GameStatus = "active"
	GameStatusFinished GameStatus = "finished"
)

// SessionState guards a session against overlapping swap resolution
type SessionState string

const (
	SessionIdle      SessionState = "idle"
	SessionResolving SessionState = "resolving" // A swap is mid-cascade
)

// DefaultMoves is the move budget of a new session
const DefaultMoves = 30

// Game is a single-player Courgette Crush session
type Game struct {
	ID       GameID
	PlayerID PlayerID
	Status   GameStatus
	State    SessionState

	Board *Board
	Seed  uint64 // Root of every random draw this session makes

	Score          int
	MovesRemaining int
	MovesUsed      int // Accepted swaps; reverted swaps do not count

	CreatedAt  time.Time
	UpdatedAt  time.Time
	FinishedAt time.Time
}

// IsFinished returns true once the session accepts no more swaps
func (g *Game) IsFinished() bool {
	return g.Status == GameStatusFinished
}

// Begin moves the session into the Resolving state ahead of a swap
func (g *Game) Begin() error {
	switch {
	case g.IsFinished():
		return ErrGameFinished
	case g.State == SessionResolving:
		return ErrSessionBusy
	case g.MovesRemaining <= 0:
		return ErrNoMovesRemaining
	}
	g.State = SessionResolving
	return nil
}

// End returns the session to Idle
func (g *Game) End() {
	g.State = SessionIdle
}

// ApplyOutcome folds a resolved swap into the session totals.
// A reverted outcome changes nothing. Applying an accepted outcome with no
// moves left is a caller bug and panics.
func (g *Game) ApplyOutcome(outcome Outcome, now time.Time) {
	if outcome.Reverted {
		return
	}
	if g.MovesRemaining <= 0 {
		panic(fmt.Sprintf("game %s: outcome applied with no moves remaining", g.ID))
	}
	g.Score += outcome.ScoreDelta
	g.MovesRemaining--
	g.MovesUsed++
	g.UpdatedAt = now
	if g.MovesRemaining == 0 {
		g.Finish(now)
	}
}

// Finish closes the session
func (g *Game) Finish(now time.Time) {
	if g.IsFinished() {
		return
	}
	g.Status = GameStatusFinished
	g.FinishedAt = now
	g.UpdatedAt = now
}

// Clone returns a deep copy, so a stored session is never aliased by a caller
func (g *Game) Clone() *Game {
	c := *g
	if g.Board != nil {
		c.Board = g.Board.Clone()
	}
	return &c
}
