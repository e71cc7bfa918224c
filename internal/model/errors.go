package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")

	// Game errors
	ErrGameNotFound       = errors.New("game not found")
	ErrNotGameOwner       = errors.New("player does not own this game")
	ErrInvalidCoordinates = errors.New("swap coordinates must be two adjacent in-bounds cells")
	ErrSessionBusy        = errors.New("a swap is already being resolved for this game")
	ErrNoMovesRemaining   = errors.New("no moves remaining")
	ErrGameFinished       = errors.New("game is already finished")

	// Board errors
	ErrInvalidTileCode = errors.New("invalid tile code")
	ErrInvalidBoard    = errors.New("invalid board")

	// High score errors
	ErrHighScoreNotFound = errors.New("high score not found")
)
