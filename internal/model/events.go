package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventSwapResolved  EventType = "swap"
	EventGameFinished  EventType = "finished"
	EventBoardShuffled EventType = "shuffled"
)

// Event is the base structure for all session events pushed to watchers
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	PlayerID  PlayerID
	Payload   any // Type-specific data
}

// SwapResolvedPayload contains data for swap events
type SwapResolvedPayload struct {
	From           Position
	To             Position
	Outcome        Outcome
	Score          int
	MovesRemaining int
}

// GameFinishedPayload contains data for finished events
type GameFinishedPayload struct {
	FinalScore   int
	MovesUsed    int
	NewHighScore bool
}
