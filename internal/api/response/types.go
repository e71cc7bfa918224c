package response

import (
	"time"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/auth"
	"github.com/mcoot/courgette-crush/internal/services/game"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Cell is a board coordinate
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// CellFromModel converts model.Position
func CellFromModel(p model.Position) Cell {
	return Cell{Row: p.Row, Col: p.Col}
}

func cells(ps []model.Position) []Cell {
	out := make([]Cell, len(ps))
	for i, p := range ps {
		out[i] = CellFromModel(p)
	}
	return out
}

// Game is a session snapshot. Board holds tile codes, row by row.
type Game struct {
	ID             string     `json:"id"`
	PlayerID       string     `json:"player_id"`
	Status         string     `json:"status"`
	State          string     `json:"state"`
	Rows           int        `json:"rows"`
	Cols           int        `json:"cols"`
	Board          [][]int    `json:"board"`
	Seed           uint64     `json:"seed"`
	Score          int        `json:"score"`
	MovesRemaining int        `json:"moves_remaining"`
	MovesUsed      int        `json:"moves_used"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	resp := Game{
		ID:             string(g.ID),
		PlayerID:       string(g.PlayerID),
		Status:         string(g.Status),
		State:          string(g.State),
		Rows:           g.Board.Rows,
		Cols:           g.Board.Cols,
		Board:          g.Board.Codes(),
		Seed:           g.Seed,
		Score:          g.Score,
		MovesRemaining: g.MovesRemaining,
		MovesUsed:      g.MovesUsed,
		CreatedAt:      g.CreatedAt,
		UpdatedAt:      g.UpdatedAt,
	}
	if !g.FinishedAt.IsZero() {
		t := g.FinishedAt
		resp.FinishedAt = &t
	}
	return resp
}

// GameList is the response for a player's sessions
type GameList struct {
	Games []Game `json:"games"`
}

// GameListFromModel converts a list of sessions
func GameListFromModel(games []*model.Game) GameList {
	list := GameList{Games: make([]Game, len(games))}
	for i, g := range games {
		list.Games[i] = GameFromModel(g)
	}
	return list
}

// Drop is a tile falling during compaction
type Drop struct {
	From Cell `json:"from"`
	To   Cell `json:"to"`
}

// Spawn is a tile written into a cell
type Spawn struct {
	Cell Cell   `json:"cell"`
	Code int    `json:"code"`
	Tile string `json:"tile"`
}

func spawnFromModel(s model.SpawnedTile) Spawn {
	return Spawn{Cell: CellFromModel(s.Position), Code: s.Tile.Code(), Tile: s.Tile.String()}
}

// CascadeEvent is one removal, drop and refill pass
type CascadeEvent struct {
	Iteration  int     `json:"iteration"`
	Removed    []Cell  `json:"removed"`
	Dropped    []Drop  `json:"dropped"`
	Spawned    []Spawn `json:"spawned"`
	Special    *Spawn  `json:"special,omitempty"`
	ScoreDelta int     `json:"score_delta"`
}

// Outcome is the result of one swap
type Outcome struct {
	Reverted   bool           `json:"reverted"`
	ScoreDelta int            `json:"score_delta"`
	Iterations int            `json:"iterations"`
	Events     []CascadeEvent `json:"events"`
}

// OutcomeFromModel converts model.Outcome
func OutcomeFromModel(o model.Outcome) Outcome {
	resp := Outcome{
		Reverted:   o.Reverted,
		ScoreDelta: o.ScoreDelta,
		Iterations: o.Iterations,
		Events:     make([]CascadeEvent, len(o.Events)),
	}
	for i, e := range o.Events {
		ev := CascadeEvent{
			Iteration:  e.Iteration,
			Removed:    cells(e.Removed),
			Dropped:    make([]Drop, len(e.Dropped)),
			Spawned:    make([]Spawn, len(e.Spawned)),
			ScoreDelta: e.ScoreDelta,
		}
		for j, d := range e.Dropped {
			ev.Dropped[j] = Drop{From: CellFromModel(d.From), To: CellFromModel(d.To)}
		}
		for j, s := range e.Spawned {
			ev.Spawned[j] = spawnFromModel(s)
		}
		if e.Special != nil {
			sp := spawnFromModel(*e.Special)
			ev.Special = &sp
		}
		resp.Events[i] = ev
	}
	return resp
}

// SwapResponse is the response for a swap
type SwapResponse struct {
	Game         Game    `json:"game"`
	Outcome      Outcome `json:"outcome"`
	Shuffled     bool    `json:"shuffled"`
	NewHighScore bool    `json:"new_high_score"`
}

// SwapResponseFromResult converts a controller swap result
func SwapResponseFromResult(r *game.SwapResult) SwapResponse {
	return SwapResponse{
		Game:         GameFromModel(r.Game),
		Outcome:      OutcomeFromModel(r.Outcome),
		Shuffled:     r.Shuffled,
		NewHighScore: r.NewHighScore,
	}
}

// EndGameResponse is the response for finishing a game early
type EndGameResponse struct {
	Game         Game `json:"game"`
	NewHighScore bool `json:"new_high_score"`
}

// HighScore is a player's best score
type HighScore struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	GameID      string    `json:"game_id"`
	AchievedAt  time.Time `json:"achieved_at"`
}

// HighScoreFromModel converts model.HighScore
func HighScoreFromModel(hs *model.HighScore) HighScore {
	return HighScore{
		PlayerID:    string(hs.PlayerID),
		DisplayName: hs.DisplayName,
		Score:       hs.Score,
		GameID:      string(hs.GameID),
		AchievedAt:  hs.AchievedAt,
	}
}

// Leaderboard is the response for the leaderboard
type Leaderboard struct {
	Entries []HighScore `json:"entries"`
}

// LeaderboardFromModel converts a ranked list of high scores
func LeaderboardFromModel(scores []*model.HighScore) Leaderboard {
	entries := make([]HighScore, len(scores))
	for i, hs := range scores {
		entries[i] = HighScoreFromModel(hs)
	}
	return Leaderboard{Entries: entries}
}

// SwapEvent is the data of a "swap" stream event
type SwapEvent struct {
	From           Cell    `json:"from"`
	To             Cell    `json:"to"`
	Outcome        Outcome `json:"outcome"`
	Score          int     `json:"score"`
	MovesRemaining int     `json:"moves_remaining"`
}

// FinishedEvent is the data of a "finished" stream event
type FinishedEvent struct {
	FinalScore   int  `json:"final_score"`
	MovesUsed    int  `json:"moves_used"`
	NewHighScore bool `json:"new_high_score"`
}

// ShuffledEvent is the data of a "shuffled" stream event
type ShuffledEvent struct {
	Board [][]int `json:"board"`
}

// EventData converts a session event into its stream payload. ok is false
// for event types with no stream form.
func EventData(e model.Event) (data any, ok bool) {
	switch p := e.Payload.(type) {
	case model.SwapResolvedPayload:
		return SwapEvent{
			From:           CellFromModel(p.From),
			To:             CellFromModel(p.To),
			Outcome:        OutcomeFromModel(p.Outcome),
			Score:          p.Score,
			MovesRemaining: p.MovesRemaining,
		}, true
	case model.GameFinishedPayload:
		return FinishedEvent{
			FinalScore:   p.FinalScore,
			MovesUsed:    p.MovesUsed,
			NewHighScore: p.NewHighScore,
		}, true
	case *model.Board:
		return ShuffledEvent{Board: p.Codes()}, true
	}
	return nil, false
}

// Hint is a suggested swap
type Hint struct {
	Strategy string `json:"strategy"`
	From     Cell   `json:"from"`
	To       Cell   `json:"to"`
}

// AutoPlayResponse summarises the swaps a bot played
type AutoPlayResponse struct {
	Game         Game      `json:"game"`
	Moves        []Outcome `json:"moves"`
	ScoreDelta   int       `json:"score_delta"`
	NewHighScore bool      `json:"new_high_score"`
}

// AutoPlayResponseFromResults converts the swap results of a bot run. The
// session snapshot is taken from the last result.
func AutoPlayResponseFromResults(results []*game.SwapResult) AutoPlayResponse {
	resp := AutoPlayResponse{Moves: make([]Outcome, len(results))}
	for i, r := range results {
		resp.Moves[i] = OutcomeFromModel(r.Outcome)
		resp.ScoreDelta += r.Outcome.ScoreDelta
		resp.NewHighScore = resp.NewHighScore || r.NewHighScore
	}
	if len(results) > 0 {
		resp.Game = GameFromModel(results[len(results)-1].Game)
	}
	return resp
}
