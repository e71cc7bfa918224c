package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mcoot/courgette-crush/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case GameList:
		o.printGameList(v)
	case SwapResult:
		o.printSwapResult(v)
	case EndResult:
		o.printEndResult(v)
	case Hint:
		o.printHint(v)
	case AutoPlayResult:
		o.printAutoPlayResult(v)
	case HighScore:
		o.printHighScore(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Game response type. Board holds tile codes.
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
	FinishedAt     *time.Time `json:"finished_at,omitempty"`
}

// GameList response type
type GameList struct {
	Games []Game `json:"games"`
}

// Cell is a board coordinate
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Outcome response type
type Outcome struct {
	Reverted   bool `json:"reverted"`
	ScoreDelta int  `json:"score_delta"`
	Iterations int  `json:"iterations"`
}

// SwapResult response type
type SwapResult struct {
	Game         Game    `json:"game"`
	Outcome      Outcome `json:"outcome"`
	Shuffled     bool    `json:"shuffled"`
	NewHighScore bool    `json:"new_high_score"`
}

// EndResult response type
type EndResult struct {
	Game         Game `json:"game"`
	NewHighScore bool `json:"new_high_score"`
}

// Hint response type
type Hint struct {
	Strategy string `json:"strategy"`
	From     Cell   `json:"from"`
	To       Cell   `json:"to"`
}

// AutoPlayResult response type
type AutoPlayResult struct {
	Game         Game      `json:"game"`
	Moves        []Outcome `json:"moves"`
	ScoreDelta   int       `json:"score_delta"`
	NewHighScore bool      `json:"new_high_score"`
}

// HighScore response type
type HighScore struct {
	PlayerID    string    `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Score       int       `json:"score"`
	GameID      string    `json:"game_id"`
	AchievedAt  time.Time `json:"achieved_at"`
}

// Leaderboard response type
type Leaderboard struct {
	Entries []HighScore `json:"entries"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
	if !a.ExpiresAt.IsZero() {
		fmt.Fprintf(o.w, "Expires: %s\n", a.ExpiresAt.Format(time.RFC3339))
	}
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.ID, g.Status)
	fmt.Fprintf(o.w, "Score: %d\n", g.Score)
	fmt.Fprintf(o.w, "Moves: %d remaining, %d used\n", g.MovesRemaining, g.MovesUsed)
	fmt.Fprintf(o.w, "Seed: %d\n", g.Seed)
	fmt.Fprintln(o.w)
	_, _ = io.WriteString(o.w, FormatBoard(g.Board))
}

func (o *Output) printGameList(l GameList) {
	if len(l.Games) == 0 {
		fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range l.Games {
		fmt.Fprintf(o.w, "%s  %-8s  score %-6d  moves left %d\n", g.ID, g.Status, g.Score, g.MovesRemaining)
	}
}

func (o *Output) printSwapResult(r SwapResult) {
	if r.Outcome.Reverted {
		fmt.Fprintln(o.w, "No match - tiles swapped back")
	} else {
		fmt.Fprintf(o.w, "+%d points over %d cascade(s)\n", r.Outcome.ScoreDelta, r.Outcome.Iterations)
	}
	if r.Shuffled {
		fmt.Fprintln(o.w, "No moves left - board shuffled")
	}
	if r.NewHighScore {
		fmt.Fprintln(o.w, "New high score!")
	}
	o.printGame(r.Game)
}

func (o *Output) printEndResult(r EndResult) {
	fmt.Fprintf(o.w, "Game over. Final score: %d\n", r.Game.Score)
	if r.NewHighScore {
		fmt.Fprintln(o.w, "New high score!")
	}
}

func (o *Output) printHint(h Hint) {
	fmt.Fprintf(o.w, "Try %d %d %d %d (%s)\n", h.From.Row, h.From.Col, h.To.Row, h.To.Col, h.Strategy)
}

func (o *Output) printAutoPlayResult(r AutoPlayResult) {
	fmt.Fprintf(o.w, "Bot played %d swap(s) for +%d points\n", len(r.Moves), r.ScoreDelta)
	if r.NewHighScore {
		fmt.Fprintln(o.w, "New high score!")
	}
	o.printGame(r.Game)
}

func (o *Output) printHighScore(hs HighScore) {
	fmt.Fprintf(o.w, "High score: %d (game %s)\n", hs.Score, hs.GameID)
	fmt.Fprintf(o.w, "Achieved: %s\n", hs.AchievedAt.Format(time.RFC3339))
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l.Entries) == 0 {
		fmt.Fprintln(o.w, "No scores yet")
		return
	}
	for i, e := range l.Entries {
		fmt.Fprintf(o.w, "%3d. %-20s %d\n", i+1, e.DisplayName, e.Score)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
}

const colorGlyphs = "ABCDE"

// FormatBoard renders tile codes as a text grid with row and column
// indices. Each cell shows its colour letter and a marker for specials:
// '-' and '|' for striped, '#' wrapped, '*' giant, '@' rainbow.
func FormatBoard(codes [][]int) string {
	if len(codes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for c := range codes[0] {
		fmt.Fprintf(&sb, "%3d", c)
	}
	sb.WriteString("\n")

	for r, row := range codes {
		fmt.Fprintf(&sb, "%3d", r)
		for _, code := range row {
			sb.WriteString(" ")
			sb.WriteString(cellGlyph(code))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cellGlyph(code int) string {
	tile, err := model.TileFromCode(code)
	if err != nil {
		return "??"
	}

	color := " "
	if c, ok := tile.MatchColor(); ok && c < len(colorGlyphs) {
		color = string(colorGlyphs[c])
	}

	switch tile.Kind {
	case model.TileEmpty:
		return " ."
	case model.TileRainbow:
		return " @"
	case model.TileStriped:
		if tile.Orientation == model.DirectionRow {
			return color + "-"
		}
		return color + "|"
	case model.TileWrapped:
		return color + "#"
	case model.TileGiant:
		return color + "*"
	default:
		return " " + color
	}
}
