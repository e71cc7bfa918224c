package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/testutil"
)

func TestWrapForOOBSwap(t *testing.T) {
	got := WrapForOOBSwap("board-container", "<table></table>")
	want := `<div id="board-container" hx-swap-oob="true"><table></table></div>`
	if got != want {
		t.Errorf("WrapForOOBSwap = %q, want %q", got, want)
	}
}

func testGame() *model.Game {
	return &model.Game{
		ID:             "GAME1",
		PlayerID:       "player1",
		Status:         model.GameStatusActive,
		Board:          model.MustBoardFromCodes([][]int{{0, 1, 2}, {3, 4, 0}, {1, 2, 3}}),
		Score:          60,
		MovesRemaining: 29,
	}
}

func TestRenderer_RenderEventSwap(t *testing.T) {
	event := model.Event{
		Type:   model.EventSwapResolved,
		GameID: "GAME1",
		Payload: model.SwapResolvedPayload{
			From:           model.Position{Row: 3, Col: 3},
			To:             model.Position{Row: 3, Col: 4},
			Outcome:        model.Outcome{ScoreDelta: 60, Iterations: 1},
			Score:          60,
			MovesRemaining: 29,
		},
	}

	msg, ok, err := NewRenderer().RenderEvent(event)
	if err != nil || !ok {
		t.Fatalf("RenderEvent: ok=%v err=%v", ok, err)
	}

	text := string(msg)
	if !strings.HasPrefix(text, "event: swap\ndata: ") || !strings.HasSuffix(text, "\n\n") {
		t.Fatalf("unexpected framing: %q", text)
	}

	var data struct {
		From           struct{ Row, Col int } `json:"from"`
		Score          int                    `json:"score"`
		MovesRemaining int                    `json:"moves_remaining"`
		Outcome        struct {
			ScoreDelta int `json:"score_delta"`
		} `json:"outcome"`
	}
	payload := strings.TrimSuffix(strings.TrimPrefix(text, "event: swap\ndata: "), "\n\n")
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if data.Score != 60 || data.MovesRemaining != 29 || data.Outcome.ScoreDelta != 60 || data.From.Col != 3 {
		t.Errorf("unexpected payload %+v", data)
	}
}

func TestRenderer_RenderEventUnknownPayload(t *testing.T) {
	_, ok, err := NewRenderer().RenderEvent(model.Event{Type: "other", Payload: 42})
	if err != nil || ok {
		t.Errorf("RenderEvent of unknown payload: ok=%v err=%v", ok, err)
	}
}

func TestBroadcaster_PublishSendsEventsThenBoard(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.RemoveHub("GAME1")
	hub := manager.GetOrCreateHub("GAME1")

	client := NewClient(hub, "player1")
	hub.Register(client)
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	game := testGame()
	game.Finish(time.Now())
	NewBroadcaster(manager, testutil.NopLogger()).Publish(context.Background(), game, model.Event{
		Type:    model.EventGameFinished,
		GameID:  game.ID,
		Payload: model.GameFinishedPayload{FinalScore: 60, MovesUsed: 1},
	})

	if got := receive(t, client); !strings.HasPrefix(got, "event: finished\n") || !strings.Contains(got, `"final_score":60`) {
		t.Errorf("first message = %q", got)
	}
	if got := receive(t, client); !strings.HasPrefix(got, "event: board\n") || !strings.Contains(got, `data-code="4"`) {
		t.Errorf("second message = %q", got)
	}
	if got := receive(t, client); !strings.HasPrefix(got, "event: status\n") || !strings.Contains(got, "Game over") {
		t.Errorf("third message = %q", got)
	}
}

func TestBroadcaster_NoHubDoesNotPanic(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	NewBroadcaster(manager, testutil.NopLogger()).Publish(context.Background(), testGame())
}

func TestServeSSE_StreamsInitialAndBroadcastMessages(t *testing.T) {
	manager := NewHubManager(testutil.NopLogger())
	defer manager.RemoveHub("GAME1")
	hub := manager.GetOrCreateHub("GAME1")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeSSE(w, r, hub, "player1", formatSSEMessage("snapshot", "{}"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() string {
		var lines []string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read failed: %v", err)
			}
			if line == "\n" {
				return strings.Join(lines, "")
			}
			lines = append(lines, line)
		}
	}

	if got := readEvent(); !strings.HasPrefix(got, "event: connected\n") {
		t.Errorf("first event = %q", got)
	}
	if got := readEvent(); got != "event: snapshot\ndata: {}\n" {
		t.Errorf("second event = %q", got)
	}

	waitFor(t, func() bool { return hub.ClientCount() == 1 })
	hub.BroadcastEvent("swap", `{"score":100}`)

	if got := readEvent(); got != "event: swap\ndata: {\"score\":100}\n" {
		t.Errorf("broadcast event = %q", got)
	}
}

func TestRenderer_RenderSnapshot(t *testing.T) {
	msg, err := NewRenderer().RenderSnapshot(testGame())
	if err != nil {
		t.Fatalf("RenderSnapshot: %v", err)
	}
	text := string(msg)
	if !strings.HasPrefix(text, "event: game\ndata: ") {
		t.Fatalf("unexpected framing: %q", text)
	}
	for _, want := range []string{`"id":"GAME1"`, `"board":[[0,1,2],[3,4,0],[1,2,3]]`, `"moves_remaining":29`} {
		if !strings.Contains(text, want) {
			t.Errorf("snapshot %q missing %s", text, want)
		}
	}
}
