package web_test

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/match"
)

// boardFromPage reads tile codes back out of a rendered board
func boardFromPage(t *testing.T, doc *goquery.Document) *model.Board {
	t.Helper()
	var codes [][]int
	doc.Find("#board tr").Each(func(_ int, row *goquery.Selection) {
		var line []int
		row.Find("td.tile").Each(func(_ int, cell *goquery.Selection) {
			raw, _ := cell.Attr("data-code")
			code, err := strconv.Atoi(raw)
			require.NoError(t, err)
			line = append(line, code)
		})
		codes = append(codes, line)
	})
	board, err := model.BoardFromCodes(codes)
	require.NoError(t, err)
	return board
}

// firingSwap finds the first right/down swap that lines up a run or moves a
// special tile
func firingSwap(t *testing.T, board *model.Board) (model.Position, model.Position) {
	t.Helper()
	for _, p := range board.Positions() {
		for _, q := range []model.Position{{Row: p.Row, Col: p.Col + 1}, {Row: p.Row + 1, Col: p.Col}} {
			if !board.InBounds(q) {
				continue
			}
			special := board.Get(p).IsSpecial() || board.Get(q).IsSpecial()
			board.Swap(p, q)
			found := special || match.HasGroups(board)
			board.Swap(p, q)
			if found {
				return p, q
			}
		}
	}
	t.Fatal("no firing swap on board")
	return model.Position{}, model.Position{}
}

func TestCreateGameRedirectsToPage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	id := ts.createGame(42)
	rr := ts.get("/games/" + id)
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "main#game")
	assert.Equal(t, 64, doc.Find("#board td.tile").Length())
	assertContainsText(t, doc, "#status .moves", "2")
	assertContainsText(t, doc, "#status .score", "0")
	assertContainsElement(t, doc, "form#swap")

	// The game is listed on the home page
	doc = parseHTML(ts.get("/").Body)
	assertContainsElement(t, doc, `#games a[href="/games/`+id+`"]`)
}

func TestCreateGameRejectsBadSeed(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")

	rr := ts.post("/games", url.Values{"seed": {"-5"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash.flash-error", "Seed")
}

func TestSpectatorSeesBoardWithoutControls(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	spectator := &webTestServer{t: t, handler: ts.handler, app: ts.app, cookies: newCookieJar()}

	rr := spectator.get("/games/" + id)
	require.Equal(t, http.StatusOK, rr.Code)
	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, "#board")
	assertNotContainsElement(t, doc, "form#swap")
}

func TestUnknownGameRendersNotFound(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/games/missing")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assertContainsText(t, parseHTML(rr.Body), "main.error", "Game not found")
}

func TestHTMXSwapReturnsFragments(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	board := boardFromPage(t, parseHTML(ts.get("/games/"+id).Body))
	a, b := firingSwap(t, board)

	rr := ts.postHTMX("/games/"+id+"/swap", swapForm(a, b))
	require.Equal(t, http.StatusOK, rr.Code)

	doc := parseHTML(rr.Body)
	assertContainsElement(t, doc, `#board-container[hx-swap-oob="true"] #board`)
	assertContainsElement(t, doc, `#status-container[hx-swap-oob="true"] #status`)
	assertContainsText(t, doc, "#status .moves", "1")
	assert.NotEqual(t, "0", doc.Find("#status .score").Text())
}

func TestPlainSwapRedirectsAndFinishesGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	for move := 0; move < 2; move++ {
		board := boardFromPage(t, parseHTML(ts.get("/games/"+id).Body))
		a, b := firingSwap(t, board)

		rr := ts.post("/games/"+id+"/swap", swapForm(a, b))
		require.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/games/"+id, rr.Header().Get("Location"))
	}

	doc := parseHTML(ts.get("/games/" + id).Body)
	assertContainsElement(t, doc, "#status .finished")
	assertNotContainsElement(t, doc, "form#swap")

	doc = parseHTML(ts.get("/leaderboard").Body)
	assert.Equal(t, 1, doc.Find("tr.entry").Length())
	assertContainsText(t, doc, "tr.entry .name", "Alice")
}

func TestSwapErrorsFlashOnGamePage(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	// Not adjacent
	rr := ts.post("/games/"+id+"/swap", swapForm(model.Position{Row: 0, Col: 0}, model.Position{Row: 5, Col: 5}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash.flash-error", "Could not swap")

	// Missing fields, as htmx
	rr = ts.postHTMX("/games/"+id+"/swap", url.Values{"from_row": {"0"}})
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "/games/"+id, rr.Header().Get("HX-Redirect"))
}

func TestSwapOnSomeoneElsesGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	ts.cookies = newCookieJar()
	ts.createGuestPlayer("Mallory")

	rr := ts.post("/games/"+id+"/swap", swapForm(model.Position{Row: 0, Col: 0}, model.Position{Row: 0, Col: 1}))
	require.Equal(t, http.StatusSeeOther, rr.Code)
	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash.flash-error", model.ErrNotGameOwner.Error())
}

func TestEndGame(t *testing.T) {
	ts := newWebTestServer(t)
	ts.createGuestPlayer("Alice")
	id := ts.createGame(42)

	rr := ts.post("/games/"+id+"/end", nil)
	require.Equal(t, http.StatusSeeOther, rr.Code)

	doc := parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash.flash-info", "Final score: 0")
	assertContainsElement(t, doc, "#status .finished")
	assertNotContainsElement(t, doc, "form#end")

	// Ending twice is an error
	rr = ts.post("/games/"+id+"/end", nil)
	doc = parseHTML(ts.followRedirect(rr).Body)
	assertContainsText(t, doc, ".flash.flash-error", "Could not end game")
}

func TestLeaderboardEmpty(t *testing.T) {
	ts := newWebTestServer(t)

	rr := ts.get("/leaderboard")
	require.Equal(t, http.StatusOK, rr.Code)
	assertContainsElement(t, parseHTML(rr.Body), "p.empty")
}
