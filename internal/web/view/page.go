package view

import (
	"context"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/mcoot/courgette-crush/internal/model"
)

// FlashKind picks how a flash message is styled
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot message shown on the next page load
type Flash struct {
	Kind    FlashKind `json:"k"`
	Message string    `json:"m"`
}

// PageData is what every page shell needs
type PageData struct {
	Title  string
	Player *model.Player // nil when signed out
	Flash  *Flash
}

// layout wraps body in the shared page shell
func layout(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.print(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		title := "Courgette Crush"
		if data.Title != "" {
			title += " - " + data.Title
		}
		b.printf(`<title>%s</title>`, templ.EscapeString(title))
		b.print(`<link rel="stylesheet" href="/static/courgette.css">`)
		b.print(`<script src="https://unpkg.com/htmx.org@1.9.12"></script>`)
		b.print(`<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>`)
		b.print(`</head><body>`)

		b.print(`<nav><a href="/">Home</a> <a href="/leaderboard">Leaderboard</a>`)
		if data.Player != nil {
			b.printf(`<span class="player">%s</span>`, templ.EscapeString(data.Player.DisplayName))
			b.print(`<form class="logout" method="post" action="/auth/logout"><button type="submit">Sign out</button></form>`)
		}
		b.print(`</nav>`)

		if data.Flash != nil {
			b.printf(`<div class="flash flash-%s">%s</div>`,
				templ.EscapeString(string(data.Flash.Kind)), templ.EscapeString(data.Flash.Message))
		}
		if b.err != nil {
			return b.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		b.print(`</body></html>`)
		return b.err
	})
}

// HomePage offers sign-in while signed out, and new game plus the player's
// sessions once signed in
func HomePage(data PageData, next string, games []*model.Game) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.print(`<main id="home"><h1>Courgette Crush</h1>`)

		if data.Player == nil {
			b.print(`<form id="guest" method="post" action="/auth/guest">`)
			b.print(`<input type="text" name="display_name" placeholder="Your name" maxlength="20" required>`)
			b.printf(`<input type="hidden" name="next" value="%s">`, templ.EscapeString(next))
			b.print(`<button type="submit">Play as guest</button></form>`)

			b.print(`<form id="login" method="post" action="/auth/login">`)
			b.print(`<input type="text" name="username" placeholder="Username" required>`)
			b.print(`<input type="password" name="password" placeholder="Password" required>`)
			b.printf(`<input type="hidden" name="next" value="%s">`, templ.EscapeString(next))
			b.print(`<button type="submit">Sign in</button></form>`)
			b.print(`</main>`)
			return b.err
		}

		b.print(`<form id="new-game" method="post" action="/games">`)
		b.print(`<input type="number" name="seed" min="0" placeholder="Seed (optional)">`)
		b.print(`<button type="submit">New game</button></form>`)

		if len(games) > 0 {
			b.print(`<ul id="games">`)
			for _, g := range games {
				b.printf(`<li class="game" data-status="%s"><a href="/games/%s">%s</a> <span class="score">%d</span></li>`,
					templ.EscapeString(string(g.Status)), url.PathEscape(string(g.ID)),
					templ.EscapeString(string(g.ID)), g.Score)
			}
			b.print(`</ul>`)
		}
		b.print(`</main>`)
		return b.err
	})
	return layout(data, body)
}

// GamePage renders a session with a live stream subscription. Stream
// events swap the board and status out of band. The swap and end forms are
// only shown to the owner of an active session.
func GamePage(data PageData, game *model.Game) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		base := "/games/" + url.PathEscape(string(game.ID))
		b.printf(`<main id="game" data-game-id="%s" hx-ext="sse" sse-connect="%s">`,
			templ.EscapeString(string(game.ID)), templ.EscapeString(base+"/stream"))
		b.print(`<div class="stream" sse-swap="board,status" hx-swap="none"></div>`)
		b.print(`<h1>Courgette Crush</h1><div id="status-container">`)
		if b.err != nil {
			return b.err
		}
		if err := Status(game).Render(ctx, w); err != nil {
			return err
		}
		b.print(`</div><div id="board-container">`)
		if b.err != nil {
			return b.err
		}
		if err := Board(game.Board).Render(ctx, w); err != nil {
			return err
		}
		b.print(`</div>`)

		if data.Player != nil && data.Player.ID == game.PlayerID && !game.IsFinished() {
			b.printf(`<form id="swap" method="post" action="%s/swap" hx-post="%s/swap" hx-swap="none">`,
				templ.EscapeString(base), templ.EscapeString(base))
			for _, name := range []string{"from_row", "from_col", "to_row", "to_col"} {
				b.printf(`<input type="number" name="%s" min="0" required>`, name)
			}
			b.print(`<button type="submit">Swap</button></form>`)
			b.printf(`<form id="end" method="post" action="%s/end"><button type="submit">End game</button></form>`,
				templ.EscapeString(base))
		}
		b.print(`</main>`)
		return b.err
	})
	data.Title = string(game.ID)
	return layout(data, body)
}

// LeaderboardPage renders the top scores as an ordered table
func LeaderboardPage(data PageData, scores []*model.HighScore) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.print(`<main><h1>Leaderboard</h1>`)
		if len(scores) == 0 {
			b.print(`<p class="empty">No scores yet</p></main>`)
			return b.err
		}
		b.print(`<table id="leaderboard"><tbody>`)
		for i, hs := range scores {
			b.printf(`<tr class="entry" data-player-id="%s"><td class="rank">%d</td><td class="name">%s</td><td class="score">%d</td></tr>`,
				templ.EscapeString(string(hs.PlayerID)), i+1, templ.EscapeString(hs.DisplayName), hs.Score)
		}
		b.print(`</tbody></table></main>`)
		return b.err
	})
	data.Title = "Leaderboard"
	return layout(data, body)
}

// ErrorPage renders a short error message
func ErrorPage(data PageData, status int, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		b := &writer{w: w}
		b.printf(`<main class="error" data-status="%d"><h1>Error</h1><p>%s</p><p><a href="/">Return to home</a></p></main>`,
			status, templ.EscapeString(message))
		return b.err
	})
	data.Title = "Error"
	return layout(data, body)
}
