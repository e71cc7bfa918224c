package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/courgette-crush/internal/factory"
	"github.com/mcoot/courgette-crush/internal/model"
	"github.com/mcoot/courgette-crush/internal/services/bot"
	"github.com/mcoot/courgette-crush/internal/services/game"
)

const localHelp = "Enter swaps as: row1 col1 row2 col2 (\"hint\" for a suggestion, \"board\" to redraw, \"q\" to finish)"

func newLocalCmd() *cobra.Command {
	var seed uint64
	var moves int
	var strategy string

	cmd := &cobra.Command{
		Use:   "local",
		Short: "Play a game offline without a server",
		Long: `Play a single Courgette Crush session in-process.

Swaps are read from standard input, one per line, as four numbers:
row1 col1 row2 col2. The session ends when the move budget runs out,
on "q", or at the end of input. With --bot, a bot strategy plays the
whole session instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if moves < 0 {
				return fmt.Errorf("--moves must not be negative")
			}

			opts := game.CreateOptions{Moves: moves}
			if cmd.Flags().Changed("seed") {
				opts.Seed = &seed
			}
			out := NewOutput(cfg.Output, cmd.OutOrStdout())
			return playLocal(cmd.Context(), cmd.InOrStdin(), out, opts, strategy, localLogger())
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Board seed (random if unset)")
	cmd.Flags().IntVar(&moves, "moves", 0, "Move budget (default 30)")
	cmd.Flags().StringVar(&strategy, "bot", "", "Let a bot strategy play: greedy, random")

	return cmd
}

func localLogger() *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// playLocal runs one session against in-memory storage, reading swaps
// from in until the game finishes. A non-empty strategy plays the session
// with that bot instead of reading input.
func playLocal(ctx context.Context, in io.Reader, out *Output, opts game.CreateOptions, strategy string, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := factory.New(ctx, factory.Config{
		StorageType: factory.StorageTypeMemory,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	session, err := app.AuthService.CreateGuestPlayer(ctx, "local")
	if err != nil {
		return err
	}
	playerID := session.Player.ID

	g, err := app.GameController.CreateGame(ctx, playerID, opts)
	if err != nil {
		return err
	}

	if strategy != "" {
		out.Print(localGame(g))
		return autoPlayLocal(ctx, app, g.ID, playerID, strategy, out)
	}

	if out.format != "json" {
		out.PrintMessage(localHelp)
	}
	out.Print(localGame(g))

	scanner := bufio.NewScanner(in)
	for !g.IsFinished() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "q", "quit", "end":
			return endLocal(ctx, app.GameController, g.ID, playerID, out)
		case "board":
			out.Print(localGame(g))
			continue
		case "hint":
			move, err := app.BotService.Suggest(ctx, g.ID, playerID, bot.DefaultStrategy)
			if err != nil {
				out.PrintError(err)
				continue
			}
			out.Print(Hint{
				Strategy: bot.DefaultStrategy,
				From:     Cell{Row: move.From.Row, Col: move.From.Col},
				To:       Cell{Row: move.To.Row, Col: move.To.Col},
			})
			continue
		}

		coords, err := parseCoords(strings.Fields(line))
		if err != nil {
			out.PrintError(err)
			continue
		}

		result, err := app.GameController.Swap(ctx, g.ID, playerID,
			model.Position{Row: coords[0], Col: coords[1]},
			model.Position{Row: coords[2], Col: coords[3]})
		if err != nil {
			out.PrintError(err)
			continue
		}

		g = result.Game
		out.Print(localSwap(result))
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if g.IsFinished() {
		out.Print(EndResult{Game: localGame(g)})
		return nil
	}
	return endLocal(ctx, app.GameController, g.ID, playerID, out)
}

func autoPlayLocal(ctx context.Context, app *factory.App, id model.GameID, playerID model.PlayerID, strategy string, out *Output) error {
	results, err := app.BotService.AutoPlay(ctx, id, playerID, strategy, 0)
	for _, r := range results {
		out.Print(localSwap(r))
	}
	if err != nil {
		if len(results) == 0 {
			return err
		}
		out.PrintError(err)
	}

	g, err := app.GameController.GetGame(ctx, id)
	if err != nil {
		return err
	}
	if !g.IsFinished() {
		return endLocal(ctx, app.GameController, id, playerID, out)
	}
	newHigh := len(results) > 0 && results[len(results)-1].NewHighScore
	out.Print(EndResult{Game: localGame(g), NewHighScore: newHigh})
	return nil
}

func endLocal(ctx context.Context, gc *game.Controller, id model.GameID, playerID model.PlayerID, out *Output) error {
	result, err := gc.EndGame(ctx, id, playerID)
	if err != nil {
		return err
	}
	out.Print(EndResult{Game: localGame(result.Game), NewHighScore: result.NewHighScore})
	return nil
}

func localGame(g *model.Game) Game {
	lg := Game{
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
	}
	if !g.FinishedAt.IsZero() {
		t := g.FinishedAt
		lg.FinishedAt = &t
	}
	return lg
}

func localSwap(r *game.SwapResult) SwapResult {
	return SwapResult{
		Game: localGame(r.Game),
		Outcome: Outcome{
			Reverted:   r.Outcome.Reverted,
			ScoreDelta: r.Outcome.ScoreDelta,
			Iterations: r.Outcome.Iterations,
		},
		Shuffled:     r.Shuffled,
		NewHighScore: r.NewHighScore,
	}
}
