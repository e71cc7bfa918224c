package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameNewCmd())
	cmd.AddCommand(newGameListCmd())
	cmd.AddCommand(newGameGetCmd())
	cmd.AddCommand(newGameSwapCmd())
	cmd.AddCommand(newGameEndCmd())
	cmd.AddCommand(newGameHintCmd())
	cmd.AddCommand(newGameAutoPlayCmd())

	return cmd
}

func newGameNewCmd() *cobra.Command {
	var seed uint64
	var moves int

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game",
		RunE: func(cmd *cobra.Command, args []string) error {
			if moves < 0 {
				return fmt.Errorf("--moves must not be negative")
			}

			req := map[string]any{}
			if cmd.Flags().Changed("seed") {
				req["seed"] = seed
			}
			if moves > 0 {
				req["moves"] = moves
			}
			var result Game

			if err := client.Post("/api/v1/games", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Board seed (random if unset)")
	cmd.Flags().IntVar(&moves, "moves", 0, "Move budget (server default if unset)")

	return cmd
}

func newGameListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your games",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result GameList

			if err := client.Get("/api/v1/games", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a game and its board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Game

			if err := client.Get(gamePath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameSwapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <id> <row1> <col1> <row2> <col2>",
		Short: "Swap two adjacent tiles",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			coords, err := parseCoords(args[1:])
			if err != nil {
				return err
			}

			req := map[string]Cell{
				"from": {Row: coords[0], Col: coords[1]},
				"to":   {Row: coords[2], Col: coords[3]},
			}
			var result SwapResult

			if err := client.Post(gamePath(args[0])+"/swap", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <id>",
		Short: "Finish a game early and record its score",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result EndResult

			if err := client.Delete(gamePath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newGameHintCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "hint <id>",
		Short: "Ask a bot strategy for the next swap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Hint

			path := gamePath(args[0]) + "/hint?strategy=" + url.QueryEscape(strategy)
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "greedy", "Strategy: greedy, random")

	return cmd
}

func newGameAutoPlayCmd() *cobra.Command {
	var strategy string
	var moves int

	cmd := &cobra.Command{
		Use:   "autoplay <id>",
		Short: "Let a bot play swaps on your game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if moves < 0 {
				return fmt.Errorf("--moves must not be negative")
			}

			req := map[string]any{"strategy": strategy, "moves": moves}
			var result AutoPlayResult

			if err := client.Post(gamePath(args[0])+"/autoplay", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "greedy", "Strategy: greedy, random")
	cmd.Flags().IntVar(&moves, "moves", 0, "Swaps to play (0 plays until the game ends)")

	return cmd
}

func gamePath(id string) string {
	return "/api/v1/games/" + url.PathEscape(id)
}

func parseCoords(args []string) ([4]int, error) {
	var coords [4]int
	if len(args) != len(coords) {
		return coords, fmt.Errorf("expected 4 coordinates, got %d", len(args))
	}
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return coords, fmt.Errorf("invalid coordinate %q: must be a number", arg)
		}
		coords[i] = n
	}
	return coords, nil
}
