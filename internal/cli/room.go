package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var errNoRoom = errors.New("no room given; pass --room or join one first")

func roomCode() (string, error) {
	if cfg.Room == "" {
		return "", errNoRoom
	}
	return cfg.Room, nil
}

func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <code> <name>",
		Short: "Take a seat in a room",
		Long: `Join a room under a display name. The room is created if it does not exist.
The session token and room are saved to the token file for later commands.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Join(args[0], args[1])
			if err != nil {
				return err
			}

			if err := cfg.SaveToken(result.SessionToken, result.Room); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Show your view of the room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode()
			if err != nil {
				return err
			}
			result, err := client.State(code)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayCmd() *cobra.Command {
	var hidden bool

	cmd := &cobra.Command{
		Use:   "play <index>",
		Short: "Play a card from your hand",
		Long: `Play the card at the given position in your hand (0-based).
With --hidden the card is played face down; it still counts at its true rank.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil || index < 0 {
				return fmt.Errorf("index must be a non-negative number")
			}
			code, err := roomCode()
			if err != nil {
				return err
			}
			result, err := client.Play(code, index, hidden)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hidden, "hidden", false, "Play the card face down")

	return cmd
}

func newTrucoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "truco",
		Short: "Truco calls",
	}

	cmd.AddCommand(newTrucoActionCmd("call", "Call truco or raise a pending call", func(code string) (any, error) {
		return client.CallTruco(code)
	}))
	cmd.AddCommand(newTrucoActionCmd("accept", "Accept the pending call", func(code string) (any, error) {
		return client.RespondTruco(code, true)
	}))
	cmd.AddCommand(newTrucoActionCmd("refuse", "Refuse the pending call", func(code string) (any, error) {
		return client.RespondTruco(code, false)
	}))

	return cmd
}

func newTrucoActionCmd(use, short string, action func(code string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode()
			if err != nil {
				return err
			}
			result, err := action(code)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRoundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round",
		Short: "Round commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Deal the next round once the current one is over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode()
			if err != nil {
				return err
			}
			result, err := client.NewRound(code)
			if err != nil {
				return err
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	})

	return cmd
}

func newLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave your seat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := roomCode()
			if err != nil {
				return err
			}
			result, err := client.Leave(code)
			if err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return fmt.Errorf("failed to clear token: %w", err)
			}
			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
