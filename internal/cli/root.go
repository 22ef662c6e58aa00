package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "trucoctl",
		Short: "CLI tool for the truco server API",
		Long: `trucoctl is a CLI tool for playing truco against a running server.

It covers every seat action (join, play, truco calls, new rounds, leave) and
streams live room updates over SSE.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// --room wins over the room saved with the token
			room := cfg.Room
			if err := cfg.LoadToken(); err != nil {
				return err
			}
			if room != "" {
				cfg.Room = room
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			client.SetVerbose(cfg.Verbose)
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: TRUCO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: TRUCO_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: TRUCO_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVar(&cfg.Room, "room", cfg.Room, "Room code (env: TRUCO_ROOM)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newStateCmd())
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newTrucoCmd())
	rootCmd.AddCommand(newRoundCmd())
	rootCmd.AddCommand(newLeaveCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
