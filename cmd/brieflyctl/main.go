// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command brieflyctl is the operator CLI.
//
// It reads the same environment as the API server and talks to PostgreSQL
// and Redis directly:
//
//	brieflyctl migrate up
//	brieflyctl migrate version
//	brieflyctl generation enqueue --book <id> --requested-by <user> [--reading-time 15] [--tone casual]
//	brieflyctl generation process-once [--book <id>]
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/taibuivan/briefly/internal/platform/config"
)

// app carries what every subcommand needs. Connections are opened lazily by
// the subcommands that need them.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	context, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(context); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	state := &app{}
	var verbose bool

	root := &cobra.Command{
		Use:           "brieflyctl",
		Short:         "Operate a Briefly deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			state.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			state.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newMigrateCommand(state), newGenerationCommand(state))
	return root
}
