// Copyright (c) 2026 Briefly. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/briefly/internal/platform/migration"
)

func newMigrateCommand(state *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, args []string) error {
				if err := migration.RunUp(state.cfg.DatabaseURL, state.cfg.MigrationPath, state.logger); err != nil {
					return err
				}
				fmt.Fprintln(command.OutOrStdout(), "migrations applied")
				return nil
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(command *cobra.Command, args []string) error {
				version, dirty, err := migration.Version(state.cfg.DatabaseURL, state.cfg.MigrationPath, state.logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(command.OutOrStdout(), "version=%d dirty=%t\n", version, dirty)
				return nil
			},
		},
	)

	return command
}
