// Package cli implements the pointclick command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/save"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config     string
	Quiet      bool
	Migrations save.Registry
}

// NewRootCommand creates the root command for the pointclick CLI. Saves of each game are
// upgraded with the chain registered for its id in migrations, which may be nil.
func NewRootCommand(migrations save.Registry) *cobra.Command {
	opts := &RootOptions{Migrations: migrations}

	cmd := &cobra.Command{
		Use:   "pointclick",
		Short: "Point-and-click puzzle engine",
		Long:  "Plays, validates and manages saves for scene-graph puzzle games.",
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "game.yaml", "path to game.yaml")
	cmd.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "do not write events to stderr")

	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSavesCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}
