package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the engine version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "pointclick %s\n", version.Version)
			return err
		},
	}
}
