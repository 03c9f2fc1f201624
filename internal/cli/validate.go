package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/scene"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenes-file>",
		Short: "Check a scene graph for dangling targets and bad conditions",
		Long: `Load a .json or .yaml scene graph and report every choice whose target
does not exist, a missing start scene, and conditions or effects that do not parse.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := scene.LoadGraph(args[0])
			if err != nil {
				return err
			}
			choices := 0
			for _, sc := range g.Scenes {
				choices += len(sc.Choices)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "ok: %d scenes, %d choices, start %s\n",
				len(g.Scenes), choices, g.StartScene())
			return err
		},
	}
}
