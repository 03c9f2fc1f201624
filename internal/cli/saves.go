package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/save"
)

// NewSavesCommand creates the saves command group.
func NewSavesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saves",
		Short: "Inspect or clear the game's save slot",
	}
	cmd.AddCommand(newSavesShowCommand(rootOpts))
	cmd.AddCommand(newSavesClearCommand(rootOpts))
	return cmd
}

func newSavesShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Short:        "Print the stored payload",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, func(s *save.Versioned, key string) error {
				p, ok := s.Load(cmd.Context(), key)
				if !ok {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: empty\n", key)
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: v%d %s\n", key, p.V, p.Data)
				return err
			})
		},
	}
}

func newSavesClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Delete the stored payload",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, rootOpts, func(s *save.Versioned, key string) error {
				if !s.Clear(cmd.Context(), key) {
					return fmt.Errorf("failed to clear %s", key)
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: cleared\n", key)
				return err
			})
		},
	}
}

func withStore(cmd *cobra.Command, rootOpts *RootOptions, fn func(*save.Versioned, string) error) error {
	cfg, err := config.LoadGameConfig(rootOpts.Config)
	if err != nil {
		return err
	}
	b, err := openBackend(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer b.close()

	em := newEmitter(rootOpts, cmd.ErrOrStderr(), "", nil)
	return fn(save.New(b.kv, em), save.SlotKey(cfg.Game.ID))
}
