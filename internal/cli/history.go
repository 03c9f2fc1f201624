package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AaronLay10/pointclick/internal/config"
	"github.com/AaronLay10/pointclick/internal/storage/postgres"
)

// NewHistoryCommand creates the history command, which lists events persisted by the
// postgres backend.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:          "history",
		Short:        "Print recent events recorded for the game",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadGameConfig(rootOpts.Config)
			if err != nil {
				return err
			}
			if cfg.Storage.Backend != config.BackendPostgres {
				return fmt.Errorf("history needs the %s backend, game uses %s", config.BackendPostgres, cfg.Storage.Backend)
			}

			client, err := postgres.New(cmd.Context(), cfg.Storage.Postgres, cfg.Game.ID)
			if err != nil {
				return err
			}
			defer client.Close()

			rows, err := client.Query(cmd.Context(), limit)
			if err != nil {
				return err
			}
			// Query returns newest first.
			for i := len(rows) - 1; i >= 0; i-- {
				r := rows[i]
				session := ""
				if r.SessionID != nil {
					session = *r.SessionID
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-5s %-22s %s %v\n",
					r.Timestamp.Format("2006-01-02T15:04:05"), r.Level, r.Event, session, r.Fields)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "number of events to show")
	return cmd
}
