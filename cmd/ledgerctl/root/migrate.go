package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskledger/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			if reset || a.cfg.ResetDB {
				if err := db.Reset(a.db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "dropped all tables")
			}
			if err := db.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop every table before migrating")
	return cmd
}
