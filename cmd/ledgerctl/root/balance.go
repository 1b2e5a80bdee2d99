package root

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newBalanceCmd() *cobra.Command {
	var userRef string
	var history int

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Print a user's derived balance and recent entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			user, err := a.resolveUser(ctx, userRef)
			if err != nil {
				return err
			}
			balance, err := a.ledger.Balance(ctx, user.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "balance: %d\n", balance)
			if history <= 0 {
				return nil
			}

			entries, err := a.ledger.History(ctx, user.ID, history)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tTYPE\tAMOUNT\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Type, e.Amount, e.Source)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User id or handle")
	cmd.Flags().IntVarP(&history, "history", "n", 0, "Also print the last n ledger entries")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
