package root

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage preset task categories",
	}
	cmd.AddCommand(newPresetsSeedCmd())
	return cmd
}

func newPresetsSeedCmd() *cobra.Command {
	var userRef string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the preset categories for a user if they have none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := a.resolveUser(cmd.Context(), userRef)
			if err != nil {
				return err
			}
			created, err := a.categories.SeedPresets(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d preset categories\n", created)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userRef, "user", "u", "", "User id or handle")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
