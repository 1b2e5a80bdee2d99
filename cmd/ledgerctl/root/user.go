package root

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskledger/internal/service"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd())
	return cmd
}

func newUserCreateCmd() *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a user and seed the preset categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Handle == "" || in.Password == "" {
				return errors.New("--handle and --password are required")
			}
			a, cleanup, err := openApp()
			if err != nil {
				return err
			}
			defer cleanup()

			user, err := a.auth.Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", user.ID, user.Handle)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Handle, "handle", "", "Unique handle (3-64 characters)")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (at least 8 characters)")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "Display name (defaults to the handle)")
	cmd.Flags().StringVar(&in.Role, "role", "user", "Role tag")
	return cmd
}
