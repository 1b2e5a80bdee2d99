package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const Version = "1.0.0"

// NewRootCmd builds the ledgerctl command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Operator tool for the task ledger",
		Long:          "ledgerctl runs migrations, manages users and inspects or repairs ledger state using the server's configuration.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newMigrateCmd(),
		newUserCmd(),
		newTokenCmd(),
		newPresetsCmd(),
		newBalanceCmd(),
		newReconcileCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error: "+err.Error())
		os.Exit(1)
	}
}
