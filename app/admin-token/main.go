// Command admin-token issues bearer tokens for the experiment admin API.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin-token",
		Short:        "Manage admin tokens for the landing API",
		SilenceUsage: true,
	}
	root.AddCommand(newIssueCmd())
	return root
}
