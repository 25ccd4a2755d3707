package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the cache with the vault",
	Long: `Reconcile every document of the vault against the cache and persist
the result. Records of documents that disappeared are soft-excluded, and
purged once their grace period has elapsed.

Example:
  oot-cli sync`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(commands.FormatSyncStats(startStats))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
