package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <path>",
	Short: "Re-derive one document from its declared parent",
	Long: `Validate the declared parent of a document again and update its record,
regardless of when it was last synced.

Examples:
  oot-cli reconcile notes/Project.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		reconcileCmd := commands.NewReconcileCommand(a.Engine, a.Engine, args[0])
		result, err := reconcileCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}
