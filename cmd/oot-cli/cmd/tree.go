package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var treeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Display the extends forest",
	Long: `Display every extends tree of the vault, or the subtree under one document.

Examples:
  oot-cli tree
  oot-cli tree Projects.md`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := ""
		if len(args) == 1 {
			root = args[0]
		}
		treeCmd := commands.NewTreeCommand(GetApp().Engine, root)
		out, err := treeCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
}
