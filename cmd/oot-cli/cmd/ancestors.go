package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <path>",
	Short: "List the ancestors of a document",
	Long: `List the ancestors of a document, nearest first.

Example:
  oot-cli ancestors notes/Task.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ancestorsCmd := commands.NewAncestorsCommand(GetApp().Engine, args[0])
		ancestors, err := ancestorsCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range ancestors {
			fmt.Println(p)
		}
		return nil
	},
}

var isAncestorCmd = &cobra.Command{
	Use:   "is-ancestor <ancestor> <path>",
	Short: "Check whether a document is an ancestor of another",
	Long: `Check whether <ancestor> appears above <path> in its ancestor chain.
The command exits with status 1 when it does not.

Example:
  oot-cli is-ancestor Root.md notes/Task.md`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		isAncestorCmd := commands.NewIsAncestorCommand(GetApp().Engine, args[0], args[1])
		result, err := isAncestorCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if !result.IsAncestor {
			return errNotAncestor
		}
		return nil
	},
}

var errNotAncestor = errors.New("not an ancestor")

func init() {
	rootCmd.AddCommand(ancestorsCmd)
	rootCmd.AddCommand(isAncestorCmd)
}
