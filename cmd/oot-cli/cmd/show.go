package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Show the cached record of a document",
	Long: `Show the parent, children, ancestor chain and error state of a document.

Examples:
  oot-cli show notes/Project.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		showCmd := commands.NewShowCommand(GetApp().Engine, args[0])
		result, err := showCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}

		rec := result.Record
		parent := rec.Parent
		if parent == "" {
			parent = "(root)"
		}
		fmt.Printf("Path:     %s\n", rec.Path)
		fmt.Printf("Parent:   %s\n", parent)
		fmt.Printf("Chain:    %s\n", result.Label)
		fmt.Printf("Children: %s\n", strings.Join(rec.Children, ", "))
		if !rec.LastSyncedAt.IsZero() {
			fmt.Printf("Synced:   %s\n", rec.LastSyncedAt.Format("2006-01-02 15:04:05"))
		}
		if rec.IsSoftExcluded() {
			fmt.Printf("Excluded: %s\n", rec.SoftExcludedAt.Format("2006-01-02 15:04:05"))
		}
		if result.Message != "" {
			fmt.Printf("Error:    %s (%s)\n", result.Message, rec.Error)
		}
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <[[Link]]>",
	Short: "Resolve a literal link to a tracked document",
	Long: `Resolve a wiki link the way a declared parent is resolved and show the
document it points at.

Examples:
  oot-cli link "[[Project]]"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		linkCmd := commands.NewObjectByLinkCommand(GetApp().Engine, args[0])
		obj, err := linkCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s\t%s\n", obj.Path, obj.Record.Label())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(linkCmd)
}
