package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search tracked documents",
	Long: `Search tracked documents by name and path with fuzzy matching.

Example:
  oot-cli search roadmap`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		searchCmd := commands.NewSearchCommand(GetApp().Engine, args[0])
		results, err := searchCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results found")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%s\t%s\n", r.Record.Path, r.Record.Label())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
