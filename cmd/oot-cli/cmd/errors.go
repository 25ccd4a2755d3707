package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "List documents whose declared parent was rejected",
	Long: `List every document with a recorded inheritance error and the reason.

Example:
  oot-cli errors`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		errorsCmd := commands.NewListErrorsCommand(GetApp().Engine)
		entries, err := errorsCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No inheritance errors")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%s\n", e.Path, e.Kind, e.Message)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(errorsCmd)
}
