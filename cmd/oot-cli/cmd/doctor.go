package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"oot/internal/application/commands"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Verify the consistency of the cache",
	Long: `Check that parent, children and ancestor chains agree across the cache.

Example:
  oot-cli doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		doctorCmd := commands.NewDoctorCommand(GetApp().Engine)
		result, err := doctorCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		if result.Healthy {
			fmt.Println("Cache is consistent")
			return nil
		}
		for _, v := range result.Violations {
			fmt.Println(v)
		}
		return fmt.Errorf("%d violations found", len(result.Violations))
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
