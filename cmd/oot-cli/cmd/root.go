package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"oot/internal/app"
	"oot/internal/application/reconcile"
	"oot/internal/config"
)

var (
	cfgFile    string
	vaultPath  string
	verbose    bool
	vault      *app.App
	startStats *reconcile.SyncStats
)

var rootCmd = &cobra.Command{
	Use:   "oot-cli",
	Short: "Inspect and maintain the extends hierarchy of a vault",
	Long: `oot-cli maintains a cache of the "extends" hierarchy of an Obsidian vault.

Every document may declare a parent in its frontmatter:

  ---
  extends: "[[Parent]]"
  ---

The cache stores each document's parent, children and full ancestor chain,
and records why a declaration was rejected (bad link, self reference,
missing or ignored parent, cycle). Every command loads the cache and
synchronizes it with the vault before running.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		if err := config.Init(cfgFile); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		vault, err = app.Open(cfg, app.NewLogger(os.Stderr, cfg.Verbose))
		if err != nil {
			return err
		}
		startStats, err = vault.Start(cmd.Context())
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if vault == nil {
			return nil
		}
		return vault.Close(context.Background())
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .oot.yaml in the working directory or home)")
	rootCmd.PersistentFlags().StringVarP(&vaultPath, "vault", "v", "", "path to the vault (default "+config.DefaultVaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	_ = viper.BindPFlag("vault", rootCmd.PersistentFlags().Lookup("vault"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// GetApp returns the initialized application
func GetApp() *app.App {
	return vault
}
