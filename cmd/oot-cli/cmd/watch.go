package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"oot/internal/adapters/watcher"
	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
	"oot/internal/hierarchy"
)

var resyncInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the cache in sync while the vault changes",
	Long: `Synchronize the cache, then process file system events until interrupted.
Every rejected declaration is reported as it happens.

Moving or removing a folder is reported as one rename or deletion per
document it held. Changes the watcher cannot see, such as edits made while
it was not running, are picked up by the synchronizer pass --resync runs
periodically.

Examples:
  oot-cli watch
  oot-cli watch --resync 10m`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp()
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println(commands.FormatSyncStats(startStats))

		w, err := watcher.New(a.Config.Vault, watcher.WithLogger(a.Logger))
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		if err := w.Start(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
		defer w.Stop()

		cancel := a.Engine.Subscribe(func(c hierarchy.ErrorChange) {
			if c.Current != domain.ErrorNone {
				fmt.Printf("%s: %s\n", c.Path, c.Current.Message())
			} else {
				fmt.Printf("%s: resolved\n", c.Path)
			}
		})
		defer cancel()

		if resyncInterval > 0 {
			go resync(ctx, a.Engine, resyncInterval)
		}

		a.Logger.Info("watching vault", "vault", a.Config.Vault)
		err = a.Engine.Run(ctx, w.Events, func(ev domain.Event, res reconcile.Result) {
			a.Logger.Debug("handled event", "event", ev.Kind.String(), "path", ev.Path, "status", string(res.Status))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func resync(ctx context.Context, engine *reconcile.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := commands.NewSyncCommand(engine).Execute(ctx); err != nil && ctx.Err() == nil {
				fmt.Fprintln(os.Stderr, err)
			}
		}
	}
}

func init() {
	watchCmd.Flags().DurationVar(&resyncInterval, "resync", 0, "rerun the synchronizer at this interval (0 disables)")
	rootCmd.AddCommand(watchCmd)
}
