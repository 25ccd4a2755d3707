package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/viper"

	"oot/internal/adapters/editor"
	"oot/internal/adapters/obsidian"
	"oot/internal/adapters/tui"
	"oot/internal/adapters/tui/views"
	"oot/internal/adapters/watcher"
	"oot/internal/app"
	"oot/internal/application/reconcile"
	"oot/internal/config"
	"oot/internal/domain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgFile := flag.String("config", "", "config file (default is .oot.yaml in the working directory or home)")
	vaultFlag := flag.String("vault", "", "path to the vault (default "+config.DefaultVaultPath+")")
	watch := flag.Bool("watch", true, "follow file system events while the browser is open")
	flag.Parse()

	if err := config.Init(*cfgFile); err != nil {
		return err
	}
	if *vaultFlag != "" {
		viper.Set("vault", *vaultFlag)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the browser; verbose logs go to a file.
	var logOut io.Writer = io.Discard
	if cfg.Verbose {
		f, err := tea.LogToFile(filepath.Join(os.TempDir(), "oot.log"), "")
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	logger := app.NewLogger(logOut, cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())
	if _, err := a.Start(ctx); err != nil {
		return err
	}

	model := tui.NewApp(a.Engine, a.Engine, cfg.PropertyName,
		tui.WithEditor(editor.NewOpener(cfg.Vault)),
		tui.WithObsidian(obsidian.NewOpener(cfg.Vault)),
	)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if *watch {
		w, err := watcher.New(cfg.Vault, watcher.WithLogger(logger))
		if err != nil {
			return err
		}
		if err := w.Start(); err != nil {
			return err
		}
		defer w.Stop()

		go a.Engine.Run(ctx, w.Events, func(ev domain.Event, res reconcile.Result) {
			if res.Status != reconcile.StatusIgnored {
				p.Send(views.VaultChangedMsg{})
			}
		})
	}

	_, err = p.Run()
	return err
}
