package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/viper"

	mcpadapter "oot/internal/adapters/mcp"
	"oot/internal/adapters/watcher"
	"oot/internal/app"
	"oot/internal/config"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is .oot.yaml in the working directory or home)")
	vaultFlag := flag.String("vault", "", "path to the vault (default "+config.DefaultVaultPath+")")
	watch := flag.Bool("watch", true, "keep the cache in sync with file system events")
	flag.Parse()

	if err := config.Init(*cfgFile); err != nil {
		log.Fatalf("oot-mcp: %v", err)
	}
	if *vaultFlag != "" {
		viper.Set("vault", *vaultFlag)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("oot-mcp: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol.
	logger := app.NewLogger(os.Stderr, cfg.Verbose)
	a, err := app.Open(cfg, logger)
	if err != nil {
		log.Fatalf("oot-mcp: %v", err)
	}
	defer a.Close(context.Background())
	if _, err := a.Start(ctx); err != nil {
		log.Fatalf("oot-mcp: %v", err)
	}

	if *watch {
		w, err := watcher.New(cfg.Vault, watcher.WithLogger(logger))
		if err != nil {
			log.Fatalf("oot-mcp: %v", err)
		}
		if err := w.Start(); err != nil {
			log.Fatalf("oot-mcp: %v", err)
		}
		defer w.Stop()
		go a.Engine.Run(ctx, w.Events, nil)
	}

	mcpServer := server.NewMCPServer(
		"oot-mcp",
		"0.1.0",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(
		mcp.NewTool("ping",
			mcp.WithDescription("Health check, returns pong"),
		),
		func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		},
	)

	mcpadapter.RegisterReadTools(mcpServer, a.Engine)
	mcpadapter.RegisterWriteTools(mcpServer, a.Engine, a.Engine)

	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
