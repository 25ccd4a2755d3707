package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
)

// Maintainer is the engine surface the write tools drive.
type Maintainer interface {
	commands.Synchronizer
	commands.Reconciler
}

// RegisterWriteTools adds the maintenance tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, engine Maintainer, query reconcile.Query) {
	s.AddTool(synchronizeTool(), synchronizeHandler(engine))
	s.AddTool(reconcileTool(), reconcileHandler(engine, query))
}

// --- synchronize ---

func synchronizeTool() mcp.Tool {
	return mcp.NewTool("synchronize",
		mcp.WithDescription("Reconcile every document of the vault against the cache and persist the result."),
	)
}

func synchronizeHandler(engine Maintainer) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewSyncCommand(engine).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- reconcile ---

func reconcileTool() mcp.Tool {
	return mcp.NewTool("reconcile",
		mcp.WithDescription("Re-derive one document from its declared parent, ignoring the change throttle."),
		mcp.WithString("path",
			mcp.Description("Vault-relative document path"),
			mcp.Required(),
		),
	)
}

func reconcileHandler(engine Maintainer, query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewReconcileCommand(engine, query, req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}
