package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// RegisterReadTools adds all read-only hierarchy tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, query reconcile.Query) {
	s.AddTool(getRecordTool(), getRecordHandler(query))
	s.AddTool(isAncestorTool(), isAncestorHandler(query))
	s.AddTool(errorStateTool(), errorStateHandler(query))
	s.AddTool(listErrorsTool(), listErrorsHandler(query))
	s.AddTool(objectByLinkTool(), objectByLinkHandler(query))
	s.AddTool(treeTool(), treeHandler(query))
	s.AddTool(searchTool(), searchHandler(query))
}

// --- get_record ---

func getRecordTool() mcp.Tool {
	return mcp.NewTool("get_record",
		mcp.WithDescription("Get the cached hierarchy record of a document: parent, children, ancestor chain and error state."),
		mcp.WithString("path",
			mcp.Description("Vault-relative document path (e.g. notes/Project.md)"),
			mcp.Required(),
		),
	)
}

func getRecordHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := commands.NewShowCommand(query, req.GetString("path", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatRecord(result.Record)), nil
	}
}

// --- is_ancestor ---

func isAncestorTool() mcp.Tool {
	return mcp.NewTool("is_ancestor",
		mcp.WithDescription("Check whether one document appears above another in its extends chain."),
		mcp.WithString("ancestor",
			mcp.Description("Path of the candidate ancestor"),
			mcp.Required(),
		),
		mcp.WithString("path",
			mcp.Description("Path of the descendant document"),
			mcp.Required(),
		),
	)
}

func isAncestorHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cmd := commands.NewIsAncestorCommand(query, req.GetString("ancestor", ""), req.GetString("path", ""))
		result, err := cmd.Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("%t\n%s", result.IsAncestor, result.Message)), nil
	}
}

// --- error_state ---

func errorStateTool() mcp.Tool {
	return mcp.NewTool("error_state",
		mcp.WithDescription("Get the inheritance error recorded for a document, if any."),
		mcp.WithString("path",
			mcp.Description("Vault-relative document path"),
			mcp.Required(),
		),
	)
}

func errorStateHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path := req.GetString("path", "")
		if path == "" {
			return toolError(fmt.Errorf("path is required"))
		}

		kind, err := query.ErrorState(path)
		if err != nil {
			return toolError(err)
		}
		if kind == domain.ErrorNone {
			return mcp.NewToolResultText("none"), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s: %s", kind, kind.Message())), nil
	}
}

// --- list_errors ---

func listErrorsTool() mcp.Tool {
	return mcp.NewTool("list_errors",
		mcp.WithDescription("List every document whose declared parent was rejected."),
	)
}

func listErrorsHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		entries, err := commands.NewListErrorsCommand(query).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return formatEntities(entries, formatErrorEntry)
	}
}

// --- object_by_link ---

func objectByLinkTool() mcp.Tool {
	return mcp.NewTool("object_by_link",
		mcp.WithDescription("Resolve a literal wiki link to the tracked document it points at."),
		mcp.WithString("link",
			mcp.Description("Literal link in the format [[Link]]"),
			mcp.Required(),
		),
	)
}

func objectByLinkHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		obj, err := commands.NewObjectByLinkCommand(query, req.GetString("link", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatRecord(obj.Record)), nil
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the extends forest, or the subtree under one document."),
		mcp.WithString("root",
			mcp.Description("Path of the subtree root. Omit to show every tree."),
		),
	)
}

func treeHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		out, err := commands.NewTreeCommand(query, req.GetString("root", "")).Execute(ctx)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(out), nil
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Fuzzy search tracked documents by name and path."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
	)
}

func searchHandler(query reconcile.Query) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		q := req.GetString("query", "")
		if q == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		results, err := commands.NewSearchCommand(query, q).Execute(ctx)
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}

		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s\n", r.Record.Path, r.Record.Label())
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatErrorEntry(e commands.ErrorEntry) string {
	return fmt.Sprintf("%s  %s  %s", e.Path, e.Kind, e.Message)
}

func formatRecord(rec *domain.Record) string {
	var sb strings.Builder
	parent := rec.Parent
	if parent == "" {
		parent = "(root)"
	}
	fmt.Fprintf(&sb, "path: %s\n", rec.Path)
	fmt.Fprintf(&sb, "parent: %s\n", parent)
	fmt.Fprintf(&sb, "chain: %s\n", strings.Join(rec.Chain, " > "))
	fmt.Fprintf(&sb, "children: %s\n", strings.Join(rec.Children, ", "))
	if rec.Error != domain.ErrorNone {
		fmt.Fprintf(&sb, "error: %s (%s)\n", rec.Error, rec.Error.Message())
	}
	if rec.IsSoftExcluded() {
		fmt.Fprintf(&sb, "soft_excluded_at: %s\n", rec.SoftExcludedAt.Format("2006-01-02T15:04:05Z07:00"))
	}
	return sb.String()
}
