package mcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"oot/internal/app"
	"oot/internal/config"
	"oot/internal/domain"
)

func setupEngine(t *testing.T) *app.App {
	t.Helper()
	vault := t.TempDir()
	files := map[string]string{
		"Root.md":    "# Root\n",
		"notes/A.md": "---\nextends: \"[[Root]]\"\n---\n",
		"notes/B.md": "---\nextends: \"[[A|alias]]\"\n---\n",
		"Lost.md":    "---\nextends: \"[[Missing]]\"\n---\n",
	}
	for name, content := range files {
		p := filepath.Join(vault, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	d := domain.DefaultSettings()
	cfg := config.Config{
		Vault:              vault,
		PropertyName:       d.PropertyName,
		SoftExclusionGrace: d.SoftExclusionGrace,
		DeletionPolicy:     string(d.DeletionPolicy),
		StateBackend:       config.BackendJSON,
	}
	a, err := app.Open(cfg, app.NewLogger(io.Discard, false))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := a.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	if err != nil {
		t.Fatalf("handler returned a protocol error: %v", err)
	}
	if len(res.Content) == 0 {
		t.Fatal("expected content in the tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return text.Text, res.IsError
}

func TestReadTools(t *testing.T) {
	a := setupEngine(t)

	tests := []struct {
		name    string
		handler server.ToolHandlerFunc
		args    map[string]any
		want    string
		isError bool
	}{
		{
			name:    "get_record",
			handler: getRecordHandler(a.Engine),
			args:    map[string]any{"path": "notes/B.md"},
			want:    "chain: Root.md > notes/A.md > notes/B.md",
		},
		{
			name:    "get_record missing",
			handler: getRecordHandler(a.Engine),
			args:    map[string]any{"path": "Nope.md"},
			want:    "not found",
			isError: true,
		},
		{
			name:    "get_record without path",
			handler: getRecordHandler(a.Engine),
			args:    map[string]any{},
			want:    "path is required",
			isError: true,
		},
		{
			name:    "is_ancestor true",
			handler: isAncestorHandler(a.Engine),
			args:    map[string]any{"ancestor": "Root.md", "path": "notes/B.md"},
			want:    "true",
		},
		{
			name:    "is_ancestor false",
			handler: isAncestorHandler(a.Engine),
			args:    map[string]any{"ancestor": "notes/B.md", "path": "Root.md"},
			want:    "false",
		},
		{
			name:    "error_state none",
			handler: errorStateHandler(a.Engine),
			args:    map[string]any{"path": "notes/A.md"},
			want:    "none",
		},
		{
			name:    "error_state recorded",
			handler: errorStateHandler(a.Engine),
			args:    map[string]any{"path": "Lost.md"},
			want:    "parent-not-found",
		},
		{
			name:    "list_errors",
			handler: listErrorsHandler(a.Engine),
			args:    map[string]any{},
			want:    "Lost.md  parent-not-found",
		},
		{
			name:    "object_by_link",
			handler: objectByLinkHandler(a.Engine),
			args:    map[string]any{"link": "[[A]]"},
			want:    "path: notes/A.md",
		},
		{
			name:    "object_by_link rejects plain text",
			handler: objectByLinkHandler(a.Engine),
			args:    map[string]any{"link": "A"},
			want:    "[[Link]]",
			isError: true,
		},
		{
			name:    "tree",
			handler: treeHandler(a.Engine),
			args:    map[string]any{"root": "Root.md"},
			want:    "notes/B.md",
		},
		{
			name:    "search",
			handler: searchHandler(a.Engine),
			args:    map[string]any{"query": "lost"},
			want:    "Lost.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isError := callTool(t, tt.handler, tt.args)
			if isError != tt.isError {
				t.Fatalf("expected isError=%v, got %v (%s)", tt.isError, isError, text)
			}
			if !strings.Contains(text, tt.want) {
				t.Errorf("expected %q in:\n%s", tt.want, text)
			}
		})
	}
}

func TestWriteTools(t *testing.T) {
	a := setupEngine(t)

	text, isError := callTool(t, synchronizeHandler(a.Engine), map[string]any{})
	if isError || !strings.HasPrefix(text, "Synchronized 4 documents") {
		t.Errorf("unexpected synchronize result %q", text)
	}

	// Point Lost.md at an existing parent behind the engine's back.
	p := filepath.Join(a.Config.Vault, "Lost.md")
	if err := os.WriteFile(p, []byte("---\nextends: \"[[Root]]\"\n---\n"), 0644); err != nil {
		t.Fatalf("failed to write: %v", err)
	}
	text, isError = callTool(t, reconcileHandler(a.Engine, a.Engine), map[string]any{"path": "Lost.md"})
	if isError {
		t.Fatalf("reconcile failed: %s", text)
	}
	if text != "Reconciled Lost.md: Root > Lost" {
		t.Errorf("unexpected reconcile result %q", text)
	}

	text, isError = callTool(t, reconcileHandler(a.Engine, a.Engine), map[string]any{"path": "../etc.md"})
	if !isError {
		t.Errorf("expected an escaping path to be rejected, got %q", text)
	}
}

func TestRegisterTools(t *testing.T) {
	a := setupEngine(t)
	s := server.NewMCPServer("oot-mcp", "test", server.WithToolCapabilities(true))
	RegisterReadTools(s, a.Engine)
	RegisterWriteTools(s, a.Engine, a.Engine)

	tools := s.ListTools()
	for _, name := range []string{"get_record", "is_ancestor", "error_state", "list_errors", "object_by_link", "tree", "search", "synchronize", "reconcile"} {
		if _, ok := tools[name]; !ok {
			t.Errorf("expected tool %s to be registered", name)
		}
	}
}
