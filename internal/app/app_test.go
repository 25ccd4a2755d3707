package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"oot/internal/config"
	"oot/internal/domain"
)

func setupVault(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"Root.md":        "# Root\n",
		"notes/A.md":     "---\nextends: \"[[Root]]\"\n---\n",
		"notes/B.md":     "---\nextends: \"[[A]]\"\n---\n",
		"Broken.md":      "---\nextends: Root\n---\n",
		"assets/x.png":   "png",
		".obsidian/x.md": "hidden",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func testConfig(vault, backend string) config.Config {
	d := domain.DefaultSettings()
	cfg := config.Config{
		Vault:              vault,
		PropertyName:       d.PropertyName,
		SoftExclusionGrace: d.SoftExclusionGrace,
		DeletionPolicy:     string(d.DeletionPolicy),
		StateBackend:       backend,
	}
	if backend == config.BackendSQLite {
		cfg.StatePath = filepath.Join(vault, ".oot", "state.db")
	}
	return cfg
}

func TestOpen_RejectsMissingVault(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "nope"), config.BackendJSON)
	if _, err := Open(cfg, NewLogger(io.Discard, false)); err == nil {
		t.Error("expected an error for a missing vault")
	}
}

func TestApp_StartAndReopen(t *testing.T) {
	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			vault := setupVault(t)
			cfg := testConfig(vault, backend)
			ctx := context.Background()

			a, err := Open(cfg, NewLogger(io.Discard, false))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			stats, err := a.Start(ctx)
			if err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			if stats.Tracked != 4 {
				t.Errorf("expected 4 tracked documents, got %d", stats.Tracked)
			}

			b, err := a.Engine.Record("notes/B.md")
			if err != nil {
				t.Fatalf("Record failed: %v", err)
			}
			if b.Label() != "Root > A > B" {
				t.Errorf("expected Root > A > B, got %s", b.Label())
			}
			broken, err := a.Engine.Record("Broken.md")
			if err != nil {
				t.Fatalf("Record failed: %v", err)
			}
			if broken.Error != domain.ErrorInvalidLinkFormat {
				t.Errorf("expected invalid-link-format, got %v", broken.Error)
			}
			if err := a.Close(ctx); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			reopened, err := Open(cfg, NewLogger(io.Discard, false))
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer reopened.Close(ctx)
			if _, err := reopened.Start(ctx); err != nil {
				t.Fatalf("Start failed: %v", err)
			}
			broken, err = reopened.Engine.Record("Broken.md")
			if err != nil {
				t.Fatalf("Record failed: %v", err)
			}
			if broken.Error != domain.ErrorInvalidLinkFormat {
				t.Errorf("expected the persisted error to survive a restart, got %v", broken.Error)
			}
		})
	}
}

func TestNewLogger_Verbose(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, false).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug output to be suppressed, got %q", buf.String())
	}
	NewLogger(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected debug output, got %q", buf.String())
	}
}
