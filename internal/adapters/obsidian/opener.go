package obsidian

import (
	"fmt"
	"net/url"
	"os/exec"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"oot/internal/domain"
	"oot/internal/ports"
)

var _ ports.ObsidianOpener = (*Opener)(nil)

// Opener implements ports.ObsidianOpener
type Opener struct {
	vaultName string
	run       func(uri string) error
}

// NewOpener creates a new Obsidian opener for the given vault path. The
// host application names a vault after its directory.
func NewOpener(vaultPath string) *Opener {
	return &Opener{
		vaultName: filepath.Base(filepath.Clean(vaultPath)),
		run:       openURI,
	}
}

// OpenDocument opens a document in Obsidian using the obsidian:// URI scheme
func (o *Opener) OpenDocument(docPath string) error {
	uri, err := o.BuildURI(docPath)
	if err != nil {
		return err
	}
	return o.run(uri)
}

// BuildURI constructs the obsidian:// URI for a vault-relative document path
func (o *Opener) BuildURI(docPath string) (string, error) {
	p := domain.NormalizePath(docPath)
	if p == "" || p == "." || p == ".." || strings.HasPrefix(p, "../") || path.IsAbs(p) {
		return "", fmt.Errorf("document is outside the vault: %s", docPath)
	}

	uri := fmt.Sprintf("obsidian://open?vault=%s&file=%s",
		escape(o.vaultName),
		escape(p),
	)

	return uri, nil
}

// escape percent-encodes s, spaces included.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func openURI(uri string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", uri)
	case "linux":
		cmd = exec.Command("xdg-open", uri)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", uri)
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}

	return cmd.Run()
}
