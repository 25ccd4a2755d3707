package editor

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"oot/internal/ports"
)

var _ ports.EditorOpener = (*Opener)(nil)

// Opener implements ports.EditorOpener for documents of one vault
type Opener struct {
	vaultPath string
	lookup    func(string) string
}

// NewOpener creates a new editor opener for the vault at vaultPath
func NewOpener(vaultPath string) *Opener {
	return &Opener{vaultPath: vaultPath, lookup: os.Getenv}
}

// Command returns an exec.Cmd editing the document. $EDITOR and $VISUAL may
// carry arguments, e.g. "code --wait".
func (o *Opener) Command(docPath string) (*exec.Cmd, error) {
	argv := o.findEditor()
	if len(argv) == 0 {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	abs := filepath.Join(o.vaultPath, filepath.FromSlash(docPath))
	cmd := exec.Command(argv[0], append(argv[1:], abs)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd, nil
}

// findEditor returns the editor command line to use
func (o *Opener) findEditor() []string {
	for _, env := range []string{"EDITOR", "VISUAL"} {
		if fields := strings.Fields(o.lookup(env)); len(fields) > 0 {
			return fields
		}
	}

	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := exec.LookPath(editor); err == nil {
			return []string{path}
		}
	}

	return nil
}
