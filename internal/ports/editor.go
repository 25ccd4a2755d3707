package ports

import "os/exec"

// EditorOpener opens a vault document in an external editor
type EditorOpener interface {
	// Command returns an exec.Cmd editing the document at the vault-relative
	// path. It is meant for bubbletea's ExecProcess.
	Command(docPath string) (*exec.Cmd, error)
}
