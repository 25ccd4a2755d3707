package views

// Messages for view switching
type SwitchToBrowserMsg struct{}

type SwitchToErrorsMsg struct{}

type SwitchToHelpMsg struct{}

// OpenEditorMsg asks the application to edit a document in $EDITOR.
type OpenEditorMsg struct {
	Path string
}

// OpenObsidianMsg asks the application to show a document in Obsidian.
type OpenObsidianMsg struct {
	Path string
}

// ReconcileRequestMsg asks the application to re-derive a document.
type ReconcileRequestMsg struct {
	Path string
}

// SyncRequestMsg asks the application to rescan the whole vault.
type SyncRequestMsg struct{}

// StatusMsg carries the outcome of an action. Views show it and reload.
type StatusMsg struct {
	Text string
	Err  bool
}

// VaultChangedMsg is sent when the engine applied a file system event.
type VaultChangedMsg struct{}

type errMsg struct {
	err error
}
