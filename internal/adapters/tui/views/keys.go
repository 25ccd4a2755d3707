package views

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ActionKeyMap defines the document actions shared by the list views
type ActionKeyMap struct {
	Edit      key.Binding
	Obsidian  key.Binding
	Copy      key.Binding
	Reconcile key.Binding
	Sync      key.Binding
	Switch    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

var ActionKeys = ActionKeyMap{
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit"),
	),
	Obsidian: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "obsidian"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Reconcile: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reconcile"),
	),
	Sync: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sync"),
	),
	Switch: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch view"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// handleAction maps a key to a document action on path. Actions that do
// not need a document work with an empty path. The second result is false
// when msg is not an action key.
func handleAction(msg tea.KeyMsg, path string, toggle tea.Msg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, ActionKeys.Quit):
		return tea.Quit, true
	case key.Matches(msg, ActionKeys.Help):
		return send(SwitchToHelpMsg{}), true
	case key.Matches(msg, ActionKeys.Switch):
		return send(toggle), true
	case key.Matches(msg, ActionKeys.Sync):
		return send(SyncRequestMsg{}), true
	}

	if path == "" {
		return nil, false
	}
	switch {
	case key.Matches(msg, ActionKeys.Edit):
		return send(OpenEditorMsg{Path: path}), true
	case key.Matches(msg, ActionKeys.Obsidian):
		return send(OpenObsidianMsg{Path: path}), true
	case key.Matches(msg, ActionKeys.Copy):
		return func() tea.Msg { return copyPath(path) }, true
	case key.Matches(msg, ActionKeys.Reconcile):
		return send(ReconcileRequestMsg{Path: path}), true
	}
	return nil, false
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
