package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"oot/internal/adapters/tui/views"
	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
	"oot/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewErrors
	ViewHelp
)

// Engine is the part of the reconciliation engine the TUI drives
type Engine interface {
	commands.Synchronizer
	commands.Reconciler
}

// App is the main TUI application model
type App struct {
	query    reconcile.Query
	engine   Engine
	editor   ports.EditorOpener
	obsidian ports.ObsidianOpener

	state   ViewState
	browser *views.BrowserModel
	errors  *views.ErrorsModel
	help    *views.HelpModel

	width  int
	height int
}

// Option configures an App
type Option func(*App)

// WithEditor enables editing documents in an external editor
func WithEditor(ed ports.EditorOpener) Option {
	return func(a *App) { a.editor = ed }
}

// WithObsidian enables opening documents in Obsidian
func WithObsidian(o ports.ObsidianOpener) Option {
	return func(a *App) { a.obsidian = o }
}

// NewApp creates a new TUI application
func NewApp(query reconcile.Query, engine Engine, property string, opts ...Option) *App {
	a := &App{
		query:   query,
		engine:  engine,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(query),
		errors:  views.NewErrorsModel(query),
		help:    views.NewHelpModel(property),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.browser.Init(), a.errors.Init())
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.errors.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, a.browser.Reload()

	case views.SwitchToErrorsMsg:
		a.state = ViewErrors
		return a, a.errors.Reload()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	// Actions
	case views.OpenEditorMsg:
		return a, a.openEditor(msg.Path)

	case editorFinishedMsg:
		if msg.err != nil {
			return a, a.status(msg.err.Error(), true)
		}
		return a, a.reconcile(msg.path)

	case views.OpenObsidianMsg:
		return a, a.openObsidian(msg.Path)

	case views.ReconcileRequestMsg:
		return a, a.reconcile(msg.Path)

	case views.SyncRequestMsg:
		return a, a.synchronize()

	case views.StatusMsg:
		a.browser.SetMessage(msg.Text, msg.Err)
		a.errors.SetMessage(msg.Text, msg.Err)
		return a, a.reload()

	case views.VaultChangedMsg:
		return a, a.reload()
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewErrors:
		_, cmd = a.errors.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	// Loaded data goes to both lists whichever is shown
	if a.state != ViewBrowser && isLoadMsg(msg) {
		_, bcmd := a.browser.Update(msg)
		cmd = tea.Batch(cmd, bcmd)
	}
	if a.state != ViewErrors && isLoadMsg(msg) {
		_, ecmd := a.errors.Update(msg)
		cmd = tea.Batch(cmd, ecmd)
	}

	return a, cmd
}

// isLoadMsg reports whether msg carries data for a view rather than input.
func isLoadMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		return false
	}
	return true
}

func (a *App) reload() tea.Cmd {
	return tea.Batch(a.browser.Reload(), a.errors.Reload())
}

func (a *App) status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return views.StatusMsg{Text: text, Err: isErr}
	}
}

func (a *App) reconcile(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := commands.NewReconcileCommand(a.engine, a.query, path).Execute(context.Background())
		if err != nil {
			return views.StatusMsg{Text: err.Error(), Err: true}
		}
		return views.StatusMsg{Text: res.Message}
	}
}

func (a *App) synchronize() tea.Cmd {
	return func() tea.Msg {
		res, err := commands.NewSyncCommand(a.engine).Execute(context.Background())
		if err != nil {
			return views.StatusMsg{Text: err.Error(), Err: true}
		}
		return views.StatusMsg{Text: res.Message}
	}
}

type editorFinishedMsg struct {
	path string
	err  error
}

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return a.status("no editor configured", true)
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{path: path, err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{path: path, err: err}
	})
}

func (a *App) openObsidian(path string) tea.Cmd {
	if a.obsidian == nil {
		return a.status("Obsidian is not configured", true)
	}
	return func() tea.Msg {
		if err := a.obsidian.OpenDocument(path); err != nil {
			return views.StatusMsg{Text: err.Error(), Err: true}
		}
		return views.StatusMsg{Text: "Opened " + path + " in Obsidian"}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewErrors:
		return a.errors.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
