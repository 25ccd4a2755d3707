package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	tea "github.com/charmbracelet/bubbletea"

	"oot/internal/adapters/tui/styles"
	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
)

const defaultErrorsPerPage = 10

// ErrorsKeyMap defines key bindings for the errors view
type ErrorsKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
}

var ErrorsKeys = ErrorsKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PrevPage: key.NewBinding(
		key.WithKeys("h", "left", "pgup"),
		key.WithHelp("h/←", "prev page"),
	),
	NextPage: key.NewBinding(
		key.WithKeys("l", "right", "pgdown"),
		key.WithHelp("l/→", "next page"),
	),
}

// ErrorsModel lists the documents whose declared parent was rejected
type ErrorsModel struct {
	ViewState
	query   reconcile.Query
	entries []commands.ErrorEntry
	pages   paginator.Model
	cursor  int // index within the current page
	loaded  bool
}

// NewErrorsModel creates a new errors view model
func NewErrorsModel(query reconcile.Query) *ErrorsModel {
	pages := paginator.New(paginator.WithPerPage(defaultErrorsPerPage))
	pages.Type = paginator.Dots
	pages.ActiveDot = styles.HelpKey.Render("•")
	pages.InactiveDot = styles.MutedText.Render("•")

	return &ErrorsModel{
		query: query,
		pages: pages,
	}
}

// Init initializes the errors view
func (m *ErrorsModel) Init() tea.Cmd {
	return m.loadErrors
}

// Reload reads the error list again
func (m *ErrorsModel) Reload() tea.Cmd {
	return m.loadErrors
}

type errorsLoadedMsg struct {
	entries []commands.ErrorEntry
}

func (m *ErrorsModel) loadErrors() tea.Msg {
	entries, err := commands.NewListErrorsCommand(m.query).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return errorsLoadedMsg{entries}
}

// SetSize updates the view dimensions and the page size
func (m *ErrorsModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	if rows := m.listHeight(9); rows > 0 {
		m.pages.PerPage = rows
	}
	m.clamp()
}

// Update handles messages for the errors view
func (m *ErrorsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errorsLoadedMsg:
		selected := m.SelectedPath()
		m.entries = msg.entries
		m.loaded = true
		m.clamp()
		m.selectPath(selected)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		switch {
		case key.Matches(msg, ErrorsKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			} else if !m.pages.OnFirstPage() {
				m.pages.PrevPage()
				m.cursor = m.pages.ItemsOnPage(len(m.entries)) - 1
			}
			return m, nil

		case key.Matches(msg, ErrorsKeys.Down):
			if m.cursor < m.pages.ItemsOnPage(len(m.entries))-1 {
				m.cursor++
			} else if !m.pages.OnLastPage() {
				m.pages.NextPage()
				m.cursor = 0
			}
			return m, nil

		case key.Matches(msg, ErrorsKeys.PrevPage):
			m.pages.PrevPage()
			m.clamp()
			return m, nil

		case key.Matches(msg, ErrorsKeys.NextPage):
			m.pages.NextPage()
			m.clamp()
			return m, nil
		}

		cmd, _ := handleAction(msg, m.SelectedPath(), SwitchToBrowserMsg{})
		return m, cmd
	}

	return m, nil
}

// SelectedPath returns the path under the cursor, or "" when there are no
// errors
func (m *ErrorsModel) SelectedPath() string {
	start, end := m.pages.GetSliceBounds(len(m.entries))
	if i := start + m.cursor; i < end {
		return m.entries[i].Path
	}
	return ""
}

func (m *ErrorsModel) selectPath(path string) {
	if path == "" || m.pages.PerPage <= 0 {
		return
	}
	for i, e := range m.entries {
		if e.Path == path {
			m.pages.Page = i / m.pages.PerPage
			m.cursor = i % m.pages.PerPage
			return
		}
	}
}

// clamp recounts the pages and keeps the page and cursor inside the
// current entries
func (m *ErrorsModel) clamp() {
	m.pages.TotalPages = 1
	m.pages.SetTotalPages(len(m.entries))
	if m.pages.Page >= m.pages.TotalPages {
		m.pages.Page = m.pages.TotalPages - 1
	}
	if n := m.pages.ItemsOnPage(len(m.entries)); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View renders the errors view
func (m *ErrorsModel) View() string {
	if !m.loaded {
		return styles.App.Render("Loading...")
	}

	v := NewViewBuilder().Title("Errors").
		Subtitle(fmt.Sprintf("%d documents with a rejected parent", len(m.entries)))

	if len(m.entries) == 0 {
		v.Line(styles.Success.Render("Every declared parent resolves"))
	}

	start, end := m.pages.GetSliceBounds(len(m.entries))
	for i, e := range m.entries[start:end] {
		path := e.Path
		if i == m.cursor {
			path = styles.NodeSelected.Render(path)
		}
		v.Line(fmt.Sprintf("%s %s %s", path, RenderErrorKind(e.Kind), styles.MutedText.Render(e.Message)))
	}
	if m.pages.TotalPages > 1 {
		v.BlankLine().Line(m.pages.View())
	}

	return v.Message(m.Message, m.MessageErr).
		Help(ErrorsKeys.Up, ErrorsKeys.NextPage, ActionKeys.Edit, ActionKeys.Obsidian, ActionKeys.Reconcile, ActionKeys.Switch, ActionKeys.Help, ActionKeys.Quit).
		String()
}
