package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"oot/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
	property string
}

// NewHelpModel creates a new help view model. property is the frontmatter
// key documents declare their parent under.
func NewHelpModel(property string) *HelpModel {
	return &HelpModel{property: property}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, send(SwitchToBrowserMsg{})
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	v := NewViewBuilder().Title("oot Help").
		Subtitle("Documents extend a parent through their frontmatter")

	v.Section("Navigation")
	v.Raw(helpLine("j / k / ↑ / ↓", "Move up/down"))
	v.Raw(helpLine("h / ←", "Collapse / go to parent"))
	v.Raw(helpLine("l / →", "Expand"))
	v.Raw(helpLine("enter", "Toggle children"))
	v.Raw(helpLine("h / l (errors)", "Previous / next page"))
	v.Raw(helpLine("tab", "Switch between tree and errors"))
	v.BlankLine()

	v.Section("Actions")
	v.Raw(helpLine("/", "Search documents"))
	v.Raw(helpLine("e", "Edit document in $EDITOR"))
	v.Raw(helpLine("o", "Open document in Obsidian"))
	v.Raw(helpLine("y", "Copy document path"))
	v.Raw(helpLine("r", "Reconcile document now"))
	v.Raw(helpLine("s", "Synchronize the whole vault"))
	v.BlankLine()

	v.Section("General")
	v.Raw(helpLine("?", "Toggle help"))
	v.Raw(helpLine("q / Ctrl+C", "Quit"))
	v.BlankLine()

	v.Section("Declaring a parent")
	v.Muted("  ---")
	v.Muted("  " + m.property + ": \"[[Parent]]\"")
	v.Muted("  ---")
	v.BlankLine()

	v.Raw(styles.HelpDesc.Render("Press ") +
		styles.HelpKey.Render("esc") +
		styles.HelpDesc.Render(" or ") +
		styles.HelpKey.Render("?") +
		styles.HelpDesc.Render(" to close"))

	return v.String()
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 20)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if n := len([]rune(s)); n < length {
		return s + strings.Repeat(" ", length-n)
	}
	return s
}
