package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"oot/internal/adapters/tui/styles"
	"oot/internal/application/commands"
	"oot/internal/application/reconcile"
	"oot/internal/domain"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Toggle key.Binding
	Search key.Binding
	Cancel key.Binding
	Select key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", " "),
		key.WithHelp("enter", "toggle"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "reveal"),
	),
}

// treeNode is a record placed in the displayed forest
type treeNode struct {
	record   *domain.Record
	parent   *treeNode
	children []*treeNode
	depth    int
}

// BrowserModel is the model for the hierarchy browser view
type BrowserModel struct {
	ViewState
	query reconcile.Query

	records  []*domain.Record
	roots    []*treeNode
	flat     []*treeNode
	expanded map[string]bool
	cursor   int
	loaded   bool

	searching bool
	input     textinput.Model
	results   []commands.SearchResult
	resultIdx int
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(query reconcile.Query) *BrowserModel {
	input := textinput.New()
	input.Placeholder = "Search documents..."

	return &BrowserModel{
		query:    query,
		expanded: make(map[string]bool),
		input:    input,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadRecords
}

// Reload reads the records again, keeping expansion and selection
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadRecords
}

type recordsLoadedMsg struct {
	records []*domain.Record
}

func (m *BrowserModel) loadRecords() tea.Msg {
	records, err := m.query.Records()
	if err != nil {
		return errMsg{err}
	}
	return recordsLoadedMsg{records}
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case recordsLoadedMsg:
		selected := m.SelectedPath()
		m.records = msg.records
		m.roots = buildForest(msg.records)
		m.loaded = true
		m.refreshFlat()
		m.selectPath(selected)
		if m.searching {
			m.runSearch()
		}
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		m.ClearMessage()
		return m, m.updateTree(msg)
	}

	return m, nil
}

func (m *BrowserModel) updateTree(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return nil

	case key.Matches(msg, BrowserKeys.Down):
		if m.cursor < len(m.flat)-1 {
			m.cursor++
		}
		return nil

	case key.Matches(msg, BrowserKeys.Left):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if m.expanded[node.record.Path] && len(node.children) > 0 {
			delete(m.expanded, node.record.Path)
			m.refreshFlat()
		} else if node.parent != nil {
			m.selectPath(node.parent.record.Path)
		}
		return nil

	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && len(node.children) > 0 {
			m.expanded[node.record.Path] = true
			m.refreshFlat()
		}
		return nil

	case key.Matches(msg, BrowserKeys.Toggle):
		if node := m.selectedNode(); node != nil && len(node.children) > 0 {
			if m.expanded[node.record.Path] {
				delete(m.expanded, node.record.Path)
			} else {
				m.expanded[node.record.Path] = true
			}
			m.refreshFlat()
		}
		return nil

	case key.Matches(msg, BrowserKeys.Search):
		m.searching = true
		m.input.SetValue("")
		m.results = nil
		m.resultIdx = 0
		return m.input.Focus()
	}

	cmd, _ := handleAction(msg, m.SelectedPath(), SwitchToErrorsMsg{})
	return cmd
}

func (m *BrowserModel) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Cancel):
		m.stopSearch()
		return nil

	case msg.Type == tea.KeyUp:
		if m.resultIdx > 0 {
			m.resultIdx--
		}
		return nil

	case msg.Type == tea.KeyDown:
		if m.resultIdx < len(m.results)-1 {
			m.resultIdx++
		}
		return nil

	case key.Matches(msg, BrowserKeys.Select):
		if m.resultIdx < len(m.results) {
			m.Reveal(m.results[m.resultIdx].Record.Path)
		}
		m.stopSearch()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.runSearch()
	return cmd
}

func (m *BrowserModel) runSearch() {
	m.results = nil
	if q := m.input.Value(); len(q) >= 2 {
		m.results = commands.FuzzySort(m.records, q)
	}
	if m.resultIdx >= len(m.results) {
		m.resultIdx = max(len(m.results)-1, 0)
	}
}

func (m *BrowserModel) stopSearch() {
	m.searching = false
	m.input.Blur()
	m.results = nil
}

// Reveal expands the ancestors of path and moves the cursor onto it
func (m *BrowserModel) Reveal(path string) {
	for _, rec := range m.records {
		if rec.Path != path {
			continue
		}
		for _, ancestor := range rec.Chain {
			if ancestor != path {
				m.expanded[ancestor] = true
			}
		}
	}
	m.refreshFlat()
	m.selectPath(path)
}

// SelectedPath returns the path under the cursor, or "" when the tree is
// empty
func (m *BrowserModel) SelectedPath() string {
	if node := m.selectedNode(); node != nil {
		return node.record.Path
	}
	return ""
}

func (m *BrowserModel) selectedNode() *treeNode {
	if m.cursor >= 0 && m.cursor < len(m.flat) {
		return m.flat[m.cursor]
	}
	return nil
}

func (m *BrowserModel) selectPath(path string) {
	for i, n := range m.flat {
		if n.record.Path == path {
			m.cursor = i
			return
		}
	}
}

func (m *BrowserModel) refreshFlat() {
	m.flat = m.flat[:0]
	var walk func(nodes []*treeNode)
	walk = func(nodes []*treeNode) {
		for _, n := range nodes {
			m.flat = append(m.flat, n)
			if m.expanded[n.record.Path] {
				walk(n.children)
			}
		}
	}
	walk(m.roots)

	if m.cursor >= len(m.flat) {
		m.cursor = len(m.flat) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// buildForest arranges records under their roots. Soft-excluded roots are
// left out and every record is placed once.
func buildForest(records []*domain.Record) []*treeNode {
	byPath := make(map[string]*domain.Record, len(records))
	var roots []*domain.Record
	for _, rec := range records {
		byPath[rec.Path] = rec
		if rec.IsRoot() && !rec.IsSoftExcluded() {
			roots = append(roots, rec)
		}
	}
	slices.SortFunc(roots, func(a, b *domain.Record) int { return strings.Compare(a.Path, b.Path) })

	placed := make(map[string]bool, len(records))
	var grow func(rec *domain.Record, parent *treeNode, depth int) *treeNode
	grow = func(rec *domain.Record, parent *treeNode, depth int) *treeNode {
		placed[rec.Path] = true
		n := &treeNode{record: rec, parent: parent, depth: depth}
		children := slices.Clone(rec.Children)
		slices.Sort(children)
		for _, c := range children {
			child, ok := byPath[c]
			if !ok || placed[c] {
				continue
			}
			n.children = append(n.children, grow(child, n, depth+1))
		}
		return n
	}

	forest := make([]*treeNode, 0, len(roots))
	for _, rec := range roots {
		forest = append(forest, grow(rec, nil, 0))
	}
	return forest
}

// View renders the browser
func (m *BrowserModel) View() string {
	if !m.loaded {
		return styles.App.Render("Loading...")
	}

	v := NewViewBuilder().Title("oot").Subtitle(m.summary())

	if m.searching {
		m.renderSearch(v)
		return v.String()
	}

	if len(m.flat) == 0 {
		v.Muted("No tracked documents")
	}
	start, end := window(m.cursor, len(m.flat), m.listHeight(8))
	for i := start; i < end; i++ {
		v.Line(m.renderNode(m.flat[i], i == m.cursor))
	}

	return v.Message(m.Message, m.MessageErr).
		Help(BrowserKeys.Up, BrowserKeys.Right, BrowserKeys.Search, ActionKeys.Edit, ActionKeys.Reconcile, ActionKeys.Switch, ActionKeys.Help, ActionKeys.Quit).
		String()
}

func (m *BrowserModel) summary() string {
	var tracked, failing int
	for _, rec := range m.records {
		if rec.IsSoftExcluded() {
			continue
		}
		tracked++
		if rec.Error != domain.ErrorNone {
			failing++
		}
	}
	return fmt.Sprintf("%d documents, %d with errors", tracked, failing)
}

func (m *BrowserModel) renderSearch(v *ViewBuilder) {
	v.Line(styles.InputFocused.Render(m.input.View())).BlankLine()

	switch {
	case len(m.input.Value()) < 2:
		v.Muted("Type at least 2 characters to search")
	case len(m.results) == 0:
		v.Muted("No results found")
	default:
		start, end := window(m.resultIdx, len(m.results), m.listHeight(12))
		for i := start; i < end; i++ {
			rec := m.results[i].Record
			text := fmt.Sprintf("%s  %s", rec.Path, styles.MutedText.Render(rec.Label()))
			if i == m.resultIdx {
				text = styles.NodeSelected.Render(rec.Path)
			}
			v.Line(text)
		}
	}

	v.Help(BrowserKeys.Select, BrowserKeys.Cancel)
}

func (m *BrowserModel) renderNode(node *treeNode, selected bool) string {
	indent := strings.Repeat("  ", node.depth)

	prefix := styles.TreeLeaf
	if len(node.children) > 0 {
		prefix = styles.TreeCollapsed
		if m.expanded[node.record.Path] {
			prefix = styles.TreeExpanded
		}
	}

	rec := node.record
	text := domain.Basename(rec.Path)

	style := styles.NodeDocument
	switch {
	case rec.IsSoftExcluded():
		style = styles.NodeExcluded
	case rec.Error != domain.ErrorNone:
		style = styles.NodeError
	case node.depth == 0:
		style = styles.NodeRoot
	}
	if selected {
		style = styles.NodeSelected
	}

	line := indent + styles.TreeBranch.Render(prefix) + style.Render(text)
	if rec.IsSoftExcluded() {
		line += " " + styles.MutedText.Render("(excluded)")
	}
	if rec.Error != domain.ErrorNone {
		line += " " + RenderErrorKind(rec.Error)
	}
	return line
}
