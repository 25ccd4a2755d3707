package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"oot/internal/adapters/tui/styles"
	"oot/internal/domain"
)

// RenderHelpLine renders key bindings as "key desc" pairs separated by
// bullets
func RenderHelpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpKey.Render(h.Key)+" "+styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, styles.HelpSeparator.String())
}

// RenderMessage styles a status message. Empty messages render empty.
func RenderMessage(message string, isError bool) string {
	switch {
	case message == "":
		return ""
	case isError:
		return styles.ErrorMsg.Render(message)
	default:
		return styles.Success.Render(message)
	}
}

// RenderErrorKind renders an error kind tag in its color.
func RenderErrorKind(kind domain.ErrorKind) string {
	return styles.NodeError.Foreground(styles.ErrorColor(kind)).Render("[" + kind.String() + "]")
}

// ViewBuilder accumulates the lines of a view and wraps them in the app
// style
type ViewBuilder struct {
	b strings.Builder
}

// NewViewBuilder creates a new view builder
func NewViewBuilder() *ViewBuilder {
	return &ViewBuilder{}
}

func (v *ViewBuilder) write(text string, newlines int) *ViewBuilder {
	v.b.WriteString(text)
	v.b.WriteString(strings.Repeat("\n", newlines))
	return v
}

// Title adds the view title. The title style adds its own margin.
func (v *ViewBuilder) Title(title string) *ViewBuilder {
	return v.write(styles.Title.Render(title), 1)
}

// Subtitle adds a subtitle followed by a blank line
func (v *ViewBuilder) Subtitle(subtitle string) *ViewBuilder {
	return v.write(styles.Subtitle.Render(subtitle), 2)
}

// Section adds a section label
func (v *ViewBuilder) Section(label string) *ViewBuilder {
	return v.write(styles.InputLabel.Render(label), 1)
}

// Line adds a line of text
func (v *ViewBuilder) Line(text string) *ViewBuilder {
	return v.write(text, 1)
}

// BlankLine adds an empty line
func (v *ViewBuilder) BlankLine() *ViewBuilder {
	return v.write("", 1)
}

// Muted adds a line of secondary text
func (v *ViewBuilder) Muted(text string) *ViewBuilder {
	return v.write(styles.MutedText.Render(text), 1)
}

// Raw adds text as is
func (v *ViewBuilder) Raw(text string) *ViewBuilder {
	return v.write(text, 0)
}

// Message adds the status message, if any, after a blank line
func (v *ViewBuilder) Message(message string, isError bool) *ViewBuilder {
	if message == "" {
		return v
	}
	return v.write("\n"+RenderMessage(message, isError), 1)
}

// Help adds the key help line after a blank line
func (v *ViewBuilder) Help(bindings ...key.Binding) *ViewBuilder {
	return v.write("\n"+RenderHelpLine(bindings...), 0)
}

// String returns the built view wrapped in the app style
func (v *ViewBuilder) String() string {
	return styles.App.Render(v.b.String())
}
