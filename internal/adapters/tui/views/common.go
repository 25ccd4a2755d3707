package views

import (
	"github.com/atotto/clipboard"
)

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// listHeight returns how many list rows fit next to the title and help
// lines. A zero height means the size is not known yet.
func (s *ViewState) listHeight(chrome int) int {
	if s.Height <= 0 {
		return 0
	}
	return max(s.Height-chrome, 3)
}

// copyToClipboard is replaced in tests.
var copyToClipboard = clipboard.WriteAll

// copyPath copies a document path and reports the outcome.
func copyPath(path string) StatusMsg {
	if err := copyToClipboard(path); err != nil {
		return StatusMsg{Text: "copy failed: " + err.Error(), Err: true}
	}
	return StatusMsg{Text: "Copied " + path}
}

// window returns the [start, end) range of a list of total rows that
// keeps cursor visible in size rows. A size of zero shows everything.
func window(cursor, total, size int) (int, int) {
	if size <= 0 || total <= size {
		return 0, total
	}
	start := cursor - size/2
	start = max(0, min(start, total-size))
	return start, start + size
}
