package domain

import (
	"errors"
	"strings"
)

// ErrNotALink is returned when a declared parent value is not a wiki link.
var ErrNotALink = errors.New("value is not a [[link]]")

// Link is a parsed wiki link of the form [[target#heading|alias]].
type Link struct {
	Target string
	Alias  string
}

// ParseLink parses a declared parent value. Only string values in the
// [[target]] or [[target|alias]] form are links; a heading suffix on the
// target is dropped.
func ParseLink(value any) (Link, error) {
	s, ok := value.(string)
	if !ok {
		return Link{}, ErrNotALink
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return Link{}, ErrNotALink
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
	if strings.Contains(inner, "[[") || strings.Contains(inner, "]]") {
		return Link{}, ErrNotALink
	}

	var link Link
	target, alias, hasAlias := strings.Cut(inner, "|")
	if hasAlias {
		link.Alias = strings.TrimSpace(alias)
	}
	if i := strings.Index(target, "#"); i >= 0 {
		target = target[:i]
	}
	link.Target = strings.TrimSpace(target)
	if link.Target == "" {
		return Link{}, ErrNotALink
	}
	return link, nil
}

// String renders the link back into wiki syntax.
func (l Link) String() string {
	if l.Alias != "" {
		return "[[" + l.Target + "|" + l.Alias + "]]"
	}
	return "[[" + l.Target + "]]"
}

// IsEmptyValue reports whether a declared parent value means "no parent".
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case int:
		return v == 0
	case int64:
		return v == 0
	case uint64:
		return v == 0
	case float64:
		return v == 0
	default:
		return false
	}
}
