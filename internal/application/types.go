package application

import "oot/internal/domain"

// Re-export domain types for use by adapters
type (
	Record    = domain.Record
	ErrorKind = domain.ErrorKind
)

// ErrorMessage returns the notice shown to users for kind, or "" when the
// document is valid.
func ErrorMessage(kind ErrorKind) string {
	return kind.Message()
}
