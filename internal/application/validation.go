package application

import (
	"fmt"
	"path"
	"strings"

	"oot/internal/domain"
)

// ValidateRequired checks if a string field is non-empty (after trimming whitespace).
// Returns a ValidationError if the field is empty.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		displayName := formatFieldName(fieldName)
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s is required", displayName),
		}
	}
	return nil
}

// formatFieldName converts camelCase field names to space-separated words
// for more readable error messages (e.g., "ancestorPath" -> "ancestor path")
func formatFieldName(fieldName string) string {
	replacements := map[string]string{
		"path":         "path",
		"ancestorPath": "ancestor path",
		"rootPath":     "root path",
		"link":         "link",
	}

	if formatted, ok := replacements[fieldName]; ok {
		return formatted
	}

	return fieldName
}

// ValidateDocumentPath checks that value names a document inside the
// vault: required, relative, and not climbing out with "..".
func ValidateDocumentPath(fieldName, value string) error {
	if err := ValidateRequired(fieldName, value); err != nil {
		return err
	}
	p := domain.NormalizePath(strings.TrimSpace(value))
	if path.IsAbs(p) || p == ".." || strings.HasPrefix(p, "../") {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("%s must be relative to the vault, got: %s", formatFieldName(fieldName), value),
		}
	}
	return nil
}

// ValidateLink checks that value is a literal link in the [[Link]] form.
func ValidateLink(fieldName, value string) error {
	if err := ValidateRequired(fieldName, value); err != nil {
		return err
	}
	if _, err := domain.ParseLink(strings.TrimSpace(value)); err != nil {
		return &ValidationError{
			Field:   fieldName,
			Message: fmt.Sprintf("expected a literal link in the format [[Link]], got: %s", value),
		}
	}
	return nil
}
