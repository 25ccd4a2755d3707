package application

import (
	"errors"
	"testing"
)

func TestValidateRequired(t *testing.T) {
	tests := []struct {
		name      string
		fieldName string
		value     string
		wantErr   bool
	}{
		{
			name:      "valid value",
			fieldName: "path",
			value:     "notes/A.md",
			wantErr:   false,
		},
		{
			name:      "empty string",
			fieldName: "path",
			value:     "",
			wantErr:   true,
		},
		{
			name:      "whitespace only",
			fieldName: "ancestorPath",
			value:     "   ",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequired(tt.fieldName, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRequired() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err != nil {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
				if valErr.Field != tt.fieldName {
					t.Errorf("expected field %s, got %s", tt.fieldName, valErr.Field)
				}
			}
		})
	}
}

func TestValidateRequired_Message(t *testing.T) {
	err := ValidateRequired("ancestorPath", "")
	if err == nil || err.Error() != "ancestorPath: ancestor path is required" {
		t.Errorf("expected formatted field name, got %v", err)
	}
}

func TestValidateDocumentPath(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "relative", value: "notes/A.md", wantErr: false},
		{name: "dot prefix", value: "./A.md", wantErr: false},
		{name: "inner parent reference", value: "notes/../A.md", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "absolute", value: "/etc/passwd", wantErr: true},
		{name: "escaping", value: "../outside.md", wantErr: true},
		{name: "escaping after clean", value: "notes/../../x.md", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentPath("path", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentPath(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLink(t *testing.T) {
	tests := []struct {
		value   string
		wantErr bool
	}{
		{value: "[[Note]]", wantErr: false},
		{value: " [[Note|alias]] ", wantErr: false},
		{value: "Note", wantErr: true},
		{value: "[[]]", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			err := ValidateLink("link", tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLink(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
