package domain

import "fmt"

// ErrorKind is a validation failure recorded on a document whose declared
// parent could not be accepted.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorInvalidLinkFormat
	ErrorSelfReference
	ErrorParentNotFound
	ErrorParentIgnored
	ErrorCyclicHierarchy
)

var errorKindNames = map[ErrorKind]string{
	ErrorNone:              "",
	ErrorInvalidLinkFormat: "invalid-link-format",
	ErrorSelfReference:     "self-reference",
	ErrorParentNotFound:    "parent-not-found",
	ErrorParentIgnored:     "parent-ignored",
	ErrorCyclicHierarchy:   "cyclic-hierarchy",
}

var errorKindMessages = map[ErrorKind]string{
	ErrorInvalidLinkFormat: "Update failed: the extended file should be a link",
	ErrorSelfReference:     "Update failed: this file should not extend itself",
	ErrorParentNotFound:    "Update failed: the extended file no longer exists",
	ErrorParentIgnored:     "Update failed: the extended file is ignored",
	ErrorCyclicHierarchy:   "Update failed: there is a cyclic hierarchy",
}

// String returns the stable name used in persisted state.
func (k ErrorKind) String() string {
	if name, ok := errorKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error(%d)", int(k))
}

// Message returns the user-facing notice for the error.
func (k ErrorKind) Message() string {
	return errorKindMessages[k]
}

// ParseErrorKind is the inverse of String. The empty string is ErrorNone.
func ParseErrorKind(s string) (ErrorKind, error) {
	for k, name := range errorKindNames {
		if name == s {
			return k, nil
		}
	}
	return ErrorNone, fmt.Errorf("unknown error kind %q", s)
}

// ErrorKindNames lists the persisted names of every real error kind.
func ErrorKindNames() []string {
	return []string{
		ErrorInvalidLinkFormat.String(),
		ErrorSelfReference.String(),
		ErrorParentNotFound.String(),
		ErrorParentIgnored.String(),
		ErrorCyclicHierarchy.String(),
	}
}
