package migrate

import (
	"github.com/pkg/errors"
)

// Kind classifies a failure so the run summary can report what went wrong
// without parsing error strings.
type Kind string

const (
	SourceUnavailable      Kind = "SourceUnavailable"
	DestinationUnavailable Kind = "DestinationUnavailable"
	TableNotFound          Kind = "TableNotFound"
	SchemaConflict         Kind = "SchemaConflict"
	InsertFailed           Kind = "InsertFailed"
)

// Error attaches a Kind to an underlying cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error {
	return e.cause
}

func fail(kind Kind, cause error, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Wrapf(cause, format, args...)}
}

func failf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, cause: errors.Errorf(format, args...)}
}

// KindOf returns the Kind carried by err or "" when it has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
