// Package errors defines the flatintern error taxonomy.
//
// Parsing itself is best-effort and never fails on malformed input; the
// kinds here are raised only by configuration, construction, and the
// externally-facing wire/consistency checks.
package errors

import "fmt"

// Kind identifies the class of a flatintern error.
type Kind string

const (
	// OptionOutOfRange is raised by configuration validation: a negative
	// line/cell cap, or a read buffer smaller than the required minimum.
	OptionOutOfRange Kind = "option_out_of_range"

	// BufferTooSmall is raised by input buffer construction when the
	// requested capacity is below the minimum read-buffer size (4096).
	BufferTooSmall Kind = "buffer_too_small"

	// Inconsistent is raised by the matrix consistency check when an
	// externally-constructed matrix violates a structural invariant.
	Inconsistent Kind = "inconsistent"

	// UnknownVersion is raised by the wire-format reader when the leading
	// version byte does not match the supported version.
	UnknownVersion Kind = "unknown_version"

	// SourceFailure wraps an underlying byte-source error encountered
	// during input buffer refill.
	SourceFailure Kind = "source_failure"
)

// Error is the single error type flatintern returns. It carries a Kind for
// programmatic dispatch, the operation that raised it, and an optional
// wrapped cause.
type Error struct {
	Kind       Kind
	Op         string
	Underlying error
}

// New creates an Error of the given kind for the given operation.
func New(kind Kind, op string) *Error {
	return &Error{Kind: kind, Op: op}
}

// Wrap creates an Error of the given kind for the given operation, wrapping
// an underlying cause.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Underlying: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("flatintern: %s: %s: %v", e.Kind, e.Op, e.Underlying)
	}
	return fmt.Sprintf("flatintern: %s: %s", e.Kind, e.Op)
}

// Unwrap returns the underlying cause, for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Underlying
}

// Is reports whether target is an *Error with the same Kind, so that
// errors.Is(err, errors.New(OptionOutOfRange, "")) matches on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}
