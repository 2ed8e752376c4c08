package sanitize

import (
	"errors"
	"fmt"
)

var (
	// ErrNotScalar is returned when a chain ends with a list, or a scalar-only
	// transform such as Split receives a list.
	ErrNotScalar = errors.New("value is a list")

	// ErrEmpty is returned by numeric transforms for empty text.
	ErrEmpty = errors.New("empty value")
)

// Error is a transform failure on malformed text. It is fatal to the field
// being committed, never to the whole session.
type Error struct {
	Transform string // name of the failing transform
	Value     string // text the transform was given
	Err       error  // underlying cause
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("sanitize %s(%q): %v", e.Transform, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// IsSanitizeError reports whether err is or wraps a *Error.
func IsSanitizeError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
