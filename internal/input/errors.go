package input

import "errors"

var (
	// ErrNothingToEdit is returned with the unchanged template when it
	// compiles to no editable cell. It is advisory: the returned string is
	// still usable.
	ErrNothingToEdit = errors.New("input: template has no editable cell")

	// ErrNoOptions is returned by Choose for an empty option list.
	ErrNoOptions = errors.New("input: no options to choose from")
)

// IsNothingToEdit reports whether err is the advisory "nothing to edit"
// condition.
func IsNothingToEdit(err error) bool {
	return errors.Is(err, ErrNothingToEdit)
}
