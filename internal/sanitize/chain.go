package sanitize

import "strings"

// Transform is one pure step of a chain.
type Transform struct {
	name string
	fn   func(Value) (Value, error)
}

// Name returns the transform's name with its arguments, e.g. "pad(3,'0',left)".
func (t Transform) Name() string {
	return t.name
}

// Apply runs the transform on v.
func (t Transform) Apply(v Value) (Value, error) {
	return t.fn(v)
}

// scalar builds a Transform from a string function. Lists are handled by
// applying fn to every element, so each primitive is written once.
func scalar(name string, fn func(string) (string, error)) Transform {
	return Transform{
		name: name,
		fn: func(v Value) (Value, error) {
			return v.mapItems(func(s string) (string, error) {
				r, err := fn(s)
				if err != nil {
					return "", &Error{Transform: name, Value: s, Err: err}
				}
				return r, nil
			})
		},
	}
}

// pure is scalar for functions that cannot fail.
func pure(name string, fn func(string) string) Transform {
	return scalar(name, func(s string) (string, error) { return fn(s), nil })
}

// Chain is an ordered list of transforms folded left to right.
type Chain []Transform

// NewChain returns a chain of ts.
func NewChain(ts ...Transform) Chain {
	return Chain(ts)
}

// Apply folds the chain over v. The first failing transform stops the fold.
func (c Chain) Apply(v Value) (Value, error) {
	var err error
	for _, t := range c {
		v, err = t.Apply(v)
		if err != nil {
			return Value{}, err
		}
	}
	return v, nil
}

// Then returns a new chain with more appended.
func (c Chain) Then(more ...Transform) Chain {
	out := make(Chain, 0, len(c)+len(more))
	out = append(out, c...)
	return append(out, more...)
}

// String lists the transform names.
func (c Chain) String() string {
	names := make([]string, len(c))
	for i, t := range c {
		names[i] = t.Name()
	}
	return strings.Join(names, " | ")
}

// Sanitize runs c over text and returns the resulting scalar. A chain that
// ends with a list is an error.
func Sanitize(text string, c Chain) (string, error) {
	v, err := c.Apply(Scalar(text))
	if err != nil {
		return "", err
	}
	if v.IsList() {
		return "", &Error{Transform: "sanitize", Value: text, Err: ErrNotScalar}
	}
	return v.String(), nil
}
