package sanitize

import "strings"

// Value is what flows through a chain: either one string or an ordered list
// of strings. Transforms written for scalars are mapped over lists.
type Value struct {
	items []string
	list  bool
}

// Scalar wraps one string.
func Scalar(s string) Value {
	return Value{items: []string{s}}
}

// List wraps an ordered list of strings.
func List(items ...string) Value {
	return Value{items: append([]string{}, items...), list: true}
}

// IsList reports whether v is a list.
func (v Value) IsList() bool {
	return v.list
}

// Items returns a copy of the list elements, or the scalar as a one element
// slice.
func (v Value) Items() []string {
	return append([]string(nil), v.items...)
}

// String returns the scalar, or the list elements joined by commas.
func (v Value) String() string {
	if !v.list {
		if len(v.items) == 0 {
			return ""
		}
		return v.items[0]
	}
	return strings.Join(v.items, ",")
}

// mapItems applies fn to the scalar or to each list element.
func (v Value) mapItems(fn func(string) (string, error)) (Value, error) {
	out := Value{items: make([]string, len(v.items)), list: v.list}
	for i, s := range v.items {
		r, err := fn(s)
		if err != nil {
			return Value{}, err
		}
		out.items[i] = r
	}
	return out, nil
}
