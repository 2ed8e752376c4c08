package sanitize

import (
	"fmt"
	"strings"
)

// Side selects the end of a string a transform works on.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// InsertEvery inserts sep after every step characters, never at the end:
// "0a1b2c" with (":", 2) becomes "0a:1b:2c".
func InsertEvery(sep string, step int) Transform {
	return pure(fmt.Sprintf("insertEvery(%q,%d)", sep, step), func(s string) string {
		r := []rune(s)
		if step <= 0 || len(r) <= step {
			return s
		}
		var b strings.Builder
		for i, c := range r {
			if i > 0 && i%step == 0 {
				b.WriteString(sep)
			}
			b.WriteRune(c)
		}
		return b.String()
	})
}

// InsertAt inserts text before the character at index. An index past the end
// appends.
func InsertAt(text string, index int) Transform {
	return pure(fmt.Sprintf("insertAt(%q,%d)", text, index), func(s string) string {
		r := []rune(s)
		i := min(max(index, 0), len(r))
		return string(r[:i]) + text + string(r[i:])
	})
}

// Join turns a list into a scalar joined by sep. A scalar passes through.
func Join(sep string) Transform {
	return Transform{
		name: fmt.Sprintf("join(%q)", sep),
		fn: func(v Value) (Value, error) {
			if !v.IsList() {
				return v, nil
			}
			return Scalar(strings.Join(v.items, sep)), nil
		},
	}
}

// Split turns a scalar into a list at every sep.
func Split(sep string) Transform {
	name := fmt.Sprintf("split(%q)", sep)
	return Transform{
		name: name,
		fn: func(v Value) (Value, error) {
			if v.IsList() {
				return Value{}, &Error{Transform: name, Value: v.String(), Err: ErrNotScalar}
			}
			return List(strings.Split(v.String(), sep)...), nil
		},
	}
}

// PadTo pads with ch on side until the string is length characters long.
// Longer strings are returned unchanged.
func PadTo(length int, ch rune, side Side) Transform {
	return pure(fmt.Sprintf("pad(%d,%q,%s)", length, ch, side), func(s string) string {
		n := length - len([]rune(s))
		if n <= 0 {
			return s
		}
		pad := strings.Repeat(string(ch), n)
		if side == Right {
			return s + pad
		}
		return pad + s
	})
}

// StripChars removes any of chars from side. If nothing is left the result
// is minimum, so a required field never ends up empty: "000" stripped of
// '0' with minimum "0" is "0".
func StripChars(minimum, chars string, side Side) Transform {
	return pure(fmt.Sprintf("strip(%q,%q,%s)", minimum, chars, side), func(s string) string {
		var out string
		if side == Right {
			out = strings.TrimRight(s, chars)
		} else {
			out = strings.TrimLeft(s, chars)
		}
		if out == "" {
			return minimum
		}
		return out
	})
}

// RemoveChar removes every occurrence of ch.
func RemoveChar(ch string) Transform {
	return pure(fmt.Sprintf("remove(%q)", ch), func(s string) string {
		return strings.ReplaceAll(s, ch, "")
	})
}

// Trim drops n characters from side.
func Trim(n int, side Side) Transform {
	return pure(fmt.Sprintf("trim(%d,%s)", n, side), func(s string) string {
		r := []rune(s)
		k := min(max(n, 0), len(r))
		if side == Right {
			return string(r[:len(r)-k])
		}
		return string(r[k:])
	})
}

// Lower lowercases the string. Hex cells only hold lowercase digits.
func Lower() Transform {
	return pure("lower", strings.ToLower)
}
