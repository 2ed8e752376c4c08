package input

import "strings"

// Kind is the closed set of cell variants. Each variant carries its own
// alphabet and directive letter; adding a variant means adding a case here,
// not branching on loose tags elsewhere.
type Kind uint8

const (
	// KindLiteral is a fixed character. It is never focused or edited.
	KindLiteral Kind = iota
	// KindDecimal is one editable decimal digit (%i).
	KindDecimal
	// KindHex is one editable lowercase hex digit (%h).
	KindHex
)

const (
	decimalAlphabet = "0123456789"
	hexAlphabet     = "0123456789abcdef"
)

// Directive is the escape that introduces an editable cell in a template.
const Directive = '%'

// kinds lists the editable variants in directive lookup order.
var kinds = [...]Kind{KindDecimal, KindHex}

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindDecimal:
		return "decimal"
	case KindHex:
		return "hex"
	default:
		return "unknown"
	}
}

// Alphabet returns the ordered legal characters of k. Literals have none.
func (k Kind) Alphabet() string {
	switch k {
	case KindDecimal:
		return decimalAlphabet
	case KindHex:
		return hexAlphabet
	default:
		return ""
	}
}

// Letter returns the directive letter that selects k, or 0 for literals.
func (k Kind) Letter() rune {
	switch k {
	case KindDecimal:
		return 'i'
	case KindHex:
		return 'h'
	default:
		return 0
	}
}

// Editable reports whether cells of this kind take input.
func (k Kind) Editable() bool {
	return k.Alphabet() != ""
}

// Accepts reports whether r is in the kind's alphabet.
func (k Kind) Accepts(r rune) bool {
	return k.Editable() && strings.ContainsRune(k.Alphabet(), r)
}

// step moves r by delta positions around the alphabet.
func (k Kind) step(r rune, delta int) rune {
	alpha := []rune(k.Alphabet())
	n := len(alpha)
	if n == 0 {
		return r
	}
	i := strings.IndexRune(k.Alphabet(), r)
	if i < 0 {
		return alpha[0]
	}
	return alpha[((i+delta)%n+n)%n]
}

func kindForLetter(r rune) (Kind, bool) {
	for _, k := range kinds {
		if k.Letter() == r {
			return k, true
		}
	}
	return KindLiteral, false
}

// Cell is one display position.
type Cell struct {
	Value rune
	Kind  Kind
}

// Editable reports whether the cell takes input.
func (c Cell) Editable() bool {
	return c.Kind.Editable()
}

// Break reports whether the cell is the line break literal.
func (c Cell) Break() bool {
	return c.Kind == KindLiteral && c.Value == '\n'
}

// Next returns the cell with its value moved one step up its alphabet.
// Literal cells are returned unchanged.
func (c Cell) Next() Cell {
	c.Value = c.Kind.step(c.Value, 1)
	return c
}

// Prev returns the cell with its value moved one step down its alphabet.
func (c Cell) Prev() Cell {
	c.Value = c.Kind.step(c.Value, -1)
	return c
}
