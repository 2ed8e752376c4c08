package input

import (
	"strings"

	"github.com/muurk/lcdpacket/internal/logging"
	"go.uber.org/zap"
)

// Sequence is the ordered cell list compiled from one template.
type Sequence []Cell

// Parse compiles a template into cells.
//
//	%i   one decimal digit cell, initial value '0'
//	%h   one hex digit cell, initial value '0'
//	\n   literal line break
//	else literal
//
// A '%' that is not followed by a directive letter is kept as a literal and
// scanning resumes at the following character. Parse never fails; each
// unknown directive is logged as an advisory.
func Parse(template string) Sequence {
	src := []rune(template)
	cells := make(Sequence, 0, len(src))

	for i := 0; i < len(src); i++ {
		r := src[i]
		if r != Directive {
			cells = append(cells, Cell{Value: r, Kind: KindLiteral})
			continue
		}
		if i+1 < len(src) {
			if k, ok := kindForLetter(src[i+1]); ok {
				cells = append(cells, Cell{Value: rune(k.Alphabet()[0]), Kind: k})
				i++
				continue
			}
		}

		next := ""
		if i+1 < len(src) {
			next = string(src[i+1])
		}
		logging.Advisory("Unknown format directive, kept as literal",
			zap.String("template", template),
			zap.Int("offset", i),
			zap.String("next", next))
		cells = append(cells, Cell{Value: r, Kind: KindLiteral})
	}

	return cells
}

// Seed returns a copy of s with editable cells filled from seed. Each editable
// cell takes the next seed character that belongs to its alphabet, skipping
// any that do not. A literal cell consumes the seed character at the current
// position only when it is that same character, so a seed written in the
// template's own layout ("0x0800" for "0x%h%h%h%h") lines up. Cells left over
// when the seed runs out keep their current value.
func (s Sequence) Seed(seed string) Sequence {
	out := s.clone()
	src := []rune(seed)
	pos := 0

	for i, c := range out {
		if !c.Editable() {
			if pos < len(src) && src[pos] == c.Value {
				pos++
			}
			continue
		}
		for pos < len(src) && !c.Kind.Accepts(src[pos]) {
			pos++
		}
		if pos >= len(src) {
			break
		}
		out[i].Value = src[pos]
		pos++
	}
	return out
}

// String concatenates every cell value, line break included.
func (s Sequence) String() string {
	var b strings.Builder
	for _, c := range s {
		b.WriteRune(c.Value)
	}
	return b.String()
}

// Editable returns the number of editable cells.
func (s Sequence) Editable() int {
	n := 0
	for _, c := range s {
		if c.Editable() {
			n++
		}
	}
	return n
}

// Break returns the index of the first line break, or -1.
func (s Sequence) Break() int {
	for i, c := range s {
		if c.Break() {
			return i
		}
	}
	return -1
}

func (s Sequence) clone() Sequence {
	return append(Sequence(nil), s...)
}
