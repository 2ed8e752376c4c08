package lcd

import "strings"

// Button identifies one of the five plate buttons.
type Button uint8

const (
	ButtonUp Button = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonSelect
)

// Priority is the fixed order buttons are tested in on every tick. When
// several buttons are asserted on the same tick the first one here wins.
var Priority = [...]Button{ButtonUp, ButtonDown, ButtonLeft, ButtonRight, ButtonSelect}

// String returns the button name
func (b Button) String() string {
	switch b {
	case ButtonUp:
		return "up"
	case ButtonDown:
		return "down"
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	case ButtonSelect:
		return "select"
	case 0:
		return "none"
	default:
		return Buttons(b).String()
	}
}

// Buttons is a set of buttons.
type Buttons uint8

// Has reports whether b is in the set.
func (s Buttons) Has(b Button) bool {
	return s&Buttons(b) != 0
}

// With returns the set with b added.
func (s Buttons) With(b Button) Buttons {
	return s | Buttons(b)
}

// Without returns the set with b removed.
func (s Buttons) Without(b Button) Buttons {
	return s &^ Buttons(b)
}

// First returns the highest-priority button in the set.
func (s Buttons) First() (Button, bool) {
	for _, b := range Priority {
		if s.Has(b) {
			return b, true
		}
	}
	return 0, false
}

func (s Buttons) String() string {
	if s == 0 {
		return "none"
	}
	var names []string
	for _, b := range Priority {
		if s.Has(b) {
			names = append(names, b.String())
		}
	}
	return strings.Join(names, "+")
}

// Press builds a button set, mostly for scripting tests.
func Press(buttons ...Button) Buttons {
	var s Buttons
	for _, b := range buttons {
		s = s.With(b)
	}
	return s
}
