package input

import (
	"strings"

	"github.com/muurk/lcdpacket/internal/lcd"
)

// OptionState is the whole-string mode of the editor: instead of cells, the
// operator cycles through a list of options. Up shows the next option, Down
// the previous one, both wrapping around; Select commits the shown index.
type OptionState struct {
	options []string
	index   int
}

// NewOptionState starts on the first option.
func NewOptionState(options []string) OptionState {
	return OptionState{options: append([]string(nil), options...)}
}

// Index returns the shown option index.
func (s OptionState) Index() int {
	return s.index
}

// Current returns the shown option, or "" for an empty list.
func (s OptionState) Current() string {
	if len(s.options) == 0 {
		return ""
	}
	return s.options[s.index]
}

// Len returns the number of options.
func (s OptionState) Len() int {
	return len(s.options)
}

func (s OptionState) move(delta int) OptionState {
	n := len(s.options)
	if n == 0 {
		return s
	}
	s.index = ((s.index+delta)%n + n) % n
	return s
}

// Apply performs the transition for one button press and reports whether the
// choice was committed. Left and Right do nothing in this mode.
func (s OptionState) Apply(b lcd.Button) (OptionState, bool) {
	switch b {
	case lcd.ButtonUp:
		return s.move(1), false
	case lcd.ButtonDown:
		return s.move(-1), false
	case lcd.ButtonSelect:
		return s, len(s.options) > 0
	}
	return s, false
}

// Render shows the current option, split at its first newline.
func (s OptionState) Render() lcd.Screen {
	var scr lcd.Screen
	first, second, _ := strings.Cut(s.Current(), "\n")
	scr.Lines[0] = first
	scr.Lines[1] = second
	return scr
}
