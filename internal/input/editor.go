package input

import (
	"github.com/muurk/lcdpacket/internal/lcd"
)

// EditorState is one immutable snapshot of a value edit. Every transition
// returns a new state; the receiver is never modified.
//
// Focus always indexes an editable cell, or is NoInput when the sequence has
// none.
type EditorState struct {
	cells Sequence
	focus int
}

// NewEditorState starts an edit over cells with the focus on the first
// editable cell.
func NewEditorState(cells Sequence) EditorState {
	c := cells.clone()
	return EditorState{cells: c, focus: FindNext(c, -1)}
}

// Cells returns a copy of the cell sequence.
func (s EditorState) Cells() Sequence {
	return s.cells.clone()
}

// Focus returns the focused cell index, or NoInput.
func (s EditorState) Focus() int {
	return s.focus
}

// Empty reports the terminal "nothing to edit" condition.
func (s EditorState) Empty() bool {
	return s.focus == NoInput
}

// Text is the committed value: every cell value in order.
func (s EditorState) Text() string {
	return s.cells.String()
}

// Increment moves the focused cell one step up its alphabet (9 to 0, f to 0).
func (s EditorState) Increment() EditorState {
	return s.replace(Cell.Next)
}

// Decrement moves the focused cell one step down its alphabet.
func (s EditorState) Decrement() EditorState {
	return s.replace(Cell.Prev)
}

// Left moves the focus to the previous editable cell.
func (s EditorState) Left() EditorState {
	if s.Empty() {
		return s
	}
	s.focus = FindPrevious(s.cells, s.focus)
	return s
}

// Right moves the focus to the next editable cell.
func (s EditorState) Right() EditorState {
	if s.Empty() {
		return s
	}
	s.focus = FindNext(s.cells, s.focus)
	return s
}

func (s EditorState) replace(fn func(Cell) Cell) EditorState {
	if s.Empty() {
		return s
	}
	cells := s.cells.clone()
	cells[s.focus] = fn(cells[s.focus])
	s.cells = cells
	return s
}

// Apply performs the transition for one button press. It reports true when
// the press was Select, meaning the edit is committed and Text is final.
func (s EditorState) Apply(b lcd.Button) (EditorState, bool) {
	switch b {
	case lcd.ButtonUp:
		return s.Increment(), false
	case lcd.ButtonDown:
		return s.Decrement(), false
	case lcd.ButtonLeft:
		return s.Left(), false
	case lcd.ButtonRight:
		return s.Right(), false
	case lcd.ButtonSelect:
		return s, true
	}
	return s, false
}

// Render lays the cells out on the two display lines. Everything before the
// first line break is row 0, everything after it row 1. The cursor sits on
// the focused cell.
func (s EditorState) Render() lcd.Screen {
	var scr lcd.Screen

	brk := s.cells.Break()
	if brk < 0 {
		scr.Lines[0] = s.cells.String()
	} else {
		scr.Lines[0] = s.cells[:brk].String()
		scr.Lines[1] = s.cells[brk+1:].String()
	}

	if s.Empty() {
		return scr
	}
	scr.Cursor = true
	if brk >= 0 && s.focus > brk {
		scr.Row = 1
		scr.Col = s.focus - brk - 1
	} else {
		scr.Col = s.focus
	}
	return scr
}
