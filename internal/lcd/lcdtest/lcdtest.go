// Package lcdtest provides a scripted Display for tests.
package lcdtest

import (
	"strings"
	"sync"

	"github.com/muurk/lcdpacket/internal/lcd"
)

// Write is one recorded WriteLine call.
type Write struct {
	Row  int
	Text string
}

// Display is an in-memory lcd.Display driven by a button script. Each
// Sample consumes one script step; once the script is exhausted no buttons
// read as pressed and Idle is closed.
type Display struct {
	mu      sync.Mutex
	width   int
	lines   [lcd.Rows][]rune
	col     int
	row     int
	blink   bool
	light   lcd.Color
	lights  []lcd.Color
	script  []lcd.Buttons
	pos     int
	current lcd.Buttons
	writes  []Write
	clears  int
	idle    chan struct{}
	idled   bool
}

// New returns a Display of the given width running steps.
func New(width int, steps ...lcd.Buttons) *Display {
	if width <= 0 {
		width = lcd.DefaultWidth
	}
	d := &Display{width: width, idle: make(chan struct{})}
	d.blank()
	d.script = append(d.script, steps...)
	return d
}

// Taps turns button presses into a script where every press is followed by a
// released tick, so repeated presses of one button are all seen.
func Taps(buttons ...lcd.Button) []lcd.Buttons {
	steps := make([]lcd.Buttons, 0, len(buttons)*2)
	for _, b := range buttons {
		steps = append(steps, lcd.Press(b), 0)
	}
	return steps
}

// Repeat returns b tapped n times.
func Repeat(b lcd.Button, n int) []lcd.Button {
	out := make([]lcd.Button, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// Push appends steps to the script.
func (d *Display) Push(steps ...lcd.Buttons) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.script = append(d.script, steps...)
}

func (d *Display) blank() {
	for i := range d.lines {
		d.lines[i] = []rune(strings.Repeat(" ", d.width))
	}
}

// Clear implements lcd.Display
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blank()
	d.clears++
}

// WriteLine implements lcd.Display
func (d *Display) WriteLine(row int, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writes = append(d.writes, Write{Row: row, Text: text})
	if row < 0 || row >= lcd.Rows {
		return
	}
	for i, r := range []rune(text) {
		if i >= d.width {
			break
		}
		d.lines[row][i] = r
	}
}

// SetCursor implements lcd.Display
func (d *Display) SetCursor(col, row int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.col, d.row = col, row
}

// Blink implements lcd.Blinker
func (d *Display) Blink(on bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.blink = on
}

// SetBacklight implements lcd.Backlight
func (d *Display) SetBacklight(c lcd.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.light = c
	d.lights = append(d.lights, c)
}

// Backlight returns the current color and every color set so far.
func (d *Display) Backlight() (lcd.Color, []lcd.Color) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.light, append([]lcd.Color(nil), d.lights...)
}

// Sample implements lcd.Sampler
func (d *Display) Sample() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pos < len(d.script) {
		d.current = d.script[d.pos]
		d.pos++
		return
	}
	d.current = 0
	if !d.idled {
		d.idled = true
		close(d.idle)
	}
}

// Pressed implements lcd.Display
func (d *Display) Pressed(b lcd.Button) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.Has(b)
}

// Idle is closed once the script has been fully consumed.
func (d *Display) Idle() <-chan struct{} {
	return d.idle
}

// Lines returns both rows with trailing spaces removed.
func (d *Display) Lines() [lcd.Rows]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out [lcd.Rows]string
	for i, l := range d.lines {
		out[i] = strings.TrimRight(string(l), " ")
	}
	return out
}

// Cursor returns the cursor position and blink state.
func (d *Display) Cursor() (col, row int, blink bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.col, d.row, d.blink
}

// Writes returns every WriteLine call so far.
func (d *Display) Writes() []Write {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Write(nil), d.writes...)
}

// Shown reports whether text was written to any row at some point.
func (d *Display) Shown(text string) bool {
	for _, w := range d.Writes() {
		if strings.TrimRight(w.Text, " ") == text {
			return true
		}
	}
	return false
}
