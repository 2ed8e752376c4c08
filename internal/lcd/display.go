package lcd

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultWidth is the column count of the 16x2 character plate.
	DefaultWidth = 16

	// Rows is the number of display lines.
	Rows = 2

	// DefaultTick is the button sampling period.
	DefaultTick = 150 * time.Millisecond
)

// Display is the character display and button driver.
//
// Implementations are not required to be safe for concurrent use; all
// access goes through a Panel, which serializes callers.
type Display interface {
	Clear()
	// WriteLine writes text starting at column 0 of row. Text longer than
	// the display width is truncated by the driver.
	WriteLine(row int, text string)
	SetCursor(col, row int)
	Pressed(b Button) bool
}

// Blinker is implemented by displays with a controllable blinking cursor.
type Blinker interface {
	Blink(on bool)
}

// Sampler is implemented by drivers that latch the button register once per
// tick. Sample is called before the Pressed calls of a tick so they all see
// the same snapshot.
type Sampler interface {
	Sample()
}

// Color is a backlight color.
type Color uint8

// Backlight colors of the RGB plate.
const (
	ColorOff Color = iota
	ColorGreen
	ColorBlue
	ColorRed
)

// String returns the color name
func (c Color) String() string {
	switch c {
	case ColorOff:
		return "off"
	case ColorGreen:
		return "green"
	case ColorBlue:
		return "blue"
	case ColorRed:
		return "red"
	default:
		return "unknown"
	}
}

// Backlight is implemented by displays with a colored backlight.
type Backlight interface {
	SetBacklight(c Color)
}

// Screen is one complete frame for the display.
type Screen struct {
	Lines  [Rows]string
	Col    int
	Row    int
	Cursor bool // show the blinking cursor at Col, Row
}

// Panel owns a Display and the single lock that serializes the foreground
// editing session against the background status refresher.
type Panel struct {
	mu      sync.Mutex
	display Display
	width   int
	tick    time.Duration
	poller  poller
}

// NewPanel wraps d. Zero width or tick select the defaults.
func NewPanel(d Display, width int, tick time.Duration) *Panel {
	if width <= 0 {
		width = DefaultWidth
	}
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Panel{
		display: d,
		width:   width,
		tick:    tick,
	}
}

// Width returns the display width in columns.
func (p *Panel) Width() int {
	return p.width
}

// Tick returns the button sampling period.
func (p *Panel) Tick() time.Duration {
	return p.tick
}

// Acquire locks the panel and returns a session. The caller must Release it.
// A session is held for a whole field edit so background writers cannot
// interleave with it.
func (p *Panel) Acquire() *Session {
	p.mu.Lock()
	return &Session{panel: p}
}

// WriteLine overwrites one row, padded with spaces to the panel width so the
// previous contents are cleared. The lock is held only for this write.
func (p *Panel) WriteLine(row int, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.display.SetCursor(0, row)
	p.display.WriteLine(row, padLine(text, p.width))
}

// SetBacklight sets the backlight color if the display has one.
func (p *Panel) SetBacklight(c Color) {
	bl, ok := p.display.(Backlight)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	bl.SetBacklight(c)
}

// Poll samples the buttons once under the lock and returns a debounced press.
func (p *Panel) Poll() (Button, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.poller.step(p.display)
}

// Session is exclusive access to the display.
type Session struct {
	panel    *Panel
	released bool
}

// Release unlocks the panel. Calling it more than once is a no-op.
func (s *Session) Release() {
	if s.released {
		return
	}
	s.released = true
	s.panel.mu.Unlock()
}

// Clear blanks the display.
func (s *Session) Clear() {
	s.panel.display.Clear()
}

// Draw clears the display and shows scr.
func (s *Session) Draw(scr Screen) {
	d := s.panel.display
	d.Clear()
	for row, line := range scr.Lines {
		if line == "" {
			continue
		}
		d.WriteLine(row, line)
	}
	if b, ok := d.(Blinker); ok {
		b.Blink(scr.Cursor)
	}
	if scr.Cursor {
		d.SetCursor(scr.Col, scr.Row)
	}
}

// Message shows text on the display, splitting at the first newline. The
// cursor is hidden.
func (s *Session) Message(text string) {
	var scr Screen
	first, second, _ := strings.Cut(text, "\n")
	scr.Lines[0] = first
	scr.Lines[1] = second
	s.Draw(scr)
}

// Wait blocks until a debounced button press is available, sampling once per
// tick. Only ctx ends the wait; there is no timeout.
func (s *Session) Wait(ctx context.Context) (Button, error) {
	ticker := time.NewTicker(s.panel.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ticker.C:
		}
		if b, ok := s.panel.poller.step(s.panel.display); ok {
			return b, nil
		}
	}
}

// Hold keeps the session (and what is on screen) for d.
func (s *Session) Hold(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func padLine(text string, width int) string {
	n := len([]rune(text))
	if n >= width {
		return text
	}
	return text + strings.Repeat(" ", width-n)
}
