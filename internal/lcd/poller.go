package lcd

import "github.com/muurk/lcdpacket/internal/logging"

// poller turns sampled button levels into discrete presses.
//
// A button that produced a press is latched and cannot produce another until
// a tick sees it released, so a press held across many ticks yields exactly
// one transition. The latch lives on the Panel and survives between sessions:
// a Select still held after committing one field does not commit the next.
type poller struct {
	latched Buttons
}

func sample(d Display) Buttons {
	if s, ok := d.(Sampler); ok {
		s.Sample()
	}
	var pressed Buttons
	for _, b := range Priority {
		if d.Pressed(b) {
			pressed = pressed.With(b)
		}
	}
	return pressed
}

func (p *poller) step(d Display) (Button, bool) {
	pressed := sample(d)

	// Released buttons unlatch.
	p.latched &= pressed

	fresh := pressed &^ p.latched
	b, ok := fresh.First()
	if !ok {
		return 0, false
	}
	p.latched = p.latched.With(b)
	logging.LogButton(b.String(), "press")
	return b, true
}
