package input

import (
	"context"
	"time"

	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/logging"
	"go.uber.org/zap"
)

// Runner drives editor states from the panel buttons.
type Runner struct {
	panel *lcd.Panel
}

// NewRunner returns a Runner on panel.
func NewRunner(panel *lcd.Panel) *Runner {
	return &Runner{panel: panel}
}

// Panel returns the panel the runner draws on.
func (r *Runner) Panel() *lcd.Panel {
	return r.panel
}

// Format runs a cell edit of template seeded with seed and returns the
// committed text. The panel session is held from the first render until
// Select, so background writers cannot interleave with the edit.
//
// When the template has no editable cell the template is returned unchanged
// with ErrNothingToEdit and no button is read. The only other error is the
// context's, which ends the wait for input.
func (r *Runner) Format(ctx context.Context, template, seed string) (string, error) {
	state := NewEditorState(Parse(template).Seed(seed))
	if state.Empty() {
		logging.Advisory("Nothing to edit, returning template", zap.String("template", template))
		return template, ErrNothingToEdit
	}

	s := r.panel.Acquire()
	defer s.Release()

	s.Draw(state.Render())
	for {
		b, err := s.Wait(ctx)
		if err != nil {
			return "", err
		}
		next, done := state.Apply(b)
		if done {
			text := next.Text()
			logging.Debug("Field committed", zap.String("template", template), zap.String("text", text))
			return text, nil
		}
		state = next
		s.Draw(state.Render())
	}
}

// Choose runs the whole-string option mode and returns the selected index.
func (r *Runner) Choose(ctx context.Context, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	state := NewOptionState(options)

	s := r.panel.Acquire()
	defer s.Release()

	s.Draw(state.Render())
	for {
		b, err := s.Wait(ctx)
		if err != nil {
			return 0, err
		}
		next, done := state.Apply(b)
		if done {
			logging.Debug("Option chosen", zap.String("option", next.Current()))
			return next.Index(), nil
		}
		if next.Index() != state.Index() {
			s.Draw(next.Render())
		}
		state = next
	}
}

// Show puts text on the display and keeps it there for hold.
func (r *Runner) Show(ctx context.Context, text string, hold time.Duration) error {
	s := r.panel.Acquire()
	defer s.Release()

	s.Message(text)
	return s.Hold(ctx, hold)
}
