package lcd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by Emulator.Run when stdin is not a terminal.
var ErrNoTerminal = errors.New("lcd: emulator requires an interactive terminal")

// refreshInterval is how often the emulator redraws the plate.
const refreshInterval = 50 * time.Millisecond

// maxQueuedPresses bounds key presses waiting to be sampled; extra presses
// are dropped.
const maxQueuedPresses = 16

// Emulator renders a character plate in the terminal and maps the arrow keys
// and Enter onto the five plate buttons. It implements Display, Blinker,
// Sampler and Backlight; the backlight tints the plate border.
//
// Terminals do not report key releases, so each key press is queued and
// replayed as the button being down for one sample followed by a sample with
// every button up. Repeated taps of one key each count.
type Emulator struct {
	mu       sync.Mutex
	width    int
	lines    [Rows][]rune
	col, row int
	blink    bool
	light    Color
	pending  []Button
	snapshot Buttons
	quit     chan struct{}
	quitOnce sync.Once
}

// NewEmulator creates an emulated plate of the given width.
func NewEmulator(width int) *Emulator {
	if width <= 0 {
		width = DefaultWidth
	}
	e := &Emulator{width: width, quit: make(chan struct{})}
	e.clearLocked()
	return e
}

// Clear implements Display
func (e *Emulator) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearLocked()
	e.col, e.row = 0, 0
}

func (e *Emulator) clearLocked() {
	for i := range e.lines {
		e.lines[i] = []rune(strings.Repeat(" ", e.width))
	}
}

// WriteLine implements Display
func (e *Emulator) WriteLine(row int, text string) {
	if row < 0 || row >= Rows {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	line := e.lines[row]
	for i, r := range []rune(text) {
		if i >= e.width {
			break
		}
		line[i] = r
	}
}

// SetCursor implements Display
func (e *Emulator) SetCursor(col, row int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.col, e.row = col, row
}

// Blink implements Blinker
func (e *Emulator) Blink(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.blink = on
}

// SetBacklight implements Backlight
func (e *Emulator) SetBacklight(c Color) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.light = c
}

// Sample implements Sampler
func (e *Emulator) Sample() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.snapshot != 0 {
		e.snapshot = 0
		return
	}
	if len(e.pending) > 0 {
		e.snapshot = Buttons(0).With(e.pending[0])
		e.pending = e.pending[1:]
	}
}

// Pressed implements Display
func (e *Emulator) Pressed(b Button) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot.Has(b)
}

func (e *Emulator) press(b Button) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.pending) >= maxQueuedPresses {
		return
	}
	e.pending = append(e.pending, b)
}

// Quit returns a channel closed when the operator quits the emulator.
func (e *Emulator) Quit() <-chan struct{} {
	return e.quit
}

func (e *Emulator) requestQuit() {
	e.quitOnce.Do(func() { close(e.quit) })
}

// Lines returns the current contents of both rows.
func (e *Emulator) Lines() [Rows]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out [Rows]string
	for i, l := range e.lines {
		out[i] = string(l)
	}
	return out
}

// Run drives the terminal UI until ctx is cancelled or the operator quits.
func (e *Emulator) Run(ctx context.Context) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrNoTerminal
	}

	p := tea.NewProgram(newEmulatorModel(e), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("emulator: %w", err)
	}
	return nil
}

// emulatorKeyMap defines key bindings for the plate buttons
type emulatorKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k emulatorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Left, k.Right, k.Select, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k emulatorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Select, k.Quit},
	}
}

func defaultEmulatorKeys() emulatorKeyMap {
	return emulatorKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "right"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

type emulatorModel struct {
	emu  *Emulator
	keys emulatorKeyMap
	help help.Model
}

func newEmulatorModel(e *Emulator) emulatorModel {
	return emulatorModel{
		emu:  e,
		keys: defaultEmulatorKeys(),
		help: help.New(),
	}
}

// Init implements tea.Model
func (m emulatorModel) Init() tea.Cmd {
	return refresh()
}

// Update implements tea.Model
func (m emulatorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		return m, refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.emu.requestQuit()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			m.emu.press(ButtonUp)
		case key.Matches(msg, m.keys.Down):
			m.emu.press(ButtonDown)
		case key.Matches(msg, m.keys.Left):
			m.emu.press(ButtonLeft)
		case key.Matches(msg, m.keys.Right):
			m.emu.press(ButtonRight)
		case key.Matches(msg, m.keys.Select):
			m.emu.press(ButtonSelect)
		}
	}
	return m, nil
}

// View implements tea.Model
func (m emulatorModel) View() string {
	m.emu.mu.Lock()
	var lines [Rows][]rune
	for i, l := range m.emu.lines {
		lines[i] = append([]rune(nil), l...)
	}
	col, row, blink, light := m.emu.col, m.emu.row, m.emu.blink, m.emu.light
	m.emu.mu.Unlock()

	rendered := make([]string, 0, Rows)
	for i, l := range lines {
		if blink && i == row && col >= 0 && col < len(l) {
			rendered = append(rendered,
				plateTextStyle.Render(string(l[:col]))+
					cursorStyle.Render(string(l[col]))+
					plateTextStyle.Render(string(l[col+1:])))
			continue
		}
		rendered = append(rendered, plateTextStyle.Render(string(l)))
	}

	plate := plateStyle.
		BorderForeground(backlightColors[light]).
		Render(strings.Join(rendered, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("lcdpkt"),
		plate,
		m.help.View(m.keys),
	)
}

var (
	plateColor  = lipgloss.Color("#2E5E1E")
	pixelColor  = lipgloss.Color("#C8F08F")
	accentColor = lipgloss.Color("#7D56F4")

	titleStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			MarginBottom(1)

	plateStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Background(plateColor).
			Padding(0, 1)

	plateTextStyle = lipgloss.NewStyle().
			Foreground(pixelColor).
			Background(plateColor)

	cursorStyle = plateTextStyle.Reverse(true)

	backlightColors = map[Color]lipgloss.Color{
		ColorOff:   accentColor,
		ColorGreen: lipgloss.Color("#04B575"),
		ColorBlue:  lipgloss.Color("#3C91E6"),
		ColorRed:   lipgloss.Color("#FF4672"),
	}
)
