package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes rendered components to an output stream at a fixed width.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a printer on stdout sized to the terminal.
func NewPrinter() *Printer {
	return NewPrinterTo(os.Stdout, GetTerminalWidth())
}

// NewPrinterTo creates a printer on w with the given width.
func NewPrinterTo(w io.Writer, width int) *Printer {
	return &Printer{out: w, width: max(width, MinTerminalWidth)}
}

// Width returns the render width.
func (p *Printer) Width() int {
	return p.width
}

// Println writes s followed by a newline.
func (p *Printer) Println(s string) {
	fmt.Fprintln(p.out, s)
}

// Newline writes an empty line.
func (p *Printer) Newline() {
	fmt.Fprintln(p.out)
}

// PrintHeader renders a command header.
func (p *Printer) PrintHeader(title, command string, params ...Param) {
	p.Println(NewHeader(title, command, params...).SetWidth(p.width).Render())
	p.Newline()
}

// outcome is how a finished command ends: its color, marker and label.
type outcome struct {
	color  lipgloss.Color
	marker string
	label  string
}

var (
	outcomeDone    = outcome{SuccessColor, SuccessMarker, "DONE"}
	outcomeWarning = outcome{WarningColor, WarningMarker, "WARNING"}
	outcomeFailed  = outcome{ErrorColor, FailureMarker, "FAILED"}
)

// PrintSuccess reports a finished command with its details in order.
func (p *Printer) PrintSuccess(title string, details ...Param) {
	p.Println(p.box(outcomeDone, title, details, nil, nil))
}

// PrintWarning reports a command that stopped short without failing.
func (p *Printer) PrintWarning(title string, details ...Param) {
	p.Println(p.box(outcomeWarning, title, details, nil, nil))
}

// PrintError reports a failure with what to check next.
func (p *Printer) PrintError(title string, err error, hints ...string) {
	p.Println(p.box(outcomeFailed, title, nil, err, hints))
}

// box lays out title, details, error and hints inside a double border in the
// outcome's color.
func (p *Printer) box(o outcome, title string, details []Param, err error, hints []string) string {
	titleStyle := lipgloss.NewStyle().Foreground(o.color).Bold(true)
	lines := []string{"", titleStyle.Render(fmt.Sprintf(" %s  %s  %s", o.marker, o.label, title)), ""}

	for _, d := range details {
		lines = append(lines, ResultKeyStyle.Render(" "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(details) > 0 {
		lines = append(lines, "")
	}
	if err != nil {
		lines = append(lines, ErrorMessageStyle.Render(" "+err.Error()), "")
	}
	if len(hints) > 0 {
		lines = append(lines, p.hints(hints), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(o.color).
		Width(p.width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func (p *Printer) hints(hints []string) string {
	rows := []string{TroubleshootingTitleStyle.Render("Try:")}
	for _, h := range hints {
		rows = append(rows, TroubleshootingItemStyle.Render("  • "+h))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(p.width-12, 40)).
		Padding(0, 1).
		Render(strings.Join(rows, "\n"))
}
