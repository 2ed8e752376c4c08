package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lcdpacket/internal/discovery"
)

var senderColumns = []string{"INSTANCE", "ADDRESS", "INTERFACE", "VERSION"}

// RenderSenders renders discovered senders as a table, one row per sender.
func RenderSenders(senders []*discovery.Sender, width int) string {
	width = max(width, MinTerminalWidth)
	if len(senders) == 0 {
		return TroubleshootingItemStyle.Render("No senders found")
	}

	rows := make([][]string, 0, len(senders))
	for _, s := range senders {
		iface := s.GetMetadata(discovery.MetaInterface)
		if iface == "" {
			iface = "-"
		}
		ver := s.GetMetadata(discovery.MetaVersion)
		if ver == "" {
			ver = "-"
		}
		rows = append(rows, []string{s.Instance, s.URL(), iface, ver})
	}

	widths := make([]int, len(senderColumns))
	for i, c := range senderColumns {
		widths[i] = len(c)
	}
	for _, r := range rows {
		for i, cell := range r {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	b.WriteString(tableLine(HeaderParamKeyStyle.PaddingLeft(0), senderColumns, widths))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(tableLine(ResultValueStyle, r, widths))
	}
	b.WriteString("\n\n")
	b.WriteString(TemplateStyle.Render(fmt.Sprintf("%d sender(s)", len(senders))))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width-2).
		Padding(0, 1).
		Render(b.String())
}

func tableLine(style lipgloss.Style, cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = style.Width(widths[i]).Render(c)
	}
	return strings.Join(parts, "  ")
}
