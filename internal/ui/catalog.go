package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/lcdpacket/internal/catalog"
	"github.com/muurk/lcdpacket/internal/input"
)

// FieldPreview is one catalog field as the plate first shows it.
type FieldPreview struct {
	Name     string
	Template string
	Default  string // protocol form, "" when the field edits from zeros
	Plate    [2]string
}

// PreviewField seeds the field's edit template with its default and renders
// the resulting plate.
func PreviewField(f catalog.FieldSpec) (FieldPreview, error) {
	seed, err := f.Seed()
	if err != nil {
		return FieldPreview{}, err
	}
	state := input.NewEditorState(input.Parse(f.EditTemplate()).Seed(seed))
	scr := state.Render()
	return FieldPreview{
		Name:     f.Name,
		Template: f.Template,
		Default:  f.Default,
		Plate:    [2]string{scr.Lines[0], scr.Lines[1]},
	}, nil
}

// RenderCatalog lists every layer of c with its fields, templates and seeded
// plate previews.
func RenderCatalog(c *catalog.Catalog, width int) (string, error) {
	width = max(width, MinTerminalWidth)
	var blocks []string

	for _, layer := range c.Layers() {
		rows := []string{LayerTitleStyle.Render(layer.Name)}
		for _, f := range layer.Fields {
			fp, err := PreviewField(f)
			if err != nil {
				return "", fmt.Errorf("layer %s: %w", layer.Name, err)
			}
			rows = append(rows, renderFieldPreview(fp))
		}
		if len(layer.Fields) == 0 {
			rows = append(rows, TemplateStyle.Render("  (no editable fields)"))
		}
		blocks = append(blocks, strings.Join(rows, "\n"))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width-2).
		Padding(0, 1).
		Render(strings.Join(blocks, "\n\n")), nil
}

func renderFieldPreview(fp FieldPreview) string {
	def := fp.Default
	if def == "" {
		def = "-"
	}
	plate := lipgloss.JoinVertical(lipgloss.Left,
		PlateTextStyle.Render(fp.Plate[0]),
		PlateTextStyle.Render(fp.Plate[1]))
	info := lipgloss.JoinVertical(lipgloss.Left,
		FieldNameStyle.Render("  "+fp.Name)+" "+TemplateStyle.Render(fp.Template),
		FieldNameStyle.Render("")+" "+ResultValueStyle.Render("default "+def))
	return lipgloss.JoinHorizontal(lipgloss.Top, info, "   ", plate)
}
