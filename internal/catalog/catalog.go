package catalog

import (
	"fmt"
	"strings"

	"github.com/muurk/lcdpacket/internal/sanitize"
)

// FieldSpec describes how one layer field is edited and converted.
type FieldSpec struct {
	Name       string
	Template   string         // format template of the value, without the name
	Default    string         // protocol form; "" edits from zeros
	ToProtocol sanitize.Chain // display text -> protocol text
	ToDisplay  sanitize.Chain // protocol text -> display text
}

// EditTemplate is the full template shown to the operator: the field name on
// the first row and the value on the second.
func (f FieldSpec) EditTemplate() string {
	return f.Label() + f.Template
}

// Label is the field name line that leads EditTemplate.
func (f FieldSpec) Label() string {
	return f.Name + ":\n"
}

// Seed returns the seed for EditTemplate, laid out like it. A field without a
// default is seeded with its label only, so every cell starts at zero.
func (f FieldSpec) Seed() (string, error) {
	if f.Default == "" {
		return f.Label(), nil
	}
	display, err := f.Display(f.Default)
	if err != nil {
		return "", err
	}
	return f.Label() + display, nil
}

// Display converts a protocol value to display text.
func (f FieldSpec) Display(protocol string) (string, error) {
	out, err := sanitize.Sanitize(protocol, f.ToDisplay)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.Name, err)
	}
	return out, nil
}

// Protocol converts committed edit text to protocol form. committed may be
// the whole edit (label included) or just the value.
func (f FieldSpec) Protocol(committed string) (string, error) {
	out, err := sanitize.Sanitize(Value(committed), f.ToProtocol)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.Name, err)
	}
	return out, nil
}

// Value strips the label from committed edit text: everything after the
// first newline, or the whole text when there is none.
func Value(committed string) string {
	if _, v, ok := strings.Cut(committed, "\n"); ok {
		return v
	}
	return committed
}

// LayerSpec is one layer type. Field order is display and construction order.
type LayerSpec struct {
	Name   string
	Fields []FieldSpec
}

// Field looks a field up by name.
func (l LayerSpec) Field(name string) (FieldSpec, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Defaults supplies resolved default values in protocol form.
type Defaults interface {
	Default(layer, field string) (string, bool)
}

// Map is a Defaults backed by nested maps, layer then field.
type Map map[string]map[string]string

// Default implements Defaults
func (m Map) Default(layer, field string) (string, bool) {
	v, ok := m[layer][field]
	return v, ok
}

// Catalog is the ordered set of layer types offered to the operator.
type Catalog struct {
	layers []LayerSpec
}

// New builds a catalog from layers in menu order.
func New(layers ...LayerSpec) *Catalog {
	return &Catalog{layers: cloneLayers(layers)}
}

// Layers returns the layers in menu order.
func (c *Catalog) Layers() []LayerSpec {
	return cloneLayers(c.layers)
}

// Names returns the layer names in menu order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.layers))
	for i, l := range c.layers {
		names[i] = l.Name
	}
	return names
}

// Lookup finds a layer by name.
func (c *Catalog) Lookup(name string) (LayerSpec, bool) {
	for _, l := range c.layers {
		if l.Name == name {
			return cloneLayer(l), true
		}
	}
	return LayerSpec{}, false
}

// Resolve returns a copy of c with defaults bound from d. Fields d has no
// value for keep the default they already had.
func (c *Catalog) Resolve(d Defaults) *Catalog {
	out := New(c.layers...)
	if d == nil {
		return out
	}
	for i := range out.layers {
		l := &out.layers[i]
		for j := range l.Fields {
			if v, ok := d.Default(l.Name, l.Fields[j].Name); ok {
				l.Fields[j].Default = v
			}
		}
	}
	return out
}

func cloneLayers(layers []LayerSpec) []LayerSpec {
	out := make([]LayerSpec, len(layers))
	for i, l := range layers {
		out[i] = cloneLayer(l)
	}
	return out
}

func cloneLayer(l LayerSpec) LayerSpec {
	l.Fields = append([]FieldSpec(nil), l.Fields...)
	return l
}
