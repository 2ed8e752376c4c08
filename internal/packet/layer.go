package packet

import (
	"fmt"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
)

// RawName is the name of the raw payload pseudo-layer. Its text is in the
// "load" field.
const RawName = "Raw"

// LoadField is the field of a raw layer holding the payload text.
const LoadField = "load"

// Layer is one assembled layer: a name from the catalog and its field values
// in protocol form. A Layer is not modified once appended to a stack.
type Layer struct {
	Name   string
	Fields map[string]string
}

// NewLayer copies fields into a new Layer.
func NewLayer(name string, fields map[string]string) Layer {
	return Layer{Name: name, Fields: maps.Clone(fields)}
}

// Raw returns a raw payload layer carrying load.
func Raw(load string) Layer {
	return NewLayer(RawName, map[string]string{LoadField: load})
}

// String renders the layer like "IP(dst=10.0.24.243 src=10.0.0.1 ttl=64)"
// with fields sorted by name.
func (l Layer) String() string {
	names := make([]string, 0, len(l.Fields))
	for k := range l.Fields {
		names = append(names, k)
	}
	slices.Sort(names)

	parts := make([]string, len(names))
	for i, k := range names {
		parts[i] = k + "=" + l.Fields[k]
	}
	return l.Name + "(" + strings.Join(parts, " ") + ")"
}

// FieldError reports a field value a layer encoder could not use.
type FieldError struct {
	Layer string
	Field string
	Value string
	Err   error
}

// Error implements the error interface
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s=%q: %v", e.Layer, e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error
func (e *FieldError) Unwrap() error {
	return e.Err
}

// fieldReader converts protocol-form field text into typed values. The
// first failure is kept and later reads are no-ops, so encoders read every
// field and check err once.
type fieldReader struct {
	layer Layer
	err   error
}

func (r *fieldReader) fail(field, value string, err error) {
	if r.err == nil {
		r.err = &FieldError{Layer: r.layer.Name, Field: field, Value: value, Err: err}
	}
}

func (r *fieldReader) uint(field string, bits int) uint64 {
	v, ok := r.layer.Fields[field]
	if !ok || v == "" || r.err != nil {
		return 0
	}
	n, err := strconv.ParseUint(v, 10, bits)
	if err != nil {
		r.fail(field, v, err)
		return 0
	}
	return n
}

func (r *fieldReader) mac(field string) net.HardwareAddr {
	v, ok := r.layer.Fields[field]
	if !ok || v == "" || r.err != nil {
		return make(net.HardwareAddr, 6)
	}
	hw, err := net.ParseMAC(v)
	if err == nil && len(hw) != 6 {
		err = fmt.Errorf("not a 48-bit address")
	}
	if err != nil {
		r.fail(field, v, err)
		return make(net.HardwareAddr, 6)
	}
	return hw
}

func (r *fieldReader) ipv4(field string) net.IP {
	v, ok := r.layer.Fields[field]
	if !ok || v == "" || r.err != nil {
		return net.IPv4zero.To4()
	}
	ip := net.ParseIP(v).To4()
	if ip == nil {
		r.fail(field, v, fmt.Errorf("not an IPv4 address"))
		return net.IPv4zero.To4()
	}
	return ip
}
