package packet

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/muurk/lcdpacket/internal/logging"
	"go.uber.org/zap"
)

// ErrUnknownLayer is returned for a layer name with no registered encoder.
var ErrUnknownLayer = errors.New("packet: unknown layer")

// Packet is a finished message. It is created at Finish and handed to the
// transport; nothing keeps it afterwards.
type Packet struct {
	Layers    []Layer
	Natural   int  // serialized length of Layers before sizing
	Size      int  // requested total length
	Bytes     []byte
	Truncated bool   // Size was below Natural and Bytes were cut
	Session   string // assembly session that produced the packet, if any
}

// Names returns the layer names in stack order.
func (p *Packet) Names() []string {
	names := make([]string, len(p.Layers))
	for i, l := range p.Layers {
		names[i] = l.Name
	}
	return names
}

// Summary is a one line description such as "Ether/IP/UDP 64B".
func (p *Packet) Summary() string {
	return fmt.Sprintf("%s %dB", strings.Join(p.Names(), "/"), len(p.Bytes))
}

// Builder stacks assembled layers and serializes them with gopacket.
type Builder struct {
	encoders map[string]Encoder
}

// NewBuilder returns a Builder with encoders for every catalog layer and the
// raw payload.
func NewBuilder() *Builder {
	return &Builder{encoders: standardEncoders()}
}

// Register adds or replaces the encoder for name.
func (b *Builder) Register(name string, e Encoder) {
	b.encoders[name] = e
}

// Supports reports whether name has an encoder.
func (b *Builder) Supports(name string) bool {
	_, ok := b.encoders[name]
	return ok
}

// Stack encodes layers and links them: an IPv4 layer takes its protocol from
// the transport layer after it, and TCP/UDP checksums are computed over the
// nearest IPv4 layer before them.
func (b *Builder) Stack(stack []Layer) ([]gopacket.SerializableLayer, error) {
	out := make([]gopacket.SerializableLayer, 0, len(stack))
	for _, l := range stack {
		e, ok := b.encoders[l.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, l.Name)
		}
		sl, err := e.Encode(l)
		if err != nil {
			return nil, err
		}
		out = append(out, sl)
	}

	var network *layers.IPv4
	for i, sl := range out {
		switch v := sl.(type) {
		case *layers.IPv4:
			network = v
			if i+1 < len(out) {
				switch out[i+1].(type) {
				case *layers.TCP:
					v.Protocol = layers.IPProtocolTCP
				case *layers.UDP:
					v.Protocol = layers.IPProtocolUDP
				}
			}
		case *layers.TCP:
			if network != nil {
				_ = v.SetNetworkLayerForChecksum(network)
			}
		case *layers.UDP:
			if network != nil {
				_ = v.SetNetworkLayerForChecksum(network)
			}
		}
	}
	return out, nil
}

// checksummable reports whether every TCP/UDP layer has an IPv4 layer before
// it; gopacket cannot compute transport checksums otherwise.
func checksummable(stack []gopacket.SerializableLayer) bool {
	seenIP := false
	for _, sl := range stack {
		switch sl.(type) {
		case *layers.IPv4:
			seenIP = true
		case *layers.TCP, *layers.UDP:
			if !seenIP {
				return false
			}
		}
	}
	return true
}

// Serialize stacks and serializes layers with lengths fixed up.
func (b *Builder) Serialize(stack []Layer) ([]byte, error) {
	sls, err := b.Stack(stack)
	if err != nil {
		return nil, err
	}

	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: checksummable(sls),
	}
	if !opts.ComputeChecksums {
		logging.Debug("Transport layer without IPv4, checksums left zero")
	}

	buf := gopacket.NewSerializeBuffer()
	if err := gopacket.SerializeLayers(buf, opts, sls...); err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return slices.Clone(buf.Bytes()), nil
}

// Length returns the serialized length of stack.
func (b *Builder) Length(stack []Layer) (int, error) {
	data, err := b.Serialize(stack)
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Build finishes stack at size bytes. A larger size appends a payload of
// null bytes as the last layer, so IP and UDP lengths and checksums cover the
// padding. A smaller size serializes the natural stack and cuts the bytes,
// marking the packet Truncated.
func (b *Builder) Build(stack []Layer, size int) (*Packet, error) {
	natural, err := b.Serialize(stack)
	if err != nil {
		return nil, err
	}

	p := &Packet{
		Layers:  slices.Clone(stack),
		Natural: len(natural),
		Size:    size,
		Bytes:   natural,
	}

	switch {
	case size > len(natural):
		p.Layers = append(p.Layers, Raw(strings.Repeat("\x00", size-len(natural))))
		p.Bytes, err = b.Serialize(p.Layers)
		if err != nil {
			return nil, err
		}
	case size < len(natural):
		p.Bytes = natural[:max(size, 0)]
		p.Truncated = true
	}

	logging.Debug("Packet built",
		zap.Strings("layers", p.Names()),
		zap.Int("natural", p.Natural),
		zap.Int("size", len(p.Bytes)),
		zap.Bool("truncated", p.Truncated))
	return p, nil
}
