// Package packet turns assembled layers into bytes.
//
// Each catalog layer name has an Encoder producing a gopacket layer; the
// Builder stacks them, links IPv4 to the transport layer above it, and
// serializes with lengths and checksums fixed up:
//
//	b := packet.NewBuilder()
//	pkt, err := b.Build([]packet.Layer{ether, ip, udp}, 64)
//
// Build pads with a trailing null payload when the requested size exceeds
// the natural length and cuts the serialized bytes when it is smaller.
//
// PcapLoader reads a ready-made packet from a capture file instead.
package packet
