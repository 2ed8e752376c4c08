package packet

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/muurk/lcdpacket/internal/catalog"
)

// Encoder turns an assembled layer into a gopacket layer.
type Encoder interface {
	Encode(l Layer) (gopacket.SerializableLayer, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(l Layer) (gopacket.SerializableLayer, error)

// Encode implements Encoder
func (f EncoderFunc) Encode(l Layer) (gopacket.SerializableLayer, error) {
	return f(l)
}

// ethernet writes the 14-byte header only. layers.Ethernet pads frames to the
// 60-byte minimum, which would hide the stack's natural length.
type ethernet struct {
	*layers.Ethernet
}

// SerializeTo implements gopacket.SerializableLayer
func (e ethernet) SerializeTo(b gopacket.SerializeBuffer, _ gopacket.SerializeOptions) error {
	hdr, err := b.PrependBytes(14)
	if err != nil {
		return err
	}
	copy(hdr, e.DstMAC)
	copy(hdr[6:], e.SrcMAC)
	hdr[12] = byte(e.EthernetType >> 8)
	hdr[13] = byte(e.EthernetType)
	return nil
}

func encodeEther(l Layer) (gopacket.SerializableLayer, error) {
	r := fieldReader{layer: l}
	eth := &layers.Ethernet{
		SrcMAC:       r.mac("src"),
		DstMAC:       r.mac("dst"),
		EthernetType: layers.EthernetType(r.uint("type", 16)),
	}
	if r.err != nil {
		return nil, r.err
	}
	return ethernet{eth}, nil
}

func encodeDot1Q(l Layer) (gopacket.SerializableLayer, error) {
	r := fieldReader{layer: l}
	tag := &layers.Dot1Q{
		Priority:       uint8(r.uint("prio", 3)),
		DropEligible:   r.uint("id", 1) == 1,
		VLANIdentifier: uint16(r.uint("vlan", 12)),
		Type:           layers.EthernetType(r.uint("type", 16)),
	}
	if r.err != nil {
		return nil, r.err
	}
	return tag, nil
}

func encodeIPv4(l Layer) (gopacket.SerializableLayer, error) {
	r := fieldReader{layer: l}
	ip := &layers.IPv4{
		Version: 4,
		IHL:     5,
		TTL:     uint8(r.uint("ttl", 8)),
		SrcIP:   r.ipv4("src"),
		DstIP:   r.ipv4("dst"),
	}
	if r.err != nil {
		return nil, r.err
	}
	return ip, nil
}

// TCP flag bits in header order.
const (
	flagFIN = 1 << iota
	flagSYN
	flagRST
	flagPSH
	flagACK
	flagURG
	flagECE
	flagCWR
)

func encodeTCP(l Layer) (gopacket.SerializableLayer, error) {
	r := fieldReader{layer: l}
	flags := r.uint("flags", 8)
	tcp := &layers.TCP{
		SrcPort:    layers.TCPPort(r.uint("sport", 16)),
		DstPort:    layers.TCPPort(r.uint("dport", 16)),
		DataOffset: 5,
		Window:     8192,
		FIN:        flags&flagFIN != 0,
		SYN:        flags&flagSYN != 0,
		RST:        flags&flagRST != 0,
		PSH:        flags&flagPSH != 0,
		ACK:        flags&flagACK != 0,
		URG:        flags&flagURG != 0,
		ECE:        flags&flagECE != 0,
		CWR:        flags&flagCWR != 0,
	}
	if r.err != nil {
		return nil, r.err
	}
	return tcp, nil
}

func encodeUDP(l Layer) (gopacket.SerializableLayer, error) {
	r := fieldReader{layer: l}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(r.uint("sport", 16)),
		DstPort: layers.UDPPort(r.uint("dport", 16)),
	}
	if r.err != nil {
		return nil, r.err
	}
	return udp, nil
}

func encodeRaw(l Layer) (gopacket.SerializableLayer, error) {
	return gopacket.Payload(l.Fields[LoadField]), nil
}

// standardEncoders is the static registry for the catalog layers.
func standardEncoders() map[string]Encoder {
	return map[string]Encoder{
		catalog.Ether: EncoderFunc(encodeEther),
		catalog.Dot1Q: EncoderFunc(encodeDot1Q),
		catalog.IP:    EncoderFunc(encodeIPv4),
		catalog.TCP:   EncoderFunc(encodeTCP),
		catalog.UDP:   EncoderFunc(encodeUDP),
		RawName:       EncoderFunc(encodeRaw),
	}
}
