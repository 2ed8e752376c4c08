package catalog

import "github.com/muurk/lcdpacket/internal/sanitize"

// Layer names, in menu order.
const (
	Ether = "Ether"
	Dot1Q = "Dot1Q"
	IP    = "IP"
	TCP   = "TCP"
	UDP   = "UDP"
)

// Field templates.
const (
	MACTemplate       = "%h%h%h%h%h%h-%h%h%h%h%h%h"
	IPv4Template      = "%i%i%i.%i%i%i.%i%i%i.%i%i%i"
	EtherTypeTemplate = "0x%h%h%h%h"
	PortTemplate      = "%i%i%i%i%i"
)

func macField(name string) FieldSpec {
	return FieldSpec{
		Name:       name,
		Template:   MACTemplate,
		ToProtocol: sanitize.MACToProtocol,
		ToDisplay:  sanitize.MACToDisplay,
	}
}

func ipv4Field(name string) FieldSpec {
	return FieldSpec{
		Name:       name,
		Template:   IPv4Template,
		ToProtocol: sanitize.IPv4ToProtocol,
		ToDisplay:  sanitize.IPv4ToDisplay,
	}
}

// hexField is a "0x" prefixed field of digits hex digits holding bits bits.
func hexField(name string, digits, bits int) FieldSpec {
	tmpl := sanitize.HexPrefix
	for range digits {
		tmpl += "%h"
	}
	return FieldSpec{
		Name:       name,
		Template:   tmpl,
		ToProtocol: sanitize.HexToProtocol(bits),
		ToDisplay:  sanitize.HexToDisplay(digits, bits),
	}
}

// decimalField is a zero padded field of width decimal digits holding bits
// bits.
func decimalField(name string, width, bits int) FieldSpec {
	tmpl := ""
	for range width {
		tmpl += "%i"
	}
	return FieldSpec{
		Name:       name,
		Template:   tmpl,
		ToProtocol: sanitize.DecimalToProtocol(bits),
		ToDisplay:  sanitize.DecimalToDisplay(width, bits),
	}
}

// Standard returns the built-in catalog: Ether, Dot1Q, IP, TCP, UDP, with
// the built-in defaults bound.
func Standard() *Catalog {
	return New(
		LayerSpec{Name: Ether, Fields: []FieldSpec{
			macField("src"),
			macField("dst"),
			hexField("type", 4, 16),
		}},
		LayerSpec{Name: Dot1Q, Fields: []FieldSpec{
			decimalField("vlan", 4, 12),
			decimalField("prio", 1, 3),
			decimalField("id", 1, 1),
			hexField("type", 4, 16),
		}},
		LayerSpec{Name: IP, Fields: []FieldSpec{
			ipv4Field("src"),
			ipv4Field("dst"),
			decimalField("ttl", 3, 8),
		}},
		LayerSpec{Name: TCP, Fields: []FieldSpec{
			decimalField("sport", 5, 16),
			decimalField("dport", 5, 16),
			hexField("flags", 2, 8),
		}},
		LayerSpec{Name: UDP, Fields: []FieldSpec{
			decimalField("sport", 5, 16),
			decimalField("dport", 5, 16),
		}},
	).Resolve(Builtin)
}

// Builtin holds the defaults used when the configuration has none. The
// source MAC and IPv4 address come from the live interface at runtime.
var Builtin = Map{
	Ether: {
		"dst":  "b8:27:eb:61:1b:d4",
		"type": "2048",
	},
	Dot1Q: {
		"vlan": "1",
		"prio": "0",
		"id":   "1",
		"type": "0",
	},
	IP: {
		"dst": "10.0.24.243",
		"ttl": "64",
	},
	TCP: {
		"sport": "4321",
		"dport": "4321",
		"flags": "2",
	},
	UDP: {
		"sport": "4321",
		"dport": "4321",
	},
}
