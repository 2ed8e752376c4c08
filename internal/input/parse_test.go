package input

import (
	"testing"

	"github.com/muurk/lcdpacket/internal/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func kindsOf(s Sequence) []Kind {
	out := make([]Kind, len(s))
	for i, c := range s {
		out[i] = c.Kind
	}
	return out
}

func TestParse(t *testing.T) {
	L, D, H := KindLiteral, KindDecimal, KindHex

	tests := []struct {
		name     string
		template string
		want     []Kind
		text     string
	}{
		{"empty", "", []Kind{}, ""},
		{"decimal", "%i", []Kind{D}, "0"},
		{"hex", "%h", []Kind{H}, "0"},
		{"ttl", "%i%i%i", []Kind{D, D, D}, "000"},
		{"ether type", "0x%h%h%h%h", []Kind{L, L, H, H, H, H}, "0x0000"},
		{"line break", "ttl:\n%i", []Kind{L, L, L, L, L, D}, "ttl:\n0"},
		{"unknown directive", "1%x", []Kind{L, L, L}, "1%x"},
		{"trailing percent", "%i%", []Kind{D, L}, "0%"},
		{"percent before directive", "%%i", []Kind{L, D}, "%0"},
		{"upper case is not a directive", "%I", []Kind{L, L}, "%I"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.template)
			kinds := kindsOf(got)
			if len(kinds) != len(tt.want) {
				t.Fatalf("Parse(%q) produced %d cells, want %d", tt.template, len(kinds), len(tt.want))
			}
			for i := range kinds {
				if kinds[i] != tt.want[i] {
					t.Errorf("cell %d kind = %v, want %v", i, kinds[i], tt.want[i])
				}
			}
			if got.String() != tt.text {
				t.Errorf("String() = %q, want %q", got.String(), tt.text)
			}
		})
	}
}

func TestParseUnknownDirectiveAdvisory(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logging.SetLogger(zap.New(core))
	defer logging.SetLogger(zap.NewNop())

	Parse("%q%i%z")

	advisories := logs.FilterField(zap.Bool(logging.AdvisoryKey, true)).Len()
	if advisories != 2 {
		t.Errorf("logged %d advisories, want 2", advisories)
	}
}

func TestSeed(t *testing.T) {
	tests := []struct {
		name     string
		template string
		seed     string
		want     string
	}{
		{"ip", "%i%i%i.%i%i%i.%i%i%i.%i%i%i", "010.000.024.243", "010.000.024.243"},
		{"mac", "%h%h%h%h%h%h-%h%h%h%h%h%h", "0a1b2c-3d4e5f", "0a1b2c-3d4e5f"},
		{"ether type with prefix", "0x%h%h%h%h", "0x0800", "0x0800"},
		{"prompt layout", "Size(bytes):\n%i%i%i%i", "Size(bytes):\n0042", "Size(bytes):\n0042"},
		{"bare digits", "%i%i%i.%i", "1234", "123.4"},
		{"skips foreign characters", "%i%i", "a1b2", "12"},
		{"hex rejects upper case", "%h%h", "AbC", "b0"},
		{"short seed", "%i%i%i%i", "12", "1200"},
		{"empty seed", "%h%h", "", "00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.template).Seed(tt.seed).String()
			if got != tt.want {
				t.Errorf("Seed(%q) = %q, want %q", tt.seed, got, tt.want)
			}
		})
	}
}

func TestSeedDoesNotModifyReceiver(t *testing.T) {
	cells := Parse("%i%i")
	_ = cells.Seed("99")
	if cells.String() != "00" {
		t.Errorf("receiver changed to %q", cells.String())
	}
}

func TestSequenceBreak(t *testing.T) {
	if got := Parse("a\nb\nc").Break(); got != 1 {
		t.Errorf("Break() = %d, want 1", got)
	}
	if got := Parse("abc").Break(); got != -1 {
		t.Errorf("Break() = %d, want -1", got)
	}
}
