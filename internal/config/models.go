package config

import (
	"fmt"
	"time"
)

// CurrentVersion is the config document version this build reads and writes.
const CurrentVersion = 1

// Config represents the entire user configuration file.
type Config struct {
	Version   int           `yaml:"version" toml:"version"`
	Interface string        `yaml:"interface,omitempty" toml:"interface,omitempty"` // Interface the sender transmits on
	Sender    *SenderPrefs  `yaml:"sender,omitempty" toml:"sender,omitempty"`
	Display   *DisplayPrefs `yaml:"display,omitempty" toml:"display,omitempty"`
	Packet    *PacketPrefs  `yaml:"packet,omitempty" toml:"packet,omitempty"`
	Log       *LogPrefs     `yaml:"log,omitempty" toml:"log,omitempty"`

	// Defaults overrides field defaults in protocol form, keyed by layer then
	// field (e.g. defaults.IP.dst: 10.0.0.1).
	Defaults map[string]map[string]string `yaml:"defaults,omitempty" toml:"defaults,omitempty"`
}

// SenderPrefs says where the sender daemon is.
type SenderPrefs struct {
	Address         string   `yaml:"address,omitempty" toml:"address,omitempty"` // unix path, tcp:// or ws:// URL
	Instance        string   `yaml:"instance,omitempty" toml:"instance,omitempty"` // mDNS instance to look up when Address is empty
	DiscoverTimeout Duration `yaml:"discover_timeout" toml:"discover_timeout"`
}

// DisplayPrefs tunes the panel.
type DisplayPrefs struct {
	Width   int      `yaml:"width" toml:"width"`
	Tick    Duration `yaml:"tick" toml:"tick"`       // Button poll interval
	Hold    Duration `yaml:"hold" toml:"hold"`       // How long advisories stay up
	Refresh Duration `yaml:"refresh" toml:"refresh"` // Status line refresh interval
}

// PacketPrefs holds packet and sending defaults.
type PacketPrefs struct {
	PcapFile    string   `yaml:"pcap_file,omitempty" toml:"pcap_file,omitempty"` // Source for "Load Packet"
	SaveDir     string   `yaml:"save_dir,omitempty" toml:"save_dir,omitempty"`   // Finished packets are written here as pcap
	Delay       Duration `yaml:"delay" toml:"delay"`                             // Initial delay between packets
	RawMessages []string `yaml:"raw_messages,omitempty" toml:"raw_messages,omitempty"`
}

// LogPrefs mirrors the logging options.
type LogPrefs struct {
	Level string `yaml:"level,omitempty" toml:"level,omitempty"`
	File  string `yaml:"file,omitempty" toml:"file,omitempty"`
}

// Duration is a time.Duration written as text ("1.5s") in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// New creates a Config with default values.
func New() *Config {
	c := &Config{Version: CurrentVersion}
	c.applyDefaults()
	return c
}

// applyDefaults fills every section and zero value left out of a file.
func (c *Config) applyDefaults() {
	if c.Sender == nil {
		c.Sender = &SenderPrefs{}
	}
	if c.Sender.DiscoverTimeout == 0 {
		c.Sender.DiscoverTimeout = Duration(5 * time.Second)
	}

	if c.Display == nil {
		c.Display = &DisplayPrefs{}
	}
	if c.Display.Width == 0 {
		c.Display.Width = 16
	}
	if c.Display.Tick == 0 {
		c.Display.Tick = Duration(20 * time.Millisecond)
	}
	if c.Display.Hold == 0 {
		c.Display.Hold = Duration(2 * time.Second)
	}
	if c.Display.Refresh == 0 {
		c.Display.Refresh = Duration(time.Second)
	}

	if c.Packet == nil {
		c.Packet = &PacketPrefs{}
	}
	if c.Packet.Delay == 0 {
		c.Packet.Delay = Duration(time.Second)
	}

	if c.Log == nil {
		c.Log = &LogPrefs{}
	}
	if c.Defaults == nil {
		c.Defaults = make(map[string]map[string]string)
	}
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported config version: %d (expected %d)", c.Version, CurrentVersion)
	}
	if c.Display.Width < 8 {
		return fmt.Errorf("display.width %d is too narrow (min 8)", c.Display.Width)
	}
	if c.Display.Tick <= 0 {
		return fmt.Errorf("display.tick must be positive, got %v", c.Display.Tick.Std())
	}
	if c.Display.Hold < 0 {
		return fmt.Errorf("display.hold must not be negative, got %v", c.Display.Hold.Std())
	}
	if c.Display.Refresh <= 0 {
		return fmt.Errorf("display.refresh must be positive, got %v", c.Display.Refresh.Std())
	}
	if d := c.Packet.Delay.Std(); d < 0 || d >= 256*time.Second {
		return fmt.Errorf("packet.delay %v is outside 0s..255.999999s", d)
	}
	return nil
}

// SetDefault sets one layer field default.
func (c *Config) SetDefault(layer, field, value string) {
	if c.Defaults == nil {
		c.Defaults = make(map[string]map[string]string)
	}
	if c.Defaults[layer] == nil {
		c.Defaults[layer] = make(map[string]string)
	}
	c.Defaults[layer][field] = value
}
