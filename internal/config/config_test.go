package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muurk/lcdpacket/internal/catalog"
)

func TestGetConfigPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}
	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
	if !strings.Contains(configPath, appName) {
		t.Errorf("GetConfigPath() = %v, should contain %q", configPath, appName)
	}

	t.Setenv(EnvConfigPath, "/etc/lcdpacket.toml")
	if p, _ := GetConfigPath(); p != "/etc/lcdpacket.toml" {
		t.Errorf("GetConfigPath() = %v, want the %s override", p, EnvConfigPath)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Version != CurrentVersion {
		t.Errorf("New().Version = %v, want %v", cfg.Version, CurrentVersion)
	}
	if cfg.Display.Width != 16 {
		t.Errorf("New().Display.Width = %v, want 16", cfg.Display.Width)
	}
	if cfg.Display.Hold.Std() != 2*time.Second {
		t.Errorf("New().Display.Hold = %v, want 2s", cfg.Display.Hold.Std())
	}
	if cfg.Packet.Delay.Std() != time.Second {
		t.Errorf("New().Packet.Delay = %v, want 1s", cfg.Packet.Delay.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("New().Validate() error = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.Tick.Std() != 20*time.Millisecond {
		t.Errorf("Display.Tick = %v, want 20ms", cfg.Display.Tick.Std())
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
interface: eth1
sender:
  address: ws://10.0.0.2:8765/ws
display:
  tick: 5ms
packet:
  delay: 250ms
  raw_messages:
    - "Ping\nPong"
defaults:
  IP:
    dst: 192.168.1.1
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Interface != "eth1" {
		t.Errorf("Interface = %q, want eth1", cfg.Interface)
	}
	if cfg.Sender.Address != "ws://10.0.0.2:8765/ws" {
		t.Errorf("Sender.Address = %q", cfg.Sender.Address)
	}
	if cfg.Display.Tick.Std() != 5*time.Millisecond {
		t.Errorf("Display.Tick = %v, want 5ms", cfg.Display.Tick.Std())
	}
	if cfg.Display.Hold.Std() != 2*time.Second {
		t.Errorf("Display.Hold = %v, want the 2s default", cfg.Display.Hold.Std())
	}
	if cfg.Packet.Delay.Std() != 250*time.Millisecond {
		t.Errorf("Packet.Delay = %v, want 250ms", cfg.Packet.Delay.Std())
	}
	if len(cfg.Packet.RawMessages) != 1 || cfg.Packet.RawMessages[0] != "Ping\nPong" {
		t.Errorf("Packet.RawMessages = %q", cfg.Packet.RawMessages)
	}
	if cfg.Defaults["IP"]["dst"] != "192.168.1.1" {
		t.Errorf("Defaults[IP][dst] = %q", cfg.Defaults["IP"]["dst"])
	}
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `version = 1
interface = "eth0"

[display]
hold = "500ms"

[defaults.UDP]
dport = "53"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Display.Hold.Std() != 500*time.Millisecond {
		t.Errorf("Display.Hold = %v, want 500ms", cfg.Display.Hold.Std())
	}
	if cfg.Defaults["UDP"]["dport"] != "53" {
		t.Errorf("Defaults[UDP][dport] = %q, want 53", cfg.Defaults["UDP"]["dport"])
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"wrong version", "config.yaml", "version: 2\n"},
		{"bad duration", "config.yaml", "version: 1\ndisplay:\n  tick: soon\n"},
		{"delay too long", "config.yaml", "version: 1\npacket:\n  delay: 300s\n"},
		{"narrow display", "config.toml", "version = 1\n[display]\nwidth = 4\n"},
		{"broken yaml", "config.yaml", "version: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := New()
			cfg.Interface = "wlan0"
			cfg.Packet.PcapFile = "/tmp/sample.pcap"
			cfg.Display.Hold = Duration(1500 * time.Millisecond)
			cfg.SetDefault(catalog.TCP, "dport", "80")

			if err := cfg.Save(path); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
				t.Error("temporary file left behind")
			}

			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got.Interface != "wlan0" || got.Packet.PcapFile != "/tmp/sample.pcap" {
				t.Errorf("Load() = %+v", got)
			}
			if got.Display.Hold.Std() != 1500*time.Millisecond {
				t.Errorf("Display.Hold = %v, want 1.5s", got.Display.Hold.Std())
			}
			if got.Defaults[catalog.TCP]["dport"] != "80" {
				t.Errorf("Defaults[TCP][dport] = %q, want 80", got.Defaults[catalog.TCP]["dport"])
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LCDPKT_TEST_VALUE", "")
	os.Unsetenv("LCDPKT_TEST_VALUE")

	envDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(envDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, ".env"), []byte("LCDPKT_TEST_VALUE=from-env-file\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("LCDPKT_TEST_VALUE"); got != "from-env-file" {
		t.Errorf("LCDPKT_TEST_VALUE = %q, want from-env-file", got)
	}
}

func TestDefaults(t *testing.T) {
	cfg := New()
	cfg.Interface = "eth9"
	cfg.SetDefault(catalog.IP, "src", "192.0.2.1")

	lookup := func(name string) (InterfaceAddrs, error) {
		if name != "eth9" {
			t.Errorf("lookup(%q), want eth9", name)
		}
		return InterfaceAddrs{MAC: "02:00:00:aa:bb:cc", IPv4: "198.51.100.7"}, nil
	}
	d := NewDefaults(cfg, lookup)

	tests := []struct {
		layer, field string
		want         string
		ok           bool
	}{
		{catalog.Ether, "src", "02:00:00:aa:bb:cc", true},
		{catalog.IP, "src", "192.0.2.1", true}, // configured value wins
		{catalog.IP, "dst", "", false},
		{catalog.TCP, "sport", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.layer+"."+tt.field, func(t *testing.T) {
			got, ok := d.Default(tt.layer, tt.field)
			if got != tt.want || ok != tt.ok {
				t.Errorf("Default() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	spec, _ := d.Catalog().Lookup(catalog.Ether)
	src, _ := spec.Field("src")
	if src.Default != "02:00:00:aa:bb:cc" {
		t.Errorf("catalog Ether src default = %q", src.Default)
	}
	dst, _ := spec.Field("dst")
	if dst.Default != catalog.Builtin[catalog.Ether]["dst"] {
		t.Errorf("catalog Ether dst default = %q, want the built-in", dst.Default)
	}
}

func TestDefaultsLookupFailure(t *testing.T) {
	cfg := New()
	cfg.Interface = "missing0"
	d := NewDefaults(cfg, func(string) (InterfaceAddrs, error) {
		return InterfaceAddrs{}, errors.New("no such interface")
	})
	if _, ok := d.Default(catalog.Ether, "src"); ok {
		t.Error("Default() should have no live value after a lookup failure")
	}
}
