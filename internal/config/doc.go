// Package config manages the lcdpacket configuration file.
//
// The file is YAML by default; a path ending in .toml is read and written
// as TOML. A missing file means defaults. Values a file leaves out are
// filled in before validation.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/lcdpacket/config.yaml or $HOME/.config/lcdpacket/config.yaml
//   - macOS: $HOME/.config/lcdpacket/config.yaml
//   - Windows: %LOCALAPPDATA%\lcdpacket\config.yaml
//
// LCDPKT_CONFIG overrides the location. LoadEnv reads .env files first so
// the override and the LCDPKT_LOG_* variables can live there.
//
// # Example
//
//	version: 1
//	interface: eth0
//	sender:
//	  address: /run/lcdpkt-sender.sock
//	display:
//	  tick: 20ms
//	  hold: 2s
//	packet:
//	  delay: 1s
//	  pcap_file: /srv/captures/sample.pcap
//	defaults:
//	  IP:
//	    dst: 10.0.24.243
//	    ttl: "64"
//
// Layer defaults are protocol values ("10.0.24.243", "2048"), not display
// text. Defaults resolves them together with the live interface MAC and
// IPv4 address for the catalog.
package config
