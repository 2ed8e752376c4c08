package discovery

import (
	"fmt"
	"time"
)

// Sender is a sender daemon found on the network.
type Sender struct {
	// Instance is the advertised instance name (e.g., "bench-pi")
	Instance string

	// Hostname is the mDNS hostname (e.g., "bench-pi.local.")
	Hostname string

	// IP is the preferred address, IPv4 when advertised
	IP string

	// Port is the control port
	Port int

	// Metadata holds TXT record data. Known keys: "path" (WebSocket path),
	// "iface" (interface the sender transmits on), "version", "tls".
	Metadata map[string]string

	// DiscoveredAt is when the sender answered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the sender
func (s *Sender) String() string {
	return fmt.Sprintf("Sender %s (%s) at %s:%d", s.Instance, s.Hostname, s.IP, s.Port)
}

// URL returns the WebSocket address for transport.Dial.
func (s *Sender) URL() string {
	path := s.GetMetadata(MetaPath)
	if path == "" {
		path = DefaultPath
	}
	if path[0] != '/' {
		path = "/" + path
	}
	scheme := "ws"
	if s.GetMetadata(MetaTLS) == "1" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s%s", scheme, hostPort(s.IP, s.Port), path)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (s *Sender) GetMetadata(key string) string {
	if s.Metadata == nil {
		return ""
	}
	return s.Metadata[key]
}
