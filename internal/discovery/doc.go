// Package discovery finds sender daemons on the local network over mDNS.
//
// Senders advertise the "_lcdpkt._tcp" service. TXT records carry the
// WebSocket path ("path=/ws"), the transmit interface ("iface=eth0") and a
// version. Scanner collects answers until its timeout; Sender.URL gives an
// address transport.Dial accepts. Announce is the other side, used by the
// simulated sender.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Senders must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
