package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/logging"
)

const (
	// ServiceType is the mDNS service type senders advertise
	ServiceType = "_lcdpkt._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for sender discovery
	DefaultScanTimeout = 5 * time.Second

	// QuickScanTimeout bounds QuickScan
	QuickScanTimeout = 2 * time.Second

	// DefaultPort is the control port assumed when an entry has none
	DefaultPort = 8765

	// DefaultPath is the WebSocket path assumed when TXT has none
	DefaultPath = "/ws"
)

// TXT record keys.
const (
	MetaPath      = "path"
	MetaInterface = "iface"
	MetaVersion   = "version"
	MetaTLS       = "tls" // "1" when the endpoint is wss://
)

// Scanner handles mDNS sender discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan collects every sender that answers before the timeout.
func (s *Scanner) Scan(ctx context.Context) ([]*Sender, error) {
	var (
		mu      sync.Mutex
		senders []*Sender
	)
	err := s.browse(ctx, func(sender *Sender) bool {
		mu.Lock()
		defer mu.Unlock()
		senders = append(senders, sender)
		return true
	})
	if err != nil {
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	logging.Info("Sender scan finished", zap.Int("found", len(senders)))
	return senders, nil
}

// Find waits for the sender advertised as instance.
func (s *Scanner) Find(ctx context.Context, instance string) (*Sender, error) {
	found := make(chan *Sender, 1)
	err := s.browse(ctx, func(sender *Sender) bool {
		if sender.Instance != instance {
			return true
		}
		select {
		case found <- sender:
		default:
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case sender := <-found:
		return sender, nil
	default:
		return nil, fmt.Errorf("sender %q not found within %v", instance, s.Timeout)
	}
}

// browse feeds parsed entries to visit until it returns false or the
// timeout passes.
func (s *Scanner) browse(ctx context.Context, visit func(*Sender) bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case entry, ok := <-entries:
				if !ok {
					return
				}
				sender := parseServiceEntry(entry)
				if sender == nil {
					continue
				}
				logging.Debug("Sender answered", zap.Stringer("sender", sender))
				if !visit(sender) {
					cancel()
					return
				}
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done
	return nil
}

// parseServiceEntry converts a zeroconf service entry to a Sender.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Sender {
	if entry == nil {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// TXT records are in "key=value" format; a bare key has an empty value
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		key, value, _ := strings.Cut(txt, "=")
		if key != "" {
			metadata[key] = value
		}
	}

	instance := entry.Instance
	if instance == "" {
		instance = strings.TrimSuffix(strings.TrimSuffix(entry.HostName, "."), ".local")
	}

	return &Sender{
		Instance:     instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

func hostPort(ip string, port int) string {
	return net.JoinHostPort(ip, strconv.Itoa(port))
}

// Announcement is a running mDNS advertisement.
type Announcement struct {
	server *zeroconf.Server
}

// Announce advertises a sender on every multicast interface until Shutdown.
func Announce(instance string, port int, metadata map[string]string) (*Announcement, error) {
	txt := make([]string, 0, len(metadata))
	for k, v := range metadata {
		txt = append(txt, k+"="+v)
	}

	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Announcing sender",
		zap.String("instance", instance),
		zap.Int("port", port),
		zap.Strings("txt", txt))
	return &Announcement{server: server}, nil
}

// Shutdown withdraws the advertisement.
func (a *Announcement) Shutdown() {
	a.server.Shutdown()
}

// QuickScan performs a fast scan bounded by QuickScanTimeout
func QuickScan(ctx context.Context) ([]*Sender, error) {
	scanner := NewScanner()
	scanner.Timeout = QuickScanTimeout
	return scanner.Scan(ctx)
}
