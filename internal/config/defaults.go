package config

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/catalog"
	"github.com/muurk/lcdpacket/internal/logging"
)

// InterfaceAddrs are the live addresses of the transmit interface.
type InterfaceAddrs struct {
	MAC  string // aa:bb:cc:dd:ee:ff, empty when the interface has none
	IPv4 string // dotted quad, empty when unassigned
}

// InterfaceLookup resolves an interface name to its addresses.
type InterfaceLookup func(name string) (InterfaceAddrs, error)

// Defaults supplies layer field defaults from the configuration and the
// transmit interface. Configured values win; otherwise Ether src is the
// interface MAC and IP src its first IPv4 address.
type Defaults struct {
	fields map[string]map[string]string
	live   map[string]map[string]string
}

// NewDefaults resolves cfg's interface with lookup (LookupInterface when
// nil). A lookup failure is logged and leaves the live values out.
func NewDefaults(cfg *Config, lookup InterfaceLookup) *Defaults {
	if lookup == nil {
		lookup = LookupInterface
	}
	d := &Defaults{
		fields: cfg.Defaults,
		live:   make(map[string]map[string]string),
	}

	if cfg.Interface == "" {
		return d
	}
	addrs, err := lookup(cfg.Interface)
	if err != nil {
		logging.Warn("Cannot read interface addresses, using built-in defaults",
			zap.String("interface", cfg.Interface),
			zap.Error(err))
		return d
	}
	if addrs.MAC != "" {
		d.live[catalog.Ether] = map[string]string{"src": addrs.MAC}
	}
	if addrs.IPv4 != "" {
		d.live[catalog.IP] = map[string]string{"src": addrs.IPv4}
	}
	logging.Debug("Interface defaults resolved",
		zap.String("interface", cfg.Interface),
		zap.String("mac", addrs.MAC),
		zap.String("ipv4", addrs.IPv4))
	return d
}

// Default implements catalog.Defaults
func (d *Defaults) Default(layer, field string) (string, bool) {
	if v, ok := d.fields[layer][field]; ok {
		return v, true
	}
	v, ok := d.live[layer][field]
	return v, ok
}

// LookupInterface reads name's hardware address and first IPv4 address.
func LookupInterface(name string) (InterfaceAddrs, error) {
	iface, err := net.InterfaceByName(name)
	if err != nil {
		return InterfaceAddrs{}, fmt.Errorf("interface %s: %w", name, err)
	}

	out := InterfaceAddrs{}
	if len(iface.HardwareAddr) > 0 {
		out.MAC = iface.HardwareAddr.String()
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return out, fmt.Errorf("interface %s addresses: %w", name, err)
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			out.IPv4 = v4.String()
			break
		}
	}
	return out, nil
}

// Catalog returns the standard catalog with these defaults bound.
func (d *Defaults) Catalog() *catalog.Catalog {
	return catalog.Standard().Resolve(d)
}
