package status

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// BandwidthSource reports the current transmit rate in bits per second.
// *transport.Client satisfies it.
type BandwidthSource interface {
	Bandwidth(ctx context.Context) (uint64, error)
}

// Fallback asks Primary first and Secondary when Primary fails. A nil
// source is skipped.
type Fallback struct {
	Primary   BandwidthSource
	Secondary BandwidthSource
}

// Bandwidth implements BandwidthSource
func (f Fallback) Bandwidth(ctx context.Context) (uint64, error) {
	var errs []error
	for _, src := range []BandwidthSource{f.Primary, f.Secondary} {
		if src == nil {
			continue
		}
		bps, err := src.Bandwidth(ctx)
		if err == nil {
			return bps, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, errors.New("no bandwidth source")
	}
	return 0, errors.Join(errs...)
}

// DefaultSysfsRoot is where interface statistics live.
const DefaultSysfsRoot = "/sys/class/net"

// InterfaceCounter measures an interface's transmit rate from the kernel's
// tx_bytes counter. The first call only primes the counter and reports 0.
type InterfaceCounter struct {
	path string
	now  func() time.Time

	mu     sync.Mutex
	last   uint64
	lastAt time.Time
	primed bool
}

// NewInterfaceCounter watches iface under root (DefaultSysfsRoot when empty).
func NewInterfaceCounter(root, iface string) *InterfaceCounter {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &InterfaceCounter{
		path: filepath.Join(root, iface, "statistics", "tx_bytes"),
		now:  time.Now,
	}
}

// Bandwidth implements BandwidthSource
func (c *InterfaceCounter) Bandwidth(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return 0, fmt.Errorf("read tx counter: %w", err)
	}
	bytes, err := strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse tx counter %q: %w", raw, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	defer func() {
		c.last, c.lastAt, c.primed = bytes, now, true
	}()

	elapsed := now.Sub(c.lastAt).Seconds()
	// A counter that went backwards was reset; start over.
	if !c.primed || bytes < c.last || elapsed <= 0 {
		return 0, nil
	}
	return uint64(float64(bytes-c.last) * 8 / elapsed), nil
}

// DefaultProcStat is the kernel CPU accounting file.
const DefaultProcStat = "/proc/stat"

// CPUSampler reports overall CPU use between successive calls, from the
// aggregate "cpu" line of /proc/stat. The first call reports use since boot.
type CPUSampler struct {
	path string

	mu        sync.Mutex
	prevIdle  uint64
	prevTotal uint64
}

// NewCPUSampler reads path (DefaultProcStat when empty).
func NewCPUSampler(path string) *CPUSampler {
	if path == "" {
		path = DefaultProcStat
	}
	return &CPUSampler{path: path}
}

// Usage returns the busy percentage since the previous call.
func (s *CPUSampler) Usage() (float64, error) {
	idle, total, err := readCPUTimes(s.path)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevIdle, prevTotal := s.prevIdle, s.prevTotal
	s.prevIdle, s.prevTotal = idle, total

	if total <= prevTotal || idle < prevIdle {
		return 0, nil
	}
	dIdle := idle - prevIdle
	dTotal := total - prevTotal
	if dIdle > dTotal {
		return 0, nil
	}
	return 100 * float64(dTotal-dIdle) / float64(dTotal), nil
}

var errNoCPULine = errors.New("no aggregate cpu line")

// readCPUTimes sums the aggregate cpu line. Idle includes iowait.
func readCPUTimes(path string) (idle, total uint64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read cpu stats: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		for i, field := range fields[1:] {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return 0, 0, fmt.Errorf("parse cpu stats: %w", err)
			}
			total += v
			if i == 3 || i == 4 {
				idle += v
			}
		}
		return idle, total, nil
	}
	if err := sc.Err(); err != nil {
		return 0, 0, fmt.Errorf("read cpu stats: %w", err)
	}
	return 0, 0, fmt.Errorf("%s: %w", path, errNoCPULine)
}
