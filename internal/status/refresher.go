package status

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/logging"
)

// DefaultInterval is how often the status lines are rewritten.
const DefaultInterval = time.Second

// CPUSource reports CPU use in percent.
type CPUSource interface {
	Usage() (float64, error)
}

var bandwidthUnits = []string{"bps", "Kbps", "Mbps", "Gbps"}

// FormatBandwidth renders bits per second in the largest unit that keeps the
// number below 1000, stopping at Gbps.
func FormatBandwidth(bps uint64) string {
	v := float64(bps)
	unit := 0
	for v >= 1000 && unit < len(bandwidthUnits)-1 {
		v /= 1000
		unit++
	}
	return fmt.Sprintf("Bw:%2.1f %s", v, bandwidthUnits[unit])
}

// FormatCPU renders a CPU percentage.
func FormatCPU(pct float64) string {
	return fmt.Sprintf("CPU:%2.1f%%", pct)
}

// Refresher keeps the idle screen current: bandwidth on the first row, CPU
// use on the second. Each row is written under the panel lock on its own, so
// an editing session in progress delays the refresh instead of being
// overwritten.
type Refresher struct {
	panel    *lcd.Panel
	bw       BandwidthSource
	cpu      CPUSource
	interval time.Duration
}

// New returns a Refresher. Either source may be nil, which blanks its row.
func New(panel *lcd.Panel, bw BandwidthSource, cpu CPUSource, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Refresher{panel: panel, bw: bw, cpu: cpu, interval: interval}
}

// Lines samples both sources and returns the two status rows. A bandwidth
// query gets at most one interval to answer.
func (r *Refresher) Lines(ctx context.Context) [lcd.Rows]string {
	var lines [lcd.Rows]string

	if r.bw != nil {
		bwCtx, cancel := context.WithTimeout(ctx, r.interval)
		bps, err := r.bw.Bandwidth(bwCtx)
		cancel()
		if err != nil {
			logging.Debug("Bandwidth unavailable", zap.Error(err))
			lines[0] = "Bw:n/a"
		} else {
			lines[0] = FormatBandwidth(bps)
		}
	}

	if r.cpu != nil {
		pct, err := r.cpu.Usage()
		if err != nil {
			logging.Debug("CPU usage unavailable", zap.Error(err))
			lines[1] = "CPU:n/a"
		} else {
			lines[1] = FormatCPU(pct)
		}
	}
	return lines
}

// Refresh writes one update to the panel.
func (r *Refresher) Refresh(ctx context.Context) {
	for row, text := range r.Lines(ctx) {
		r.panel.WriteLine(row, text)
	}
}

// Run refreshes once per interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}
