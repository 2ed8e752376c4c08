package status

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/lcd/lcdtest"
)

func TestFormatBandwidth(t *testing.T) {
	tests := []struct {
		bps  uint64
		want string
	}{
		{0, "Bw:0.0 bps"},
		{999, "Bw:999.0 bps"},
		{1000, "Bw:1.0 Kbps"},
		{1_500_000, "Bw:1.5 Mbps"},
		{940_000_000, "Bw:940.0 Mbps"},
		{2_000_000_000_000, "Bw:2000.0 Gbps"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBandwidth(tt.bps))
		})
	}
}

func TestFormatCPU(t *testing.T) {
	assert.Equal(t, "CPU:12.3%", FormatCPU(12.34))
	assert.Equal(t, "CPU:0.0%", FormatCPU(0))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInterfaceCounter(t *testing.T) {
	root := t.TempDir()
	counter := filepath.Join(root, "eth0", "statistics", "tx_bytes")
	c := NewInterfaceCounter(root, "eth0")

	clock := time.Unix(1000, 0)
	c.now = func() time.Time { return clock }
	ctx := context.Background()

	writeFile(t, counter, "1000\n")
	bps, err := c.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Zero(t, bps, "first sample only primes the counter")

	clock = clock.Add(2 * time.Second)
	writeFile(t, counter, "3000\n")
	bps, err = c.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(8000), bps)

	clock = clock.Add(time.Second)
	writeFile(t, counter, "10\n")
	bps, err = c.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Zero(t, bps, "a reset counter reads as idle")
}

func TestInterfaceCounterMissing(t *testing.T) {
	c := NewInterfaceCounter(t.TempDir(), "nope0")
	_, err := c.Bandwidth(context.Background())
	assert.Error(t, err)
}

func TestCPUSampler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	s := NewCPUSampler(path)

	// user nice system idle iowait irq softirq steal
	writeFile(t, path, "cpu  100 0 100 800 0 0 0 0\ncpu0 100 0 100 800 0 0 0 0\nintr 1\n")
	pct, err := s.Usage()
	require.NoError(t, err)
	assert.InDelta(t, 20.0, pct, 0.001)

	writeFile(t, path, "cpu  700 0 100 1000 200 0 0 0\n")
	pct, err = s.Usage()
	require.NoError(t, err)
	assert.InDelta(t, 60.0, pct, 0.001)

	pct, err = s.Usage()
	require.NoError(t, err)
	assert.Zero(t, pct, "no time passed")
}

func TestCPUSamplerBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stat")
	writeFile(t, path, "intr 1 2 3\n")
	_, err := NewCPUSampler(path).Usage()
	assert.ErrorIs(t, err, errNoCPULine)
}

type fixedBandwidth struct {
	bps uint64
	err error
}

func (f fixedBandwidth) Bandwidth(context.Context) (uint64, error) { return f.bps, f.err }

// stalledBandwidth never answers on its own.
type stalledBandwidth struct{}

func (stalledBandwidth) Bandwidth(ctx context.Context) (uint64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

type fixedCPU float64

func (f fixedCPU) Usage() (float64, error) { return float64(f), nil }

func TestFallback(t *testing.T) {
	ctx := context.Background()
	down := fixedBandwidth{err: errors.New("sender gone")}

	bps, err := Fallback{Primary: fixedBandwidth{bps: 10}, Secondary: fixedBandwidth{bps: 20}}.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bps)

	bps, err = Fallback{Primary: down, Secondary: fixedBandwidth{bps: 20}}.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(20), bps)

	bps, err = Fallback{Secondary: fixedBandwidth{bps: 30}}.Bandwidth(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), bps)

	_, err = Fallback{Primary: down, Secondary: down}.Bandwidth(ctx)
	assert.ErrorContains(t, err, "sender gone")

	_, err = Fallback{}.Bandwidth(ctx)
	assert.Error(t, err)
}

func TestLinesBoundsSlowBandwidth(t *testing.T) {
	d := lcdtest.New(16)
	r := New(lcd.NewPanel(d, 16, time.Millisecond), stalledBandwidth{}, fixedCPU(1), 50*time.Millisecond)

	done := make(chan [lcd.Rows]string, 1)
	go func() { done <- r.Lines(context.Background()) }()

	select {
	case lines := <-done:
		assert.Equal(t, "Bw:n/a", lines[0])
		assert.Equal(t, "CPU:1.0%", lines[1])
	case <-time.After(2 * time.Second):
		t.Fatal("Lines waited on a bandwidth source past the refresh interval")
	}
}

func TestRefresh(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, time.Millisecond)
	r := New(panel, fixedBandwidth{bps: 2_500_000}, fixedCPU(42.5), time.Second)

	r.Refresh(context.Background())

	assert.Equal(t, [lcd.Rows]string{"Bw:2.5 Mbps", "CPU:42.5%"}, d.Lines())
	writes := d.Writes()
	require.Len(t, writes, 2)
	assert.Len(t, writes[0].Text, 16, "rows are padded to the panel width")
}

func TestRefreshSourceErrors(t *testing.T) {
	d := lcdtest.New(16)
	r := New(lcd.NewPanel(d, 16, time.Millisecond), fixedBandwidth{err: errors.New("down")}, nil, 0)

	lines := r.Lines(context.Background())
	assert.Equal(t, "Bw:n/a", lines[0])
	assert.Empty(t, lines[1])
}

func TestRefreshWaitsForSession(t *testing.T) {
	d := lcdtest.New(16)
	panel := lcd.NewPanel(d, 16, time.Millisecond)
	r := New(panel, fixedBandwidth{bps: 1}, fixedCPU(1), time.Second)

	session := panel.Acquire()
	done := make(chan struct{})
	go func() {
		r.Refresh(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("refresh wrote while an editing session held the panel")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, d.Writes())

	session.Release()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh did not resume after release")
	}
	assert.Len(t, d.Writes(), 2)
}

func TestRunStopsOnContext(t *testing.T) {
	d := lcdtest.New(16)
	r := New(lcd.NewPanel(d, 16, time.Millisecond), fixedBandwidth{}, fixedCPU(0), 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Run(ctx), context.DeadlineExceeded)
	assert.GreaterOrEqual(t, len(d.Writes()), 4)
}
