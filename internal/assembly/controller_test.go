package assembly

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/lcdpacket/internal/catalog"
	"github.com/muurk/lcdpacket/internal/input"
	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/lcd/lcdtest"
	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/packet"
)

var (
	up     = lcd.ButtonUp
	down   = lcd.ButtonDown
	right  = lcd.ButtonRight
	sel    = lcd.ButtonSelect
	nTimes = lcdtest.Repeat
)

// press flattens groups of button taps into a display script.
func press(groups ...[]lcd.Button) []lcd.Buttons {
	var all []lcd.Button
	for _, g := range groups {
		all = append(all, g...)
	}
	return lcdtest.Taps(all...)
}

func one(b lcd.Button) []lcd.Button { return []lcd.Button{b} }

// Menu navigation from the first entry. Menu order:
// Ether Dot1Q IP TCP UDP Raw Finish Cancel Load Packet.
var (
	pickEther  = one(sel)
	pickIP     = append(nTimes(up, 2), sel)
	pickUDP    = append(nTimes(up, 4), sel)
	pickRaw    = append(nTimes(up, 5), sel)
	pickFinish = append(nTimes(down, 3), sel)
	pickCancel = append(nTimes(down, 2), sel)
	pickLoad   = []lcd.Button{down, sel}
)

// acceptAll commits n fields at their seeded values.
func acceptAll(n int) []lcd.Button { return nTimes(sel, n) }

type harness struct {
	display *lcdtest.Display
	ctrl    *Controller
	logs    *observer.ObservedLogs
}

func newHarness(t *testing.T, steps []lcd.Buttons, opts ...Option) *harness {
	t.Helper()

	core, logs := observer.New(zap.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(zap.NewNop()) })

	d := lcdtest.New(16, steps...)
	runner := input.NewRunner(lcd.NewPanel(d, 16, time.Millisecond))
	opts = append([]Option{WithHold(0)}, opts...)
	ctrl := New(runner, catalog.Standard(), packet.NewBuilder(), opts...)
	return &harness{display: d, ctrl: ctrl, logs: logs}
}

func (h *harness) advisories() int {
	return h.logs.FilterField(zap.Bool(logging.AdvisoryKey, true)).Len()
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestMenu(t *testing.T) {
	h := newHarness(t, nil)
	assert.Equal(t,
		[]string{"Ether", "Dot1Q", "IP", "TCP", "UDP", "Raw", "Finish", "Cancel", "Load Packet"},
		h.ctrl.Menu())
}

func TestCancelDiscardsLayers(t *testing.T) {
	h := newHarness(t, press(
		pickEther, acceptAll(3),
		pickIP, acceptAll(3),
		pickCancel,
	))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	assert.Nil(t, p, "cancel must not return a partial packet")
}

func TestFinishPadsToSize(t *testing.T) {
	// Size prompt starts at 0014; make it 0064.
	size64 := []lcd.Button{right, right}
	size64 = append(size64, nTimes(up, 5)...)
	size64 = append(size64, sel)

	h := newHarness(t, press(
		pickEther, acceptAll(3),
		pickFinish, size64,
	))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, 14, p.Natural)
	assert.Len(t, p.Bytes, 64)
	assert.False(t, p.Truncated)
	assert.True(t, bytes.Equal(p.Bytes[14:], make([]byte, 50)), "want 50 trailing null bytes")
	assert.Equal(t, 0, h.advisories())
}

func TestFinishTruncatesWithOneAdvisory(t *testing.T) {
	// Size prompt starts at 0042; make it 0020.
	size20 := []lcd.Button{right, right, down, down, right, down, down, sel}

	h := newHarness(t, press(
		pickEther, acceptAll(3),
		pickIP, acceptAll(3),
		pickUDP, acceptAll(2),
		pickFinish, size20,
	))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, 42, p.Natural)
	assert.Len(t, p.Bytes, 20)
	assert.True(t, p.Truncated)
	assert.Equal(t, 1, h.advisories())
	assert.True(t, h.display.Shown("Truncating Pkt"))
	assert.Equal(t, []string{"Ether", "IP", "UDP"}, p.Names())
}

func TestFinishWithoutLayers(t *testing.T) {
	h := newHarness(t, press(
		pickFinish,
		pickCancel,
	))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, 1, h.advisories())
	assert.True(t, h.display.Shown("No layers"))
}

func TestRawLayer(t *testing.T) {
	h := newHarness(t, press(
		pickRaw, one(up), one(sel),
		pickFinish, one(sel),
	))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Hello, world!", string(p.Bytes))
}

func TestRunStampsSession(t *testing.T) {
	steps := press(pickRaw, one(up), one(sel), pickFinish, one(sel))
	first, err := newHarness(t, steps).ctrl.Run(testContext(t))
	require.NoError(t, err)
	second, err := newHarness(t, steps).ctrl.Run(testContext(t))
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEmpty(t, first.Session)
	assert.NotEqual(t, first.Session, second.Session)
}

func TestConfigureLayerUsesDefaults(t *testing.T) {
	h := newHarness(t, press(acceptAll(3)))
	spec, ok := catalog.Standard().Lookup(catalog.IP)
	require.True(t, ok)

	l, err := h.ctrl.ConfigureLayer(testContext(t), spec)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"src": "0.0.0.0",
		"dst": "10.0.24.243",
		"ttl": "64",
	}, l.Fields)
}

func TestConfigureLayerReeditsRejectedValue(t *testing.T) {
	steps := press(
		one(sel), one(sel),        // src, dst
		nTimes(up, 3), one(sel),   // ttl 364 is rejected
		nTimes(down, 3), one(sel), // back to 064
	)
	h := newHarness(t, steps)
	spec, _ := catalog.Standard().Lookup(catalog.IP)

	l, err := h.ctrl.ConfigureLayer(testContext(t), spec)
	require.NoError(t, err)
	assert.Equal(t, "64", l.Fields["ttl"])
	assert.True(t, h.display.Shown("Invalid ttl"))
	assert.True(t, h.display.Shown("364"), "rejected text should be kept for re-editing")
}

func TestConfigureLayerBadDefault(t *testing.T) {
	h := newHarness(t, press(acceptAll(3)))
	cat := catalog.Standard().Resolve(catalog.Map{catalog.IP: {"ttl": "999"}})
	spec, _ := cat.Lookup(catalog.IP)

	l, err := h.ctrl.ConfigureLayer(testContext(t), spec)
	require.NoError(t, err)
	assert.Equal(t, "0", l.Fields["ttl"])
	assert.Equal(t, 1, h.advisories())
}

type fakeLoader struct {
	p *packet.Packet
}

func (f fakeLoader) Load(context.Context) (*packet.Packet, error) {
	return f.p, nil
}

func TestLoadFromFile(t *testing.T) {
	loaded := &packet.Packet{Bytes: []byte{1, 2, 3}, Natural: 3, Size: 3}
	h := newHarness(t, press(pickEther, acceptAll(3), pickLoad), WithLoader(fakeLoader{loaded}))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	assert.Same(t, loaded, p)
	assert.NotEmpty(t, p.Session)
}

func TestLoadWithoutLoader(t *testing.T) {
	h := newHarness(t, press(pickLoad, pickCancel))

	p, err := h.ctrl.Run(testContext(t))
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.True(t, h.display.Shown("No packet file"))
}

func TestConfigureDelay(t *testing.T) {
	// 001.0000 -> 002.5000
	steps := press([]lcd.Button{right, right, up, right, up, up, up, up, up, sel})
	h := newHarness(t, steps)

	d, err := h.ctrl.ConfigureDelay(testContext(t), time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)
}

func TestRunStopsOnContext(t *testing.T) {
	h := newHarness(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := h.ctrl.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
