package console

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/assembly"
	"github.com/muurk/lcdpacket/internal/input"
	"github.com/muurk/lcdpacket/internal/lcd"
	"github.com/muurk/lcdpacket/internal/logging"
	"github.com/muurk/lcdpacket/internal/packet"
)

// SenderWarning is shown when the sender rejects or drops a command.
const SenderWarning = "Sender error"

// PacketWarning is shown when a packet cannot be assembled or loaded.
const PacketWarning = "Packet error"

// DefaultFlash is how long the backlight flashes to acknowledge a command.
const DefaultFlash = 300 * time.Millisecond

// Sender is the control surface of the sender daemon.
// *transport.Client satisfies it.
type Sender interface {
	SendPacket(ctx context.Context, data []byte) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SetDelay(ctx context.Context, d time.Duration) error
	SinglePacket(ctx context.Context) error
}

// Console is the idle loop of the packet generator. On the idle screen:
//
//	Select  assemble a packet and upload it with the current delay
//	Up      start sending continuously
//	Down    stop sending
//	Right   change the delay between packets
//	Left    send the current packet once
type Console struct {
	runner  *input.Runner
	ctrl    *assembly.Controller
	sender  Sender
	delay   time.Duration
	hold    time.Duration
	flash   time.Duration
	saveDir string

	sending bool
	last    *packet.Packet
}

// Option configures a Console.
type Option func(*Console)

// WithDelay sets the initial delay between packets.
func WithDelay(d time.Duration) Option {
	return func(c *Console) { c.delay = d }
}

// WithHold sets how long warnings stay on the display.
func WithHold(d time.Duration) Option {
	return func(c *Console) { c.hold = d }
}

// WithFlash sets how long acknowledgement flashes last.
func WithFlash(d time.Duration) Option {
	return func(c *Console) { c.flash = d }
}

// WithSaveDir writes every uploaded packet to dir as a pcap file.
func WithSaveDir(dir string) Option {
	return func(c *Console) { c.saveDir = dir }
}

// New returns a Console. runner must drive the same panel as ctrl.
func New(runner *input.Runner, ctrl *assembly.Controller, sender Sender, opts ...Option) *Console {
	c := &Console{
		runner: runner,
		ctrl:   ctrl,
		sender: sender,
		delay:  time.Second,
		hold:   assembly.DefaultHold,
		flash:  DefaultFlash,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Delay returns the delay that will be sent with the next packet.
func (c *Console) Delay() time.Duration {
	return c.delay
}

// Sending reports whether a start has been sent without a stop.
func (c *Console) Sending() bool {
	return c.sending
}

// Packet returns the last uploaded packet, or nil.
func (c *Console) Packet() *packet.Packet {
	return c.last
}

// Run polls the buttons until ctx is done.
func (c *Console) Run(ctx context.Context) error {
	panel := c.runner.Panel()
	panel.SetBacklight(lcd.ColorOff)
	logging.Info("Console ready", zap.Duration("delay", c.delay))

	for {
		if b, ok := panel.Poll(); ok {
			if err := c.Handle(ctx, b); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(panel.Tick()):
		}
	}
}

// Handle performs the action bound to b. Sender failures are shown and
// logged; only context errors are returned.
func (c *Console) Handle(ctx context.Context, b lcd.Button) error {
	logging.LogButton(b.String(), "console")

	var err error
	switch b {
	case lcd.ButtonSelect:
		err = c.configurePacket(ctx)
	case lcd.ButtonUp:
		if err = c.sender.Start(ctx); err == nil {
			c.sending = true
		}
	case lcd.ButtonDown:
		if err = c.sender.Stop(ctx); err == nil {
			c.sending = false
		}
	case lcd.ButtonRight:
		err = c.configureDelay(ctx)
	case lcd.ButtonLeft:
		if err = c.sender.SinglePacket(ctx); err == nil {
			err = c.flashLight(ctx, lcd.ColorGreen)
		}
	}

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		label := SenderWarning
		var ae *assemblyError
		if errors.As(err, &ae) {
			label = PacketWarning
			logging.Error("Packet assembly failed", zap.Stringer("button", b), zap.Error(err))
		} else {
			logging.Error("Sender command failed", zap.Stringer("button", b), zap.Error(err))
		}
		c.runner.Panel().SetBacklight(lcd.ColorRed)
		if err := c.runner.Show(ctx, label+"\n"+shortError(err), c.hold); err != nil {
			return err
		}
	}

	c.restoreLight()
	return nil
}

func (c *Console) configurePacket(ctx context.Context) error {
	p, err := c.ctrl.Run(ctx)
	if err != nil {
		return &assemblyError{err: err}
	}
	if p == nil {
		return nil
	}

	if err := c.sender.SetDelay(ctx, c.delay); err != nil {
		return err
	}
	if err := c.sender.SendPacket(ctx, p.Bytes); err != nil {
		return err
	}
	c.last = p
	logging.Info("Packet uploaded", zap.String("packet", p.Summary()), zap.Duration("delay", c.delay))

	if c.saveDir != "" {
		if err := c.save(p); err != nil {
			logging.Warn("Failed to save packet", zap.String("dir", c.saveDir), zap.Error(err))
		}
	}
	return nil
}

func (c *Console) configureDelay(ctx context.Context) error {
	d, err := c.ctrl.ConfigureDelay(ctx, c.delay)
	if err != nil {
		return &assemblyError{err: err}
	}
	if err := c.sender.SetDelay(ctx, d); err != nil {
		return err
	}
	c.delay = d
	return c.flashLight(ctx, lcd.ColorBlue)
}

// assemblyError marks a failure on the panel side, before the sender saw
// anything.
type assemblyError struct {
	err error
}

func (e *assemblyError) Error() string { return e.err.Error() }
func (e *assemblyError) Unwrap() error { return e.err }

func (c *Console) save(p *packet.Packet) error {
	if err := os.MkdirAll(c.saveDir, 0o755); err != nil {
		return err
	}
	id := p.Session
	if id == "" {
		id = time.Now().Format("20060102-150405.000")
	}
	name := filepath.Join(c.saveDir, "packet-"+id+".pcap")
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := packet.WritePcap(f, p.Bytes); err != nil {
		f.Close()
		return err
	}
	logging.Debug("Packet saved", zap.String("path", name))
	return f.Close()
}

func (c *Console) flashLight(ctx context.Context, color lcd.Color) error {
	if c.flash <= 0 {
		return nil
	}
	c.runner.Panel().SetBacklight(color)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.flash):
		return nil
	}
}

// restoreLight shows green while sending, off otherwise.
func (c *Console) restoreLight() {
	color := lcd.ColorOff
	if c.sending {
		color = lcd.ColorGreen
	}
	c.runner.Panel().SetBacklight(color)
}

// shortError fits the innermost error text on one display row.
func shortError(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	msg := err.Error()
	if len(msg) > lcd.DefaultWidth {
		msg = msg[:lcd.DefaultWidth]
	}
	return msg
}
