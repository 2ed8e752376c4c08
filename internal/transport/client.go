package transport

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/logging"
)

// DefaultTimeout bounds a call whose context has no deadline.
const DefaultTimeout = 5 * time.Second

// Client sends control frames to one sender. It is safe for concurrent use;
// the status refresher and the console share one Client. Calls are
// serialized, and waiting for the connection honours the caller's context.
type Client struct {
	addr    string
	timeout time.Duration

	turn   chan struct{} // holds one token while a call owns conn
	conn   Conn
	closed atomic.Bool
}

// Dial connects a Client to addr. See DialConn for address forms.
func Dial(ctx context.Context, addr string) (*Client, error) {
	conn, err := DialConn(ctx, addr)
	if err != nil {
		return nil, err
	}
	logging.Info("Connected to sender", zap.String("addr", addr))
	return NewClient(addr, conn), nil
}

// NewClient wraps an established connection.
func NewClient(addr string, conn Conn) *Client {
	return &Client{
		addr:    addr,
		timeout: DefaultTimeout,
		turn:    make(chan struct{}, 1),
		conn:    conn,
	}
}

// SetTimeout changes the bound applied to calls without a context deadline.
// Zero or less leaves such calls unbounded.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

// Addr returns the address the client was dialed with.
func (c *Client) Addr() string {
	return c.addr
}

// Send writes one frame that has no response.
func (c *Client) Send(ctx context.Context, flag Flag, data []byte) error {
	done, err := c.begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	return c.write(Frame{Flag: flag, Data: data})
}

// Request writes one frame and waits for the sender's response.
// A response that does not arrive in time leaves the stream out of step, so
// the client is closed and later calls return ErrClosed.
func (c *Client) Request(ctx context.Context, flag Flag) ([]byte, error) {
	done, err := c.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer done()

	if err := c.write(Frame{Flag: flag}); err != nil {
		return nil, err
	}

	resp, err := c.conn.ReadFrame()
	if err != nil {
		if !c.closed.Load() {
			logging.Warn("Sender did not answer, dropping connection",
				zap.String("addr", c.addr),
				zap.Stringer("request", flag),
				zap.Error(err))
			_ = c.Close()
		}
		return nil, fmt.Errorf("failed to read %s response: %w", flag, err)
	}
	if resp.Flag != FlagResponse {
		return nil, &FrameError{Op: "read", Err: fmt.Errorf("expected %s, got %s", FlagResponse, resp.Flag)}
	}
	logging.Debug("Sender response",
		zap.Stringer("request", flag),
		zap.Int("length", len(resp.Data)))
	return resp.Data, nil
}

// begin waits for the connection, then applies ctx's deadline, or the
// client timeout when ctx has none. done releases the connection.
func (c *Client) begin(ctx context.Context) (done func(), err error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	select {
	case c.turn <- struct{}{}:
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	}
	done = func() {
		<-c.turn
		cancel()
	}

	if c.closed.Load() {
		done()
		return nil, ErrClosed
	}
	deadline, _ := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		done()
		return nil, err
	}
	return done, nil
}

func (c *Client) write(f Frame) error {
	if err := c.conn.WriteFrame(f); err != nil {
		return fmt.Errorf("failed to send %s: %w", f.Flag, err)
	}
	logging.Debug("Sent frame", zap.Stringer("frame", f))
	return nil
}

// SendPacket replaces the sender's packet.
func (c *Client) SendPacket(ctx context.Context, data []byte) error {
	return c.Send(ctx, FlagPacket, data)
}

// Start begins continuous sending.
func (c *Client) Start(ctx context.Context) error {
	return c.Send(ctx, FlagStart, nil)
}

// Stop ends continuous sending.
func (c *Client) Stop(ctx context.Context) error {
	return c.Send(ctx, FlagStop, nil)
}

// SinglePacket sends the current packet once.
func (c *Client) SinglePacket(ctx context.Context) error {
	return c.Send(ctx, FlagSinglePacket, nil)
}

// SetDelay sets the pause between packets.
func (c *Client) SetDelay(ctx context.Context, d time.Duration) error {
	data, err := EncodeDelay(d)
	if err != nil {
		return err
	}
	return c.Send(ctx, FlagDelay, data)
}

// Packet returns the sender's current packet.
func (c *Client) Packet(ctx context.Context) ([]byte, error) {
	return c.Request(ctx, FlagGetPacket)
}

// Bandwidth returns the sender's measured rate in bits per second.
func (c *Client) Bandwidth(ctx context.Context) (uint64, error) {
	return c.counter(ctx, FlagGetBandwidth)
}

// PacketSize returns the length of the sender's current packet.
func (c *Client) PacketSize(ctx context.Context) (uint64, error) {
	return c.counter(ctx, FlagGetPacketSize)
}

// PacketsSent returns how many packets the sender has sent.
func (c *Client) PacketsSent(ctx context.Context) (uint64, error) {
	return c.counter(ctx, FlagNumPackets)
}

func (c *Client) counter(ctx context.Context, flag Flag) (uint64, error) {
	data, err := c.Request(ctx, flag)
	if err != nil {
		return 0, err
	}
	return DecodeCounter(data)
}

// Close closes the connection. Further calls return ErrClosed.
// It does not wait for a call in progress; closing the connection ends it.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	logging.Info("Disconnected from sender", zap.String("addr", c.addr))
	return c.conn.Close()
}
