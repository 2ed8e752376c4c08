package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by operations on a closed client.
var ErrClosed = errors.New("transport: connection closed")

// Conn carries control frames to and from a sender.
type Conn interface {
	WriteFrame(f Frame) error
	ReadFrame() (*Frame, error)
	SetDeadline(t time.Time) error
	Close() error
}

// streamConn frames a byte stream (Unix or TCP socket).
type streamConn struct {
	c net.Conn
	r *bufio.Reader
}

// NewStreamConn wraps a connected byte stream.
func NewStreamConn(c net.Conn) Conn {
	return &streamConn{c: c, r: bufio.NewReader(c)}
}

func (s *streamConn) WriteFrame(f Frame) error { return WriteFrame(s.c, f) }

func (s *streamConn) ReadFrame() (*Frame, error) { return ReadFrame(s.r) }

func (s *streamConn) SetDeadline(t time.Time) error { return s.c.SetDeadline(t) }

func (s *streamConn) Close() error { return s.c.Close() }

// wsConn sends one frame per binary WebSocket message.
type wsConn struct {
	c *websocket.Conn
}

// NewWebSocketConn wraps an established WebSocket.
func NewWebSocketConn(c *websocket.Conn) Conn {
	return &wsConn{c: c}
}

func (w *wsConn) WriteFrame(f Frame) error {
	buf, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	return w.c.WriteMessage(websocket.BinaryMessage, buf)
}

func (w *wsConn) ReadFrame() (*Frame, error) {
	for {
		mt, data, err := w.c.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil, ErrClosed
			}
			return nil, err
		}
		if mt != websocket.BinaryMessage {
			continue
		}
		f := &Frame{}
		if err := f.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return f, nil
	}
}

func (w *wsConn) SetDeadline(t time.Time) error {
	if err := w.c.SetReadDeadline(t); err != nil {
		return err
	}
	return w.c.SetWriteDeadline(t)
}

func (w *wsConn) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.c.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return w.c.Close()
}

const (
	// Time allowed to write a control message to the peer
	writeWait = 5 * time.Second

	// Time allowed for the dial and handshake when ctx has no deadline
	dialTimeout = 10 * time.Second
)

// DialConn connects to addr. Supported forms:
//
//	/run/sender.sock, unix:///run/sender.sock   Unix stream socket
//	tcp://host:port                             TCP stream
//	ws://host:port/path, wss://host:port/path   WebSocket
func DialConn(ctx context.Context, addr string) (Conn, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}

	switch {
	case strings.HasPrefix(addr, "ws://"), strings.HasPrefix(addr, "wss://"):
		c, resp, err := websocket.DefaultDialer.DialContext(ctx, addr, nil)
		if err != nil {
			if resp != nil {
				return nil, fmt.Errorf("failed to dial %s: %w (HTTP %d)", addr, err, resp.StatusCode)
			}
			return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
		}
		return NewWebSocketConn(c), nil

	case strings.HasPrefix(addr, "tcp://"):
		var d net.Dialer
		c, err := d.DialContext(ctx, "tcp", strings.TrimPrefix(addr, "tcp://"))
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
		}
		return NewStreamConn(c), nil

	case strings.HasPrefix(addr, "unix://"), strings.HasPrefix(addr, "/"), strings.HasPrefix(addr, "."):
		var d net.Dialer
		c, err := d.DialContext(ctx, "unix", strings.TrimPrefix(addr, "unix://"))
		if err != nil {
			return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
		}
		return NewStreamConn(c), nil

	default:
		return nil, fmt.Errorf("transport: unsupported address %q", addr)
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  MaxDataSize + HeaderSize,
	WriteBufferSize: MaxDataSize + HeaderSize,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}
