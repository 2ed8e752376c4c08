package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/logging"
)

// Server exposes a Sender over stream sockets and WebSockets.
type Server struct {
	sender *Sender

	wg          sync.WaitGroup
	mu          sync.Mutex
	listeners   []net.Listener
	activeConns map[string]Conn
	seq         atomic.Uint64
}

// NewServer returns a Server driving sender.
func NewServer(sender *Sender) *Server {
	return &Server{
		sender:      sender,
		activeConns: make(map[string]Conn),
	}
}

// Serve accepts stream connections on ln until it is closed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	s.listeners = append(s.listeners, ln)
	s.mu.Unlock()

	logging.Info("Sender listening", zap.String("addr", ln.Addr().String()))

	for {
		c, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			return err
		}

		remote := fmt.Sprintf("%s#%d", ln.Addr().Network(), s.seq.Add(1))
		if ra := c.RemoteAddr(); ra != nil && ra.String() != "" {
			remote = ra.String()
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(NewStreamConn(c), remote)
		}()
	}
}

// ServeHTTP upgrades the request to a WebSocket and serves it.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err))
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(NewWebSocketConn(c), r.RemoteAddr)
}

// handleConnection serves frames from one client until it disconnects.
func (s *Server) handleConnection(conn Conn, remoteAddr string) {
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")

	for {
		f, err := conn.ReadFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrClosed) || errors.Is(err, net.ErrClosed) {
				logging.Info("Connection closed by client", zap.String("remote_addr", remoteAddr))
			} else {
				logging.Info("Connection closed or error reading frame",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err))
			}
			return
		}

		logging.Debug("Frame received",
			zap.String("remote_addr", remoteAddr),
			zap.Stringer("frame", f))
		if f.Flag == FlagPacket {
			logging.LogRawBytes("Packet received", f.Data)
		}

		resp, err := s.sender.Handle(*f)
		if err != nil {
			logging.Warn("Failed to handle frame",
				zap.String("remote_addr", remoteAddr),
				zap.Stringer("flag", f.Flag),
				zap.Error(err))
			continue
		}
		if resp == nil {
			continue
		}
		if err := conn.WriteFrame(*resp); err != nil {
			logging.Error("Failed to write response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err))
			return
		}
	}
}

// ActiveConnections returns the number of connected clients.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

// Shutdown closes listeners and connections, then stops the sender.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down sender...")

	s.mu.Lock()
	for _, ln := range s.listeners {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			logging.Error("Error closing listener", zap.Error(err))
		}
	}
	s.listeners = nil
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
		err = ctx.Err()
	}

	s.sender.Close()
	return err
}
