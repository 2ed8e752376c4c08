package transport

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/lcdpacket/internal/logging"
)

// ErrUnknownFlag is returned by Sender.Handle for flags it does not serve.
var ErrUnknownFlag = errors.New("transport: unknown flag")

// MinSendInterval bounds how fast the simulated sender loops.
const MinSendInterval = time.Millisecond

// Sink receives every packet the simulated sender puts on the wire.
type Sink interface {
	Write(data []byte) error
}

// Sender is an in-process stand-in for the sender daemon. It keeps one
// packet and a delay, and while started writes the packet to its sink once
// per delay, measuring the resulting bandwidth.
type Sender struct {
	sink Sink

	mu      sync.Mutex
	packet  []byte
	delay   time.Duration
	running bool
	stop    chan struct{}
	done    chan struct{}

	sinkMu    sync.Mutex
	sent      atomic.Uint64
	bandwidth atomic.Uint64
}

// NewSender returns a stopped Sender. sink may be nil.
func NewSender(sink Sink) *Sender {
	return &Sender{sink: sink, delay: time.Second}
}

// Handle applies one control frame and returns the response for requests.
// Frames that affect sending stop the loop, apply, then restart it if the
// sender should be running.
func (s *Sender) Handle(f Frame) (*Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	controls := f.Flag == FlagPacket || f.Flag == FlagStart || f.Flag == FlagStop ||
		f.Flag == FlagDelay || f.Flag == FlagSinglePacket
	keepRunning := s.running
	if controls {
		s.halt()
	}

	var resp *Frame
	var err error

	switch f.Flag {
	case FlagPacket:
		s.packet = append([]byte(nil), f.Data...)
	case FlagStart:
		keepRunning = true
	case FlagStop:
		keepRunning = false
	case FlagDelay:
		var d time.Duration
		if d, err = DecodeDelay(f.Data); err == nil {
			s.delay = d
		}
	case FlagSinglePacket:
		s.emit(s.packet)
	case FlagNumPackets:
		resp = &Frame{Flag: FlagResponse, Data: EncodeCounter(s.sent.Load())}
	case FlagGetPacket:
		resp = &Frame{Flag: FlagResponse, Data: append([]byte(nil), s.packet...)}
	case FlagGetBandwidth:
		resp = &Frame{Flag: FlagResponse, Data: EncodeCounter(s.bandwidth.Load())}
	case FlagGetPacketSize:
		resp = &Frame{Flag: FlagResponse, Data: EncodeCounter(uint64(len(s.packet)))}
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFlag, f.Flag)
	}

	if controls && keepRunning {
		s.launch()
	}
	return resp, err
}

// Running reports whether the send loop is active.
func (s *Sender) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Delay returns the configured pause between packets.
func (s *Sender) Delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delay
}

// Close stops the send loop.
func (s *Sender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halt()
}

// launch starts the loop. Caller holds mu.
func (s *Sender) launch() {
	if len(s.packet) == 0 {
		logging.Warn("Start requested with no packet configured")
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true
	go s.loop(s.packet, max(s.delay, MinSendInterval), s.stop, s.done)
	logging.Info("Sending started", zap.Int("length", len(s.packet)), zap.Duration("delay", s.delay))
}

// halt stops the loop and waits for it. Caller holds mu.
func (s *Sender) halt() {
	if !s.running {
		return
	}
	close(s.stop)
	<-s.done
	s.running = false
	s.bandwidth.Store(0)
	logging.Info("Sending stopped", zap.Uint64("sent", s.sent.Load()))
}

func (s *Sender) loop(packet []byte, interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	bits := float64(len(packet) * 8)
	last := time.Now()
	for {
		s.emit(packet)
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
		now := time.Now()
		s.bandwidth.Store(uint64(bits / now.Sub(last).Seconds()))
		last = now
	}
}

func (s *Sender) emit(packet []byte) {
	if len(packet) == 0 {
		return
	}
	s.sent.Add(1)
	if s.sink == nil {
		return
	}
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()
	if err := s.sink.Write(packet); err != nil {
		logging.Error("Failed to write packet to sink", zap.Error(err))
	}
}
