package transport

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"time"
)

// Flag is the message type in a control frame header.
type Flag uint8

// Control flags understood by the sender daemon.
const (
	FlagPacket        Flag = iota // data is the packet to send
	FlagStart                     // begin sending continuously
	FlagStop                      // stop sending
	FlagDelay                     // data is the delay between packets
	FlagNumPackets                // request the sent packet count
	FlagSinglePacket              // send the buffered packet once
	FlagGetPacket                 // request the buffered packet
	FlagGetBandwidth              // request the bandwidth in bits/s
	FlagGetPacketSize             // request the buffered packet size
	FlagStartSequence             // reserved
	FlagStopSequence              // reserved
	FlagResponse                  // reply to a request
)

// String returns the flag name
func (f Flag) String() string {
	switch f {
	case FlagPacket:
		return "PACKET"
	case FlagStart:
		return "START"
	case FlagStop:
		return "STOP"
	case FlagDelay:
		return "DELAY"
	case FlagNumPackets:
		return "NUM_PACKETS"
	case FlagSinglePacket:
		return "SINGLE_PACKET"
	case FlagGetPacket:
		return "GET_PACKET"
	case FlagGetBandwidth:
		return "GET_BANDWIDTH"
	case FlagGetPacketSize:
		return "GET_PACKET_SIZE"
	case FlagStartSequence:
		return "START_SEQUENCE"
	case FlagStopSequence:
		return "STOP_SEQUENCE"
	case FlagResponse:
		return "RESPONSE"
	default:
		return fmt.Sprintf("FLAG(%d)", uint8(f))
	}
}

// IsRequest reports whether the sender answers f with a response frame.
func (f Flag) IsRequest() bool {
	switch f {
	case FlagNumPackets, FlagGetPacket, FlagGetBandwidth, FlagGetPacketSize:
		return true
	}
	return false
}

const (
	// HeaderSize is the frame header length: flag u8, length u16 LE.
	HeaderSize = 3

	// MaxDataSize is the largest payload the length field can carry.
	MaxDataSize = 0xFFFF

	// DelaySize is the DELAY payload length: seconds u8, microseconds u32 LE.
	DelaySize = 5

	// MaxDelay is the longest delay the DELAY payload can express.
	MaxDelay = 255*time.Second + 999999*time.Microsecond
)

var (
	// ErrDataTooLarge is returned for payloads over MaxDataSize.
	ErrDataTooLarge = errors.New("frame: data too large")

	// ErrDelayRange is returned for delays outside 0..MaxDelay.
	ErrDelayRange = errors.New("frame: delay out of range")
)

// FrameError reports a malformed frame.
type FrameError struct {
	Op  string // "read" or "decode"
	Err error
}

// Error implements the error interface
func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *FrameError) Unwrap() error {
	return e.Err
}

// Frame is one control message.
//
// Frame Structure:
//
//	[0]     flag           Flag
//	[1-2]   length         Data length (little-endian uint16)
//	[3+]    data           Data bytes
type Frame struct {
	Flag Flag
	Data []byte
}

// MarshalBinary encodes the frame.
func (f Frame) MarshalBinary() ([]byte, error) {
	if len(f.Data) > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrDataTooLarge, len(f.Data), MaxDataSize)
	}
	buf := make([]byte, HeaderSize+len(f.Data))
	buf[0] = byte(f.Flag)
	binary.LittleEndian.PutUint16(buf[1:3], uint16(len(f.Data)))
	copy(buf[HeaderSize:], f.Data)
	return buf, nil
}

// UnmarshalBinary decodes one complete frame. Trailing bytes are an error.
func (f *Frame) UnmarshalBinary(b []byte) error {
	if len(b) < HeaderSize {
		return &FrameError{Op: "decode", Err: fmt.Errorf("short header: %d bytes", len(b))}
	}
	n := int(binary.LittleEndian.Uint16(b[1:3]))
	if len(b) != HeaderSize+n {
		return &FrameError{Op: "decode", Err: fmt.Errorf("length field %d, have %d data bytes", n, len(b)-HeaderSize)}
	}
	f.Flag = Flag(b[0])
	f.Data = append([]byte(nil), b[HeaderSize:]...)
	return nil
}

// String returns a debug representation of the frame
func (f Frame) String() string {
	return fmt.Sprintf("Frame{Flag=%s, Length=%d}", f.Flag, len(f.Data))
}

// WriteFrame writes f to w in one write.
func WriteFrame(w io.Writer, f Frame) error {
	buf, err := f.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ReadFrame reads one frame from a byte stream.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, &FrameError{Op: "read", Err: err}
	}

	f := &Frame{Flag: Flag(header[0])}
	if n := binary.LittleEndian.Uint16(header[1:3]); n > 0 {
		f.Data = make([]byte, n)
		if _, err := io.ReadFull(r, f.Data); err != nil {
			return nil, &FrameError{Op: "read", Err: err}
		}
	}
	return f, nil
}

// EncodeDelay lays out a DELAY payload.
func EncodeDelay(d time.Duration) ([]byte, error) {
	if d < 0 || d > MaxDelay {
		return nil, fmt.Errorf("%w: %v (max %v)", ErrDelayRange, d, MaxDelay)
	}
	secs := d / time.Second
	usecs := (d % time.Second) / time.Microsecond

	buf := make([]byte, DelaySize)
	buf[0] = uint8(secs)
	binary.LittleEndian.PutUint32(buf[1:], uint32(usecs))
	return buf, nil
}

// DecodeDelay reads a DELAY payload.
func DecodeDelay(b []byte) (time.Duration, error) {
	if len(b) != DelaySize {
		return 0, &FrameError{Op: "decode", Err: fmt.Errorf("delay payload is %d bytes, want %d", len(b), DelaySize)}
	}
	secs := time.Duration(b[0]) * time.Second
	usecs := time.Duration(binary.LittleEndian.Uint32(b[1:])) * time.Microsecond
	return secs + usecs, nil
}

// EncodeCounter lays out a u64 response payload.
func EncodeCounter(n uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, n)
}

// DecodeCounter reads a u64 response payload.
func DecodeCounter(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, &FrameError{Op: "decode", Err: fmt.Errorf("counter payload is %d bytes, want 8", len(b))}
	}
	return binary.LittleEndian.Uint64(b), nil
}
