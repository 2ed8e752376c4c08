package transport

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestReadFrame(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
		verify  func(t *testing.T, frame *Frame)
	}{
		{
			name: "start without data",
			data: []byte{0x01, 0x00, 0x00},
			verify: func(t *testing.T, frame *Frame) {
				if frame.Flag != FlagStart {
					t.Errorf("flag = %s, want START", frame.Flag)
				}
				if len(frame.Data) != 0 {
					t.Errorf("data = %v, want none", frame.Data)
				}
			},
		},
		{
			name: "packet with little-endian length",
			data: []byte{0x00, 0x03, 0x00, 0xAA, 0xBB, 0xCC},
			verify: func(t *testing.T, frame *Frame) {
				if frame.Flag != FlagPacket {
					t.Errorf("flag = %s, want PACKET", frame.Flag)
				}
				if !bytes.Equal(frame.Data, []byte{0xAA, 0xBB, 0xCC}) {
					t.Errorf("data = %v", frame.Data)
				}
			},
		},
		{
			name: "response flag",
			data: []byte{0x0B, 0x01, 0x00, 0x2A},
			verify: func(t *testing.T, frame *Frame) {
				if frame.Flag != FlagResponse {
					t.Errorf("flag = %s, want RESPONSE", frame.Flag)
				}
			},
		},
		{
			name:    "truncated header",
			data:    []byte{0x01, 0x00},
			wantErr: true,
		},
		{
			name:    "truncated data",
			data:    []byte{0x00, 0x04, 0x00, 0x01},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := ReadFrame(bytes.NewReader(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadFrame() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var fe *FrameError
				if !errors.As(err, &fe) {
					t.Errorf("error %v is not a *FrameError", err)
				}
				return
			}
			if tt.verify != nil {
				tt.verify(t, frame)
			}
		})
	}
}

func TestReadFrameEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("ReadFrame(empty) error = %v, want io.EOF", err)
	}
}

func TestWriteFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := Frame{Flag: FlagDelay, Data: []byte{1, 2, 3, 4, 5}}
	if err := WriteFrame(&buf, want); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}
	if got := buf.Bytes()[:HeaderSize]; !bytes.Equal(got, []byte{0x03, 0x05, 0x00}) {
		t.Errorf("header = % x, want 03 05 00", got)
	}

	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if got.Flag != want.Flag || !bytes.Equal(got.Data, want.Data) {
		t.Errorf("ReadFrame() = %v, want %v", got, want)
	}
}

func TestMarshalTooLarge(t *testing.T) {
	_, err := Frame{Data: make([]byte, MaxDataSize+1)}.MarshalBinary()
	if !errors.Is(err, ErrDataTooLarge) {
		t.Errorf("MarshalBinary() error = %v, want ErrDataTooLarge", err)
	}
}

func TestUnmarshalRejectsTrailingBytes(t *testing.T) {
	var f Frame
	if err := f.UnmarshalBinary([]byte{0x00, 0x01, 0x00, 0xFF, 0xFF}); err == nil {
		t.Error("UnmarshalBinary() accepted a length mismatch")
	}
}

func TestEncodeDelay(t *testing.T) {
	tests := []struct {
		name    string
		delay   time.Duration
		want    []byte
		wantErr bool
	}{
		{"one second", time.Second, []byte{1, 0, 0, 0, 0}, false},
		{"two and a half", 2500 * time.Millisecond, []byte{2, 0x20, 0xA1, 0x07, 0x00}, false},
		{"sub microsecond dropped", 1500 * time.Nanosecond, []byte{0, 1, 0, 0, 0}, false},
		{"maximum", MaxDelay, []byte{255, 0x3F, 0x42, 0x0F, 0x00}, false},
		{"over 255 seconds", 256 * time.Second, nil, true},
		{"negative", -time.Second, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeDelay(tt.delay)
			if (err != nil) != tt.wantErr {
				t.Fatalf("EncodeDelay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrDelayRange) {
					t.Errorf("error = %v, want ErrDelayRange", err)
				}
				return
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("EncodeDelay() = % x, want % x", got, tt.want)
			}
			back, err := DecodeDelay(got)
			if err != nil {
				t.Fatalf("DecodeDelay() error = %v", err)
			}
			if back != tt.delay.Truncate(time.Microsecond) {
				t.Errorf("DecodeDelay() = %v, want %v", back, tt.delay)
			}
		})
	}
}

func TestCounter(t *testing.T) {
	b := EncodeCounter(1_000_000)
	if len(b) != 8 || b[0] != 0x40 || b[1] != 0x42 || b[2] != 0x0F {
		t.Errorf("EncodeCounter() = % x", b)
	}
	n, err := DecodeCounter(b)
	if err != nil || n != 1_000_000 {
		t.Errorf("DecodeCounter() = %d, %v", n, err)
	}
	if _, err := DecodeCounter(b[:4]); err == nil {
		t.Error("DecodeCounter() accepted a short payload")
	}
}

func TestFlagString(t *testing.T) {
	if FlagGetBandwidth.String() != "GET_BANDWIDTH" {
		t.Errorf("String() = %q", FlagGetBandwidth.String())
	}
	if Flag(42).String() != "FLAG(42)" {
		t.Errorf("String() = %q", Flag(42).String())
	}
	if !FlagGetPacketSize.IsRequest() || FlagStart.IsRequest() {
		t.Error("IsRequest() classification is wrong")
	}
}
