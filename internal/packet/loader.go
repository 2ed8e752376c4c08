package packet

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/muurk/lcdpacket/internal/logging"
	"go.uber.org/zap"
)

// ErrEmptyCapture is returned when a capture file holds no packet.
var ErrEmptyCapture = errors.New("packet: capture file has no packets")

// Loader supplies a finished packet from outside the assembly loop.
type Loader interface {
	Load(ctx context.Context) (*Packet, error)
}

// PcapLoader reads the first packet of a pcap or pcapng file.
type PcapLoader struct {
	Path string
}

// pcapng files start with a section header block.
var pcapngMagic = []byte{0x0a, 0x0d, 0x0d, 0x0a}

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Load implements Loader
func (l PcapLoader) Load(ctx context.Context) (*Packet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(l.Path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("read capture header: %w", err)
	}

	var src packetSource
	if bytes.Equal(magic, pcapngMagic) {
		src, err = pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
	} else {
		src, err = pcapgo.NewReader(br)
	}
	if err != nil {
		return nil, fmt.Errorf("parse capture header: %w", err)
	}

	data, _, err := src.ReadPacketData()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyCapture
	}
	if err != nil {
		return nil, fmt.Errorf("read packet: %w", err)
	}

	p := &Packet{
		Layers:  Decode(data, src.LinkType()),
		Natural: len(data),
		Size:    len(data),
		Bytes:   data,
	}
	logging.Info("Loaded packet from capture",
		zap.String("path", l.Path),
		zap.Strings("layers", p.Names()),
		zap.Int("length", len(data)))
	return p, nil
}

// Decode lists the layers gopacket recognises in data. Only names are
// filled in; loaded packets are sent as they are, not re-assembled.
func Decode(data []byte, link layers.LinkType) []Layer {
	pkt := gopacket.NewPacket(data, link, gopacket.Default)
	out := make([]Layer, 0, len(pkt.Layers()))
	for _, l := range pkt.Layers() {
		out = append(out, Layer{Name: l.LayerType().String()})
	}
	return out
}

// CaptureWriter appends packets to a pcap stream.
type CaptureWriter struct {
	w *pcapgo.Writer
}

// NewCaptureWriter writes the pcap file header to w.
func NewCaptureWriter(w io.Writer) (*CaptureWriter, error) {
	pw := pcapgo.NewWriter(w)
	if err := pw.WriteFileHeader(65535, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("write capture header: %w", err)
	}
	return &CaptureWriter{w: pw}, nil
}

// Write appends one packet stamped with the current time.
func (c *CaptureWriter) Write(data []byte) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	return c.w.WritePacket(ci, data)
}

// WritePcap writes data as a single-packet pcap stream.
func WritePcap(w io.Writer, data []byte) error {
	cw, err := NewCaptureWriter(w)
	if err != nil {
		return err
	}
	return cw.Write(data)
}
