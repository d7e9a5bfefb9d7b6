// ABOUTME: Low-level binary encoding helpers for wire messages
// ABOUTME: Little-endian field readers and writers shared by the codec
package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/audlink/audlink/pkg/audio"
)

// decoder walks a datagram payload with a sticky error, so message
// decoding reads as straight-line field access.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) failf(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if d.off+n > len(d.buf) {
		d.failf("message truncated: need %d bytes at offset %d, have %d", n, d.off, len(d.buf)-d.off)
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) uint8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) uint16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) uint32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) uint64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) string_() string {
	n := d.uint16()
	b := d.take(int(n))
	if b == nil {
		return ""
	}
	return string(b)
}

// finish rejects trailing bytes; a datagram carries exactly one message.
func (d *decoder) finish() error {
	if d.err != nil {
		return d.err
	}
	if d.off != len(d.buf) {
		return fmt.Errorf("message has %d trailing bytes", len(d.buf)-d.off)
	}
	return nil
}

func appendUint16Count(b []byte, n int) []byte {
	return binary.LittleEndian.AppendUint16(b, uint16(n))
}

func appendString(b []byte, s string) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(len(s)))
	return append(b, s...)
}

func appendDevice(b []byte, dev audio.Device) []byte {
	b = appendString(b, dev.Name)
	return binary.LittleEndian.AppendUint16(b, uint16(dev.NumChannels))
}

func (d *decoder) device() audio.Device {
	name := d.string_()
	channels := d.uint16()
	return audio.Device{Name: name, NumChannels: int(channels)}
}

func appendSelection(b []byte, sel audio.ChannelSelection) []byte {
	b = append(b, byte(sel.Kind))
	switch sel.Kind {
	case audio.SelectionMono:
		b = binary.LittleEndian.AppendUint16(b, uint16(sel.Channel))
	case audio.SelectionRange:
		b = binary.LittleEndian.AppendUint16(b, uint16(sel.Start))
		b = binary.LittleEndian.AppendUint16(b, uint16(sel.End))
	case audio.SelectionList:
		b = binary.LittleEndian.AppendUint16(b, uint16(len(sel.Indices)))
		for _, ch := range sel.Indices {
			b = binary.LittleEndian.AppendUint16(b, uint16(ch))
		}
	}
	return b
}

func (d *decoder) selection() audio.ChannelSelection {
	kind := audio.SelectionKind(d.uint8())
	switch kind {
	case audio.SelectionMono:
		return audio.Mono(int(d.uint16()))
	case audio.SelectionRange:
		start := d.uint16()
		end := d.uint16()
		return audio.Range(int(start), int(end))
	case audio.SelectionList:
		count := int(d.uint16())
		indices := make([]int, 0, count)
		for i := 0; i < count; i++ {
			indices = append(indices, int(d.uint16()))
		}
		return audio.List(indices...)
	}

	d.failf("unknown channel selection kind: %d", kind)
	return audio.ChannelSelection{}
}

func appendBuffer(b []byte, buf audio.Buffer) []byte {
	b = binary.LittleEndian.AppendUint16(b, uint16(buf.NumChannels))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(buf.Data)))
	for _, sample := range buf.Data {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(sample))
	}
	return b
}

func (d *decoder) buffer() audio.Buffer {
	channels := int(d.uint16())
	count := int(d.uint32())
	if d.err != nil {
		return audio.Buffer{}
	}

	// The claimed sample count must fit in the datagram before any
	// allocation happens, or a forged count could demand gigabytes.
	if remaining := (len(d.buf) - d.off) / 4; count > remaining {
		d.failf("buffer claims %d samples, datagram holds %d", count, remaining)
		return audio.Buffer{}
	}

	data := make([]float32, 0, count)
	for i := 0; i < count; i++ {
		data = append(data, math.Float32frombits(d.uint32()))
	}
	if d.err != nil {
		return audio.Buffer{}
	}

	return audio.Buffer{Data: data, NumChannels: channels}
}

func appendPacket(b []byte, p Packet) []byte {
	b = binary.LittleEndian.AppendUint64(b, p.Metadata.Index)
	b = binary.LittleEndian.AppendUint32(b, p.Metadata.Checksum)
	return appendBuffer(b, p.Payload)
}

func (d *decoder) packet() Packet {
	index := d.uint64()
	sum := d.uint32()
	payload := d.buffer()
	return Packet{
		Metadata: PacketMetadata{Index: index, Checksum: sum},
		Payload:  payload,
	}
}

func appendConnection(b []byte, conn audio.DeviceConnection) []byte {
	b = appendDevice(b, conn.Device)
	b = appendSelection(b, conn.Channels)
	return binary.LittleEndian.AppendUint32(b, uint32(conn.SampleRate))
}

func (d *decoder) connection() audio.DeviceConnection {
	dev := d.device()
	sel := d.selection()
	rate := d.uint32()
	return audio.DeviceConnection{Device: dev, Channels: sel, SampleRate: int(rate)}
}
