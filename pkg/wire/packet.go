// ABOUTME: Audio packet envelope with sequence index and payload checksum
// ABOUTME: Packets are built once at the transmitter and verified on arrival
package wire

import (
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/audlink/audlink/pkg/audio"
)

// SamplesPerPacket is how many interleaved samples each audio packet
// carries. At 256 float32 samples a packet payload is 1KiB, well under
// the 4096-byte receive buffer.
const SamplesPerPacket = 256

// PacketMetadata carries the per-packet sequencing and integrity fields.
type PacketMetadata struct {
	// Index increases monotonically per stream; wrapping is not
	// expected in practice.
	Index uint64
	// Checksum is a CRC-32 over the payload's little-endian sample bytes.
	Checksum uint32
}

// Packet is one sequenced slice of an audio stream. It is immutable
// after construction and consumed exactly once by the packet sequence.
type Packet struct {
	Metadata PacketMetadata
	Payload  audio.Buffer
}

// NewPacket builds a packet, computing the checksum over the payload's
// raw sample bytes at construction time.
func NewPacket(index uint64, payload audio.Buffer) Packet {
	return Packet{
		Metadata: PacketMetadata{
			Index:    index,
			Checksum: checksum(payload),
		},
		Payload: payload,
	}
}

// Valid recomputes the payload checksum and compares it to the stored value.
func (p Packet) Valid() bool {
	return p.Metadata.Checksum == checksum(p.Payload)
}

// checksum hashes the little-endian byte representation of the payload's
// interleaved sample array, matching the transmitter-side computation.
func checksum(buf audio.Buffer) uint32 {
	sum := crc32.NewIEEE()
	var scratch [4]byte
	for _, sample := range buf.Data {
		binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(sample))
		sum.Write(scratch[:])
	}
	return sum.Sum32()
}

// Packetize slices a buffer into sequentially indexed, checksummed
// packets of at most SamplesPerPacket samples, starting at startIndex.
func Packetize(startIndex uint64, buf audio.Buffer) []Packet {
	if buf.Empty() {
		return nil
	}

	packets := make([]Packet, 0, (len(buf.Data)+SamplesPerPacket-1)/SamplesPerPacket)
	for off := 0; off < len(buf.Data); off += SamplesPerPacket {
		end := off + SamplesPerPacket
		if end > len(buf.Data) {
			end = len(buf.Data)
		}

		chunk := audio.Buffer{
			Data:        buf.Data[off:end],
			NumChannels: buf.NumChannels,
		}
		packets = append(packets, NewPacket(startIndex+uint64(len(packets)), chunk))
	}

	return packets
}
