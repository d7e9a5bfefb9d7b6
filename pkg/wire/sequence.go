// ABOUTME: Packet resequencer that repairs an out-of-order, lossy stream
// ABOUTME: Keeps packets sorted by index and substitutes corrupt payloads
package wire

import (
	"log"
	"sort"

	"github.com/audlink/audlink/pkg/audio"
)

// PacketSequence accumulates arriving audio packets, possibly out of
// order, duplicated, or corrupted, and reconstructs a contiguous,
// index-ordered audio timeline.
//
// Index order is authoritative; arrival order is irrelevant. The
// sequence is always sorted by index and never holds two packets with
// the same index.
//
// The zero value is ready to use.
type PacketSequence struct {
	packets []Packet
}

// Push ingests one arriving packet.
//
// A packet that verifies is inserted at its sorted position, replacing
// any packet already held at that index. A packet that fails checksum
// verification is never stored: if its index is already present the held
// entry is left untouched, otherwise a substitute packet is synthesized
// carrying the failed index and the payload of the last entry currently
// in the sequence. A corrupt packet arriving before any valid packet has
// been accepted is dropped outright, since there is nothing to
// substitute.
func (s *PacketSequence) Push(packet Packet) {
	if packet.Valid() {
		s.insert(packet)
		return
	}

	index := packet.Metadata.Index
	if _, ok := s.find(index); ok {
		// Redelivery of an already-repaired index is a no-op.
		return
	}

	if len(s.packets) == 0 {
		log.Printf("dropping corrupt packet %d: no valid packet to substitute", index)
		return
	}

	lastKnownGood := s.packets[len(s.packets)-1].Payload
	s.insert(NewPacket(index, lastKnownGood))
}

// Len reports the number of packets currently held.
func (s *PacketSequence) Len() int {
	return len(s.packets)
}

// FrameCount reports the total number of frames Drain would currently
// yield, without consuming anything.
func (s *PacketSequence) FrameCount() int {
	frames := 0
	for _, p := range s.packets {
		frames += p.Payload.FrameCount()
	}
	return frames
}

// Drain removes and returns every held payload in ascending index
// order, leaving the sequence empty. Draining is the only way audio
// leaves the sequence, so no payload is ever emitted twice.
func (s *PacketSequence) Drain() []audio.Buffer {
	buffers := make([]audio.Buffer, 0, len(s.packets))
	for _, p := range s.packets {
		buffers = append(buffers, p.Payload)
	}
	s.packets = s.packets[:0]
	return buffers
}

// find locates the position of index via binary search.
func (s *PacketSequence) find(index uint64) (int, bool) {
	i := sort.Search(len(s.packets), func(i int) bool {
		return s.packets[i].Metadata.Index >= index
	})
	return i, i < len(s.packets) && s.packets[i].Metadata.Index == index
}

// insert places the packet at its sorted position, replacing an
// existing packet with the same index.
func (s *PacketSequence) insert(packet Packet) {
	i, exists := s.find(packet.Metadata.Index)
	if exists {
		s.packets[i] = packet
		return
	}

	s.packets = append(s.packets, Packet{})
	copy(s.packets[i+1:], s.packets[i:])
	s.packets[i] = packet
}
