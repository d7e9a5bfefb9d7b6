// ABOUTME: Tests for packet construction, validation, and packetization
// ABOUTME: Covers checksum behavior and buffer slicing into packets
package wire

import (
	"testing"

	"github.com/audlink/audlink/pkg/audio"
)

func TestNewPacketVerifies(t *testing.T) {
	packet := NewPacket(0, audio.Buffer{Data: []float32{1, 2, 3}, NumChannels: 1})
	if !packet.Valid() {
		t.Error("expected freshly built packet to verify")
	}
}

func TestTamperedPacketFailsVerification(t *testing.T) {
	packet := NewPacket(0, audio.Buffer{Data: []float32{1, 2, 3}, NumChannels: 1})

	packet.Metadata.Checksum++
	if packet.Valid() {
		t.Error("expected tampered checksum to fail verification")
	}

	packet = NewPacket(0, audio.Buffer{Data: []float32{1, 2, 3}, NumChannels: 1})
	packet.Payload.Data[1] = -2
	if packet.Valid() {
		t.Error("expected tampered payload to fail verification")
	}
}

func TestPacketizeSplitsBuffer(t *testing.T) {
	const numPackets = 16
	buf := audio.NewBuffer(SamplesPerPacket*numPackets/2, 2)

	packets := Packetize(0, buf)
	if len(packets) != numPackets {
		t.Fatalf("expected %d packets, got %d", numPackets, len(packets))
	}

	for i, p := range packets {
		if p.Metadata.Index != uint64(i) {
			t.Errorf("packet %d has index %d", i, p.Metadata.Index)
		}
		if !p.Valid() {
			t.Errorf("packet %d does not verify", i)
		}
		if p.Payload.NumChannels != 2 {
			t.Errorf("packet %d lost channel count", i)
		}
	}
}

func TestPacketizeStartsAtGivenIndex(t *testing.T) {
	packets := Packetize(100, audio.NewBuffer(SamplesPerPacket, 1))
	if len(packets) != 1 {
		t.Fatalf("expected 1 packet, got %d", len(packets))
	}
	if packets[0].Metadata.Index != 100 {
		t.Errorf("expected index 100, got %d", packets[0].Metadata.Index)
	}
}

func TestPacketizeKeepsShortTail(t *testing.T) {
	buf := audio.Buffer{
		Data:        make([]float32, SamplesPerPacket+10),
		NumChannels: 1,
	}

	packets := Packetize(0, buf)
	if len(packets) != 2 {
		t.Fatalf("expected 2 packets, got %d", len(packets))
	}
	if got := len(packets[1].Payload.Data); got != 10 {
		t.Errorf("expected 10-sample tail, got %d", got)
	}
}

func TestPacketizeEmptyBuffer(t *testing.T) {
	if packets := Packetize(0, audio.Buffer{}); packets != nil {
		t.Errorf("expected no packets for empty buffer, got %d", len(packets))
	}
}

func TestPacketizeRoundTripPreservesSamples(t *testing.T) {
	buf := audio.Buffer{NumChannels: 1}
	for i := 0; i < SamplesPerPacket*4; i++ {
		buf.Data = append(buf.Data, float32(i))
	}

	var seq PacketSequence
	for _, p := range Packetize(0, buf) {
		seq.Push(p)
	}

	combined := audio.Concat(seq.Drain())
	if len(combined.Data) != len(buf.Data) {
		t.Fatalf("expected %d samples, got %d", len(buf.Data), len(combined.Data))
	}
	for i := range buf.Data {
		if combined.Data[i] != buf.Data[i] {
			t.Fatalf("sample %d mismatch: %f != %f", i, combined.Data[i], buf.Data[i])
		}
	}
}
