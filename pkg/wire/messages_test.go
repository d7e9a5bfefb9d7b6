// ABOUTME: Tests for wire message encoding and decoding
// ABOUTME: Verifies round trips for every variant and rejection of bad datagrams
package wire

import (
	"reflect"
	"testing"

	"github.com/audlink/audlink/pkg/audio"
)

func roundTripRequest(t *testing.T, req Request) Request {
	t.Helper()

	data, err := req.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	decoded, err := DecodeRequest(data)
	if err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}

	return decoded
}

func TestGetDevicesRequestRoundTrip(t *testing.T) {
	req := GetDevices()
	if decoded := roundTripRequest(t, req); !reflect.DeepEqual(decoded, req) {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, req)
	}
}

func TestConnectRequestRoundTrip(t *testing.T) {
	selections := []audio.ChannelSelection{
		audio.Mono(3),
		audio.Range(0, 4),
		audio.List(0, 2, 5),
	}

	for _, sel := range selections {
		req := Connect(audio.Device{Name: "interface", NumChannels: 8}, sel)
		if decoded := roundTripRequest(t, req); !reflect.DeepEqual(decoded, req) {
			t.Errorf("round trip mismatch: %+v != %+v", decoded, req)
		}
	}
}

func roundTripResponse(t *testing.T, resp Response) Response {
	t.Helper()

	data, err := resp.MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}

	decoded, err := DecodeResponse(data)
	if err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	return decoded
}

func TestDevicesResponseRoundTrip(t *testing.T) {
	resp := Devices([]audio.Device{
		{Name: "a", NumChannels: 1},
		{Name: "b", NumChannels: 2},
		{Name: "c", NumChannels: 3},
	})

	if decoded := roundTripResponse(t, resp); !reflect.DeepEqual(decoded, resp) {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, resp)
	}
}

func TestAudioResponseRoundTrip(t *testing.T) {
	packet := NewPacket(42, audio.Buffer{
		Data:        []float32{0.25, -0.5, 1.0, -1.0},
		NumChannels: 2,
	})

	resp := Audio(packet)
	decoded := roundTripResponse(t, resp)
	if !reflect.DeepEqual(decoded, resp) {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, resp)
	}
	if !decoded.Packet.Valid() {
		t.Error("expected decoded packet to still verify")
	}
}

func TestConnectedResponseRoundTrip(t *testing.T) {
	resp := Connected(audio.DeviceConnection{
		Device:     audio.Device{Name: "mic", NumChannels: 2},
		Channels:   audio.Range(0, 2),
		SampleRate: 48000,
	})

	if decoded := roundTripResponse(t, resp); !reflect.DeepEqual(decoded, resp) {
		t.Errorf("round trip mismatch: %+v != %+v", decoded, resp)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeRequest([]byte{0xff, 0x01, 0x02}); err == nil {
		t.Error("expected unknown request kind to fail")
	}
	if _, err := DecodeResponse([]byte{0xff}); err == nil {
		t.Error("expected unknown response kind to fail")
	}
	if _, err := DecodeResponse(nil); err == nil {
		t.Error("expected empty datagram to fail")
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data, err := Audio(NewPacket(7, audio.NewBuffer(16, 2))).MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	if _, err := DecodeResponse(data[:len(data)-3]); err == nil {
		t.Error("expected truncated datagram to fail")
	}
}

func TestDecodeRejectsOverstatedSampleCount(t *testing.T) {
	// A forged audio datagram claiming ~4 billion samples in a 19-byte
	// payload must fail the decode without attempting the allocation.
	forged := []byte{byte(ResponseAudio)}
	forged = append(forged, make([]byte, 8)...) // index
	forged = append(forged, make([]byte, 4)...) // checksum
	forged = append(forged, 0x02, 0x00)         // channels
	forged = append(forged, 0xff, 0xff, 0xff, 0xff)

	if _, err := DecodeResponse(forged); err == nil {
		t.Error("expected an overstated sample count to fail")
	}
}

func TestMarshalRejectsUnknownKind(t *testing.T) {
	if _, err := (Request{}).MarshalBinary(); err == nil {
		t.Error("expected a zero-valued request to fail to marshal")
	}
	if _, err := (Response{}).MarshalBinary(); err == nil {
		t.Error("expected a zero-valued response to fail to marshal")
	}
	if _, err := (Response{Kind: 0x7f}).MarshalBinary(); err == nil {
		t.Error("expected an unknown response kind to fail to marshal")
	}
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := GetDevices().MarshalBinary()
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	if _, err := DecodeRequest(append(data, 0x00)); err == nil {
		t.Error("expected trailing bytes to fail")
	}
}
