// ABOUTME: Tests for the remote transmitter facade
// ABOUTME: Covers request serving, connection announcements, and packet streaming
package remote

import (
	"errors"
	"testing"
	"time"

	"github.com/audlink/audlink/internal/comms"
	"github.com/audlink/audlink/pkg/audio"
	"github.com/audlink/audlink/pkg/wire"
)

// scriptedSource is a local audio source with canned devices and a
// queue of buffers handed out one per RetrieveBuffer call. It records
// the order of calls that matter to the transmitter.
type scriptedSource struct {
	devices    []audio.Device
	connection audio.DeviceConnection
	connected  bool
	buffers    []audio.Buffer
	connectErr error
	calls      []string
}

func (s *scriptedSource) IsAccessible() bool          { return s.connected }
func (s *scriptedSource) ListDevices() []audio.Device { return s.devices }
func (s *scriptedSource) ProcessEvents() error        { return nil }

func (s *scriptedSource) Connect(device audio.Device, channels audio.ChannelSelection) error {
	s.calls = append(s.calls, "connect")
	if s.connectErr != nil {
		return s.connectErr
	}
	s.connection = audio.DeviceConnection{Device: device, Channels: channels, SampleRate: 48000}
	s.connected = true
	return nil
}

func (s *scriptedSource) ConnectedDevice() (audio.DeviceConnection, bool) {
	return s.connection, s.connected
}

func (s *scriptedSource) RetrieveBuffer() audio.Buffer {
	s.calls = append(s.calls, "retrieve")
	if len(s.buffers) == 0 {
		return audio.Buffer{}
	}
	buf := s.buffers[0]
	s.buffers = s.buffers[1:]
	return buf
}

// launchTransmitter wires a transmitter to a mock socket whose
// transmissions are decoded onto the returned channel.
func launchTransmitter(t *testing.T, source audio.Source) (*Transmitter, chan wire.Response) {
	t.Helper()

	observed := make(chan wire.Response, 64)
	socket := comms.NewMockSocket()
	socket.SendHook = func(payload []byte) error {
		response, err := wire.DecodeResponse(payload)
		if err != nil {
			t.Errorf("failed to decode transmitted response: %v", err)
			return err
		}
		observed <- response
		return nil
	}

	transmitter, err := NewTransmitter(comms.Sockets{Socket: socket, Target: comms.MockTarget()}, source)
	if err != nil {
		t.Fatalf("failed to create transmitter: %v", err)
	}
	t.Cleanup(transmitter.Close)

	return transmitter, observed
}

func awaitResponse(t *testing.T, observed chan wire.Response) wire.Response {
	t.Helper()
	select {
	case response := <-observed:
		return response
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a transmission")
		return wire.Response{}
	}
}

func TestTransmitterServesDeviceList(t *testing.T) {
	source := &scriptedSource{devices: []audio.Device{
		{Name: "mic", NumChannels: 1},
		{Name: "desk", NumChannels: 2},
	}}
	transmitter, observed := launchTransmitter(t, source)

	transmitter.requests <- wire.GetDevices()
	if err := transmitter.ProcessEvents(); err != nil {
		t.Fatalf("failed to process events: %v", err)
	}

	response := awaitResponse(t, observed)
	if response.Kind != wire.ResponseDevices {
		t.Fatalf("expected a device list, got kind %d", response.Kind)
	}
	if len(response.Devices) != 2 || response.Devices[0].Name != "mic" {
		t.Errorf("unexpected device list: %+v", response.Devices)
	}
}

func TestTransmitterAnnouncesConnectionOnce(t *testing.T) {
	source := &scriptedSource{
		connected: true,
		connection: audio.DeviceConnection{
			Device:     audio.Device{Name: "mic", NumChannels: 2},
			Channels:   audio.Mono(0),
			SampleRate: 44100,
		},
	}
	transmitter, observed := launchTransmitter(t, source)

	if err := transmitter.ProcessEvents(); err != nil {
		t.Fatalf("failed to process events: %v", err)
	}

	response := awaitResponse(t, observed)
	if response.Kind != wire.ResponseConnected {
		t.Fatalf("expected a connection announcement, got kind %d", response.Kind)
	}
	if response.Connection.SampleRate != 44100 {
		t.Errorf("unexpected announced connection: %+v", response.Connection)
	}

	// The same connection is not re-announced.
	if err := transmitter.ProcessEvents(); err != nil {
		t.Fatalf("failed to process events: %v", err)
	}
	select {
	case response := <-observed:
		t.Errorf("unexpected repeat announcement: %+v", response)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTransmitterStreamsSequencedPackets(t *testing.T) {
	first := make([]float32, 2*wire.SamplesPerPacket)
	second := make([]float32, wire.SamplesPerPacket)
	source := &scriptedSource{buffers: []audio.Buffer{
		{Data: first, NumChannels: 1},
		{Data: second, NumChannels: 1},
	}}
	transmitter, observed := launchTransmitter(t, source)

	for tick := 0; tick < 2; tick++ {
		if err := transmitter.ProcessEvents(); err != nil {
			t.Fatalf("failed to process events: %v", err)
		}
	}

	for want := uint64(0); want < 3; want++ {
		response := awaitResponse(t, observed)
		if response.Kind != wire.ResponseAudio {
			t.Fatalf("expected an audio packet, got kind %d", response.Kind)
		}
		if response.Packet.Metadata.Index != want {
			t.Errorf("expected packet index %d, got %d", want, response.Packet.Metadata.Index)
		}
		if !response.Packet.Valid() {
			t.Errorf("packet %d failed checksum verification", want)
		}
	}
}

func TestTransmitterPurgesBeforeConnecting(t *testing.T) {
	source := &scriptedSource{devices: []audio.Device{{Name: "mic", NumChannels: 2}}}
	transmitter, _ := launchTransmitter(t, source)

	transmitter.requests <- wire.Connect(source.devices[0], audio.Mono(0))
	if err := transmitter.ProcessEvents(); err != nil {
		t.Fatalf("failed to process events: %v", err)
	}

	if len(source.calls) < 2 || source.calls[0] != "retrieve" || source.calls[1] != "connect" {
		t.Errorf("expected stale audio to be purged before connect, got calls %v", source.calls)
	}
}

func TestTransmitterSurfacesConnectFailure(t *testing.T) {
	source := &scriptedSource{connectErr: errors.New("device unavailable")}
	transmitter, _ := launchTransmitter(t, source)

	transmitter.requests <- wire.Connect(audio.Device{Name: "gone", NumChannels: 1}, audio.Mono(0))
	if err := transmitter.ProcessEvents(); err == nil {
		t.Error("expected connect failure to surface")
	}
}
