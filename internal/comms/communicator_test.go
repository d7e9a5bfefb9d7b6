// ABOUTME: Tests for the socket communicator
// ABOUTME: Covers teardown, inbound parsing, and outbound transmission
package comms

import (
	"net"
	"testing"
	"time"

	"github.com/audlink/audlink/pkg/audio"
	"github.com/audlink/audlink/pkg/wire"
)

func TestCommunicatorTerminatesWorkersOnClose(t *testing.T) {
	requests := make(chan wire.Request, 1)
	responses := make(chan wire.Response, 1)

	comms, err := Launch(
		Sockets{Socket: NewMockSocket(), Target: MockTarget()},
		wire.DecodeResponse,
		requests,
		responses,
	)
	if err != nil {
		t.Fatalf("failed to launch communicator: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		comms.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("communicator did not tear down in time")
	}
}

func TestCommunicatorCloseIsIdempotent(t *testing.T) {
	comms, err := Launch(
		Sockets{Socket: NewMockSocket(), Target: MockTarget()},
		wire.DecodeResponse,
		make(chan wire.Request),
		make(chan wire.Response),
	)
	if err != nil {
		t.Fatalf("failed to launch communicator: %v", err)
	}

	comms.Close()
	comms.Close()
}

func TestCommunicatorParsesInboundDatagrams(t *testing.T) {
	expected := wire.Audio(wire.NewPacket(0, audio.Buffer{
		Data:        []float32{1, 2, 3},
		NumChannels: 1,
	}))

	socket := NewMockSocket()
	sent := false
	socket.RecvHook = func(buf []byte) (int, net.Addr, error) {
		if sent {
			<-socket.Done()
			return 0, nil, net.ErrClosed
		}
		sent = true

		payload, err := expected.MarshalBinary()
		if err != nil {
			t.Errorf("failed to marshal response: %v", err)
			return 0, nil, err
		}
		copy(buf, payload)
		return len(payload), MockTarget(), nil
	}

	responses := make(chan wire.Response, 1)
	comms, err := Launch(
		Sockets{Socket: socket, Target: MockTarget()},
		wire.DecodeResponse,
		make(chan wire.Request),
		responses,
	)
	if err != nil {
		t.Fatalf("failed to launch communicator: %v", err)
	}
	defer comms.Close()

	select {
	case response := <-responses:
		if response.Kind != wire.ResponseAudio {
			t.Errorf("expected audio response, got kind %d", response.Kind)
		}
		if !response.Packet.Valid() {
			t.Error("expected received packet to verify")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for parsed response")
	}
}

func TestCommunicatorTransmitsOutboundMessages(t *testing.T) {
	observed := make(chan wire.Request, 1)

	socket := NewMockSocket()
	socket.SendHook = func(payload []byte) error {
		request, err := wire.DecodeRequest(payload)
		if err != nil {
			t.Errorf("failed to decode transmitted request: %v", err)
			return err
		}
		observed <- request
		return nil
	}

	requests := make(chan wire.Request, 1)
	comms, err := Launch(
		Sockets{Socket: socket, Target: MockTarget()},
		wire.DecodeResponse,
		requests,
		make(chan wire.Response, 1),
	)
	if err != nil {
		t.Fatalf("failed to launch communicator: %v", err)
	}
	defer comms.Close()

	requests <- wire.GetDevices()

	select {
	case request := <-observed:
		if request.Kind != wire.RequestGetDevices {
			t.Errorf("expected GetDevices on the wire, got kind %d", request.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for transmission")
	}
}

func TestCommunicatorDropsUndecodableDatagrams(t *testing.T) {
	socket := NewMockSocket()
	sent := 0
	socket.RecvHook = func(buf []byte) (int, net.Addr, error) {
		sent++
		switch sent {
		case 1:
			// Garbage first.
			buf[0] = 0xff
			return 1, MockTarget(), nil
		case 2:
			payload, _ := wire.Devices([]audio.Device{{Name: "a", NumChannels: 1}}).MarshalBinary()
			copy(buf, payload)
			return len(payload), MockTarget(), nil
		default:
			<-socket.Done()
			return 0, nil, net.ErrClosed
		}
	}

	responses := make(chan wire.Response, 2)
	comms, err := Launch(
		Sockets{Socket: socket, Target: MockTarget()},
		wire.DecodeResponse,
		make(chan wire.Request),
		responses,
	)
	if err != nil {
		t.Fatalf("failed to launch communicator: %v", err)
	}
	defer comms.Close()

	select {
	case response := <-responses:
		if response.Kind != wire.ResponseDevices {
			t.Errorf("expected the garbage datagram to be skipped, got kind %d", response.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for valid response")
	}

	select {
	case response := <-responses:
		t.Errorf("unexpected extra response: %+v", response)
	case <-time.After(50 * time.Millisecond):
	}
}
