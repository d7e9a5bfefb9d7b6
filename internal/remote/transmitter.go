// ABOUTME: Remote audio transmitter facade driving a local source
// ABOUTME: Serves discovery and connect requests and streams packetized audio
package remote

import (
	"fmt"
	"log"
	"reflect"

	"github.com/audlink/audlink/internal/comms"
	"github.com/audlink/audlink/pkg/audio"
	"github.com/audlink/audlink/pkg/wire"
)

const audioQueueDepth = 128

// Transmitter is the counterpart to Receiver. It owns a local audio
// source, answers control requests from the remote receiver, and slices
// the source's buffers into sequenced, checksummed packets on the link.
type Transmitter struct {
	source    audio.Source
	requests  chan wire.Request
	responses chan wire.Response
	comms     *comms.Communicator

	packetIndex  uint64
	announced    audio.DeviceConnection
	hasAnnounced bool
}

// NewTransmitter launches a transmitter over the socket pair, driving
// the given local source.
func NewTransmitter(sockets comms.Sockets, source audio.Source) (*Transmitter, error) {
	t := &Transmitter{
		source:    source,
		requests:  make(chan wire.Request, requestQueueDepth),
		responses: make(chan wire.Response, audioQueueDepth),
	}

	communicator, err := comms.Launch(sockets, wire.DecodeRequest, t.responses, t.requests)
	if err != nil {
		return nil, fmt.Errorf("failed to launch link: %w", err)
	}
	t.comms = communicator

	return t, nil
}

// IsAudioConnected reports whether the local source is connected to a device.
func (t *Transmitter) IsAudioConnected() bool {
	return t.source.IsAccessible()
}

// ProcessEvents runs one transmitter tick: pump the local source,
// announce device changes, serve pending control requests, and ship any
// new audio. It never blocks.
func (t *Transmitter) ProcessEvents() error {
	if err := t.source.ProcessEvents(); err != nil {
		return fmt.Errorf("failed to pump local source: %w", err)
	}

	t.announceDeviceChanges()

	if err := t.serveRequests(); err != nil {
		return err
	}

	t.sendAudio()

	return nil
}

// announceDeviceChanges pushes a connection announcement whenever the
// local source's connected device differs from what was last announced.
func (t *Transmitter) announceDeviceChanges() {
	connection, ok := t.source.ConnectedDevice()
	if !ok {
		return
	}
	if t.hasAnnounced && reflect.DeepEqual(connection, t.announced) {
		return
	}

	t.push(wire.Connected(connection))
	t.announced = connection
	t.hasAnnounced = true
}

// serveRequests drains pending control requests from the receiver.
func (t *Transmitter) serveRequests() error {
	for {
		select {
		case request := <-t.requests:
			switch request.Kind {
			case wire.RequestGetDevices:
				t.push(wire.Devices(t.source.ListDevices()))
			case wire.RequestConnect:
				// Purge audio buffered from the old device so stale
				// samples do not splice into the new stream.
				t.source.RetrieveBuffer()

				if err := t.source.Connect(request.Device, request.Channels); err != nil {
					return fmt.Errorf("failed to connect local source: %w", err)
				}
			}
		default:
			return nil
		}
	}
}

// sendAudio pulls the newest buffer from the local source and ships it
// as sequentially indexed packets.
func (t *Transmitter) sendAudio() {
	buffer := t.source.RetrieveBuffer()
	if buffer.Empty() {
		return
	}

	for _, packet := range wire.Packetize(t.packetIndex, buffer) {
		t.push(wire.Audio(packet))
		t.packetIndex++
	}
}

func (t *Transmitter) push(response wire.Response) {
	select {
	case t.responses <- response:
	default:
		log.Printf("Failed to queue response kind %d: outbound queue full", response.Kind)
	}
}

// Close tears down the link. Unsent packets are discarded.
func (t *Transmitter) Close() {
	t.comms.Close()
}
