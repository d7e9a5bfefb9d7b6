// ABOUTME: Remote audio receiver facade over a socket link
// ABOUTME: Drop-in substitute for a local audio source backed by a transmitter
package remote

import (
	"fmt"
	"log"
	"time"

	"github.com/audlink/audlink/internal/comms"
	"github.com/audlink/audlink/pkg/audio"
	"github.com/audlink/audlink/pkg/wire"
)

const (
	requestQueueDepth  = 8
	responseQueueDepth = 16

	// deviceQueryDebounce bounds how often repeated ListDevices calls
	// re-issue a GetDevices request, so rapid polling cannot flood the
	// outbound queue.
	deviceQueryDebounce = 250 * time.Millisecond
)

// LinkState tracks the receiver's connection handshake.
type LinkState int

const (
	// Disconnected means no response has been seen on the link yet.
	Disconnected LinkState = iota
	// AwaitingConnect means a Connect request was sent and no
	// connection announcement has arrived for it yet.
	AwaitingConnect
	// Accessible means the remote transmitter is responding.
	Accessible
)

// Receiver proxies a remote audio source over a socket link. It exposes
// the same capability surface a local source does: requests are resent
// over the link and responses are parsed back into device lists and
// audio.
//
// It should be paired with a Transmitter on the remote end.
//
// All methods must be called from one goroutine; only ProcessEvents
// touches the link's inbound queue, and it never blocks.
type Receiver struct {
	requests  chan wire.Request
	responses chan wire.Response
	comms     *comms.Communicator

	state      LinkState
	devices    []audio.Device
	connection audio.DeviceConnection
	connected  bool
	packets    wire.PacketSequence
	consumer   audio.Consumer

	lastDeviceQuery time.Time
	now             func() time.Time
}

// NewReceiver launches a receiver over the socket pair.
func NewReceiver(sockets comms.Sockets) (*Receiver, error) {
	r := &Receiver{
		requests:  make(chan wire.Request, requestQueueDepth),
		responses: make(chan wire.Response, responseQueueDepth),
		now:       time.Now,
	}

	communicator, err := comms.Launch(sockets, wire.DecodeResponse, r.requests, r.responses)
	if err != nil {
		return nil, fmt.Errorf("failed to launch link: %w", err)
	}
	r.comms = communicator

	return r, nil
}

// AttachConsumer directs reconstructed audio into consumer on every
// ProcessEvents call. Without a consumer, audio accumulates until
// RetrieveBuffer is called.
func (r *Receiver) AttachConsumer(consumer audio.Consumer) {
	r.consumer = consumer
}

// IsAccessible reports whether the remote transmitter is responding.
func (r *Receiver) IsAccessible() bool {
	return r.state == Accessible
}

// ListDevices returns the most recently received device list and
// opportunistically re-issues a discovery request. It does not wait for
// a fresh answer; call ProcessEvents to pick one up.
func (r *Receiver) ListDevices() []audio.Device {
	if r.now().Sub(r.lastDeviceQuery) >= deviceQueryDebounce {
		select {
		case r.requests <- wire.GetDevices():
			r.lastDeviceQuery = r.now()
		default:
			log.Printf("Failed to queue device discovery request: outbound queue full")
		}
	}

	return r.devices
}

// Connect asks the remote transmitter to connect its local source to
// the device. The link is not accessible again until a connection
// announcement arrives; calling Connect again before that simply
// re-sends the request.
func (r *Receiver) Connect(device audio.Device, channels audio.ChannelSelection) error {
	if !device.Supports(channels) {
		return fmt.Errorf("device %q does not support the requested channel selection", device.Name)
	}

	select {
	case r.requests <- wire.Connect(device, channels):
	default:
		return fmt.Errorf("failed to queue connect request: outbound queue full")
	}

	r.state = AwaitingConnect
	r.connected = false

	return nil
}

// ConnectedDevice reports the remote transmitter's announced connection.
func (r *Receiver) ConnectedDevice() (audio.DeviceConnection, bool) {
	return r.connection, r.connected
}

// RetrieveBuffer drains the packet sequence into one contiguous buffer.
// It returns an empty buffer when nothing new has arrived, or when a
// consumer is attached and already receiving the audio.
func (r *Receiver) RetrieveBuffer() audio.Buffer {
	return audio.Concat(r.packets.Drain())
}

// ProcessEvents drains the link's inbound queue, routing device lists
// into the cache and audio packets into the resequencer, then forwards
// reconstructed audio to the attached consumer. It never blocks.
func (r *Receiver) ProcessEvents() error {
	for {
		select {
		case response := <-r.responses:
			r.handleResponse(response)
		default:
			return r.forwardAudio()
		}
	}
}

func (r *Receiver) handleResponse(response wire.Response) {
	switch response.Kind {
	case wire.ResponseDevices:
		r.devices = response.Devices
		r.markResponsive()
	case wire.ResponseAudio:
		r.packets.Push(response.Packet)
		r.markResponsive()
	case wire.ResponseConnected:
		r.connection = response.Connection
		r.connected = true
		r.state = Accessible
	}
}

// markResponsive promotes the link to Accessible on any traffic, except
// that a pending connect handshake is only resolved by a connection
// announcement.
func (r *Receiver) markResponsive() {
	if r.state != AwaitingConnect {
		r.state = Accessible
	}
}

func (r *Receiver) forwardAudio() error {
	if r.consumer == nil || r.packets.FrameCount() == 0 {
		return nil
	}

	if err := r.consumer.ConsumeBuffer(audio.Concat(r.packets.Drain())); err != nil {
		return fmt.Errorf("failed to consume received audio: %w", err)
	}

	return nil
}

// Close tears down the link. Packets still in flight are discarded.
func (r *Receiver) Close() {
	r.comms.Close()
}
