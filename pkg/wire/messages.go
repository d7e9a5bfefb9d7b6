// ABOUTME: Request and response message types for the audio link
// ABOUTME: Implements the binary marshaling contract for both directions
package wire

import (
	"fmt"

	"github.com/audlink/audlink/pkg/audio"
)

// RequestKind discriminates the request variants sent receiver-to-transmitter.
type RequestKind uint8

const (
	// RequestGetDevices asks the transmitter for its device list.
	RequestGetDevices RequestKind = iota + 1
	// RequestConnect asks the transmitter to connect its local source
	// to a device with a channel selection.
	RequestConnect
)

// Request is a control message sent by the receiver. Construct values
// with GetDevices or Connect; a Request is built once per intent and
// never mutated.
type Request struct {
	Kind RequestKind

	// Connect only
	Device   audio.Device
	Channels audio.ChannelSelection
}

// GetDevices builds a device discovery request.
func GetDevices() Request {
	return Request{Kind: RequestGetDevices}
}

// Connect builds a connection request for a device and channel selection.
func Connect(device audio.Device, channels audio.ChannelSelection) Request {
	return Request{Kind: RequestConnect, Device: device, Channels: channels}
}

// MarshalBinary encodes the request as a single datagram payload.
func (r Request) MarshalBinary() ([]byte, error) {
	b := []byte{byte(r.Kind)}
	switch r.Kind {
	case RequestGetDevices:
	case RequestConnect:
		b = appendDevice(b, r.Device)
		b = appendSelection(b, r.Channels)
	default:
		return nil, fmt.Errorf("unknown request kind: %d", r.Kind)
	}
	return b, nil
}

// UnmarshalBinary decodes a request from a datagram payload.
func (r *Request) UnmarshalBinary(data []byte) error {
	d := &decoder{buf: data}

	kind := RequestKind(d.uint8())
	switch kind {
	case RequestGetDevices:
		*r = GetDevices()
	case RequestConnect:
		dev := d.device()
		sel := d.selection()
		*r = Connect(dev, sel)
	default:
		d.failf("unknown request kind: %d", kind)
	}

	return d.finish()
}

// DecodeRequest parses a single request datagram.
func DecodeRequest(data []byte) (Request, error) {
	var r Request
	err := r.UnmarshalBinary(data)
	return r, err
}

// ResponseKind discriminates the response variants sent transmitter-to-receiver.
type ResponseKind uint8

const (
	// ResponseDevices carries the transmitter's device list.
	ResponseDevices ResponseKind = iota + 1
	// ResponseAudio carries one sequenced, checksummed audio packet.
	ResponseAudio
	// ResponseConnected announces the transmitter's currently connected
	// device. Pushed whenever the connected device changes.
	ResponseConnected
)

// Response is a message sent by the transmitter. Construct values with
// Devices, Audio, or Connected.
type Response struct {
	Kind ResponseKind

	// Devices only
	Devices []audio.Device

	// Audio only
	Packet Packet

	// Connected only
	Connection audio.DeviceConnection
}

// Devices builds a device list response.
func Devices(devices []audio.Device) Response {
	return Response{Kind: ResponseDevices, Devices: devices}
}

// Audio builds an audio packet response.
func Audio(packet Packet) Response {
	return Response{Kind: ResponseAudio, Packet: packet}
}

// Connected builds a connection announcement response.
func Connected(conn audio.DeviceConnection) Response {
	return Response{Kind: ResponseConnected, Connection: conn}
}

// MarshalBinary encodes the response as a single datagram payload.
func (r Response) MarshalBinary() ([]byte, error) {
	b := []byte{byte(r.Kind)}
	switch r.Kind {
	case ResponseDevices:
		b = appendUint16Count(b, len(r.Devices))
		for _, dev := range r.Devices {
			b = appendDevice(b, dev)
		}
	case ResponseAudio:
		b = appendPacket(b, r.Packet)
	case ResponseConnected:
		b = appendConnection(b, r.Connection)
	default:
		return nil, fmt.Errorf("unknown response kind: %d", r.Kind)
	}
	return b, nil
}

// UnmarshalBinary decodes a response from a datagram payload.
func (r *Response) UnmarshalBinary(data []byte) error {
	d := &decoder{buf: data}

	kind := ResponseKind(d.uint8())
	switch kind {
	case ResponseDevices:
		count := int(d.uint16())
		devices := make([]audio.Device, 0, count)
		for i := 0; i < count; i++ {
			devices = append(devices, d.device())
		}
		*r = Devices(devices)
	case ResponseAudio:
		*r = Audio(d.packet())
	case ResponseConnected:
		*r = Connected(d.connection())
	default:
		d.failf("unknown response kind: %d", kind)
	}

	return d.finish()
}

// DecodeResponse parses a single response datagram.
func DecodeResponse(data []byte) (Response, error) {
	var r Response
	err := r.UnmarshalBinary(data)
	return r, err
}
