// ABOUTME: Capability interfaces for audio sources and sinks
// ABOUTME: Local devices and remote facades expose the same surface
package audio

// Interface is the control surface every audio endpoint exposes,
// local hardware and remote proxies alike.
type Interface interface {
	// IsAccessible determines if the endpoint is currently reachable
	// or connected.
	IsAccessible() bool

	// ListDevices lists the devices this endpoint can connect to.
	ListDevices() []Device

	// Connect attempts to establish a connection to a device with the
	// given channel selection.
	Connect(device Device, channels ChannelSelection) error

	// ConnectedDevice reports the currently connected device, if any.
	ConnectedDevice() (DeviceConnection, bool)

	// ProcessEvents pumps internal messages. This may include fetching
	// or pushing audio to the underlying device. It never blocks.
	ProcessEvents() error
}

// Provider produces audio buffers.
type Provider interface {
	// RetrieveBuffer returns the latest available audio, or an empty
	// buffer if nothing new arrived. It must not block.
	RetrieveBuffer() Buffer
}

// Consumer accepts audio buffers.
type Consumer interface {
	// ConsumeBuffer pushes a buffer into the endpoint.
	ConsumeBuffer(buffer Buffer) error
}

// Source is a full audio producer: controllable and buffer-providing.
type Source interface {
	Interface
	Provider
}
