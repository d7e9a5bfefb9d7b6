// ABOUTME: Test tone generator implementing the audio source surface
// ABOUTME: Generates a 440Hz sine wave for testing links without hardware
package source

import (
	"fmt"
	"math"

	"github.com/audlink/audlink/pkg/audio"
)

const (
	toneSampleRate  = 48000
	toneBlockFrames = 480 // 10ms per tick
	toneAmplitude   = 0.5 // 50% volume
)

// Tone is a synthetic audio source producing a steady sine wave. It
// exposes a single two-channel virtual device and generates one block
// of samples per ProcessEvents call.
type Tone struct {
	frequency float64
	device    audio.Device

	connection audio.DeviceConnection
	connected  bool

	frameIndex uint64
	pending    []audio.Buffer
}

// NewTone creates a tone source at the given frequency in Hz. A
// frequency of 0 defaults to 440Hz (A4).
func NewTone(frequency float64) *Tone {
	if frequency == 0 {
		frequency = 440.0
	}
	return &Tone{
		frequency: frequency,
		device:    audio.Device{Name: "tone", NumChannels: 2},
	}
}

func (s *Tone) IsAccessible() bool {
	return s.connected
}

func (s *Tone) ListDevices() []audio.Device {
	return []audio.Device{s.device}
}

// Connect starts generation on the selected channels. Reconnecting
// restarts the wave at phase zero and discards pending audio.
func (s *Tone) Connect(device audio.Device, channels audio.ChannelSelection) error {
	if device.Name != s.device.Name {
		return fmt.Errorf("unknown device %q", device.Name)
	}
	if !s.device.Supports(channels) {
		return fmt.Errorf("device %q does not support the requested channel selection", device.Name)
	}

	s.connection = audio.DeviceConnection{
		Device:     s.device,
		Channels:   channels,
		SampleRate: toneSampleRate,
	}
	s.connected = true
	s.frameIndex = 0
	s.pending = nil

	return nil
}

func (s *Tone) ConnectedDevice() (audio.DeviceConnection, bool) {
	return s.connection, s.connected
}

// ProcessEvents generates the next block of the wave. It does nothing
// while disconnected.
func (s *Tone) ProcessEvents() error {
	if !s.connected {
		return nil
	}

	channels := s.connection.Channels.Count()
	block := audio.NewBuffer(toneBlockFrames, channels)

	for i := 0; i < toneBlockFrames; i++ {
		t := float64(s.frameIndex+uint64(i)) / toneSampleRate
		sample := float32(math.Sin(2*math.Pi*s.frequency*t) * toneAmplitude)
		for c := 0; c < channels; c++ {
			block.Data[i*channels+c] = sample
		}
	}
	s.frameIndex += toneBlockFrames

	s.pending = append(s.pending, block)
	return nil
}

// RetrieveBuffer drains everything generated since the last call.
func (s *Tone) RetrieveBuffer() audio.Buffer {
	buf := audio.Concat(s.pending)
	s.pending = nil
	return buf
}
