// ABOUTME: MP3 file playback implementing the audio source surface
// ABOUTME: Decodes a file to float32 frames and loops at end of stream
package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/audlink/audlink/pkg/audio"
)

const mp3BlockFrames = 1152 // one MPEG frame

// MP3File streams a local MP3 file as an audio source. The decoder
// always produces stereo 16-bit PCM, so the source exposes a single
// two-channel device named after the file; the channel selection picks
// which of the two decoded channels reach the link. Playback loops
// when the file ends.
type MP3File struct {
	file    *os.File
	decoder *mp3.Decoder
	device  audio.Device

	connection audio.DeviceConnection
	connected  bool

	pending []audio.Buffer
}

// NewMP3File opens the file and prepares a decoder for it.
func NewMP3File(path string) (*MP3File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mp3 file: %w", err)
	}

	decoder, err := mp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	return &MP3File{
		file:    file,
		decoder: decoder,
		device:  audio.Device{Name: filepath.Base(path), NumChannels: 2},
	}, nil
}

func (s *MP3File) IsAccessible() bool {
	return s.connected
}

func (s *MP3File) ListDevices() []audio.Device {
	return []audio.Device{s.device}
}

// Connect starts playback on the selected channels from the top of the file.
func (s *MP3File) Connect(device audio.Device, channels audio.ChannelSelection) error {
	if device.Name != s.device.Name {
		return fmt.Errorf("unknown device %q", device.Name)
	}
	if !s.device.Supports(channels) {
		return fmt.Errorf("device %q does not support the requested channel selection", device.Name)
	}

	if _, err := s.decoder.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind mp3 stream: %w", err)
	}

	s.connection = audio.DeviceConnection{
		Device:     s.device,
		Channels:   channels,
		SampleRate: s.decoder.SampleRate(),
	}
	s.connected = true
	s.pending = nil

	return nil
}

func (s *MP3File) ConnectedDevice() (audio.DeviceConnection, bool) {
	return s.connection, s.connected
}

// ProcessEvents decodes the next block of the file. It does nothing
// while disconnected.
func (s *MP3File) ProcessEvents() error {
	if !s.connected {
		return nil
	}

	// 2 channels, 2 bytes per sample.
	raw := make([]byte, mp3BlockFrames*4)
	n, err := io.ReadFull(s.decoder, raw)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to decode mp3 stream: %w", err)
	}

	if block := s.selectChannels(raw[:n-n%4]); !block.Empty() {
		s.pending = append(s.pending, block)
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		if _, err := s.decoder.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("failed to loop mp3 stream: %w", err)
		}
	}

	return nil
}

// selectChannels converts decoded stereo PCM into a float32 buffer
// holding only the connection's selected channels.
func (s *MP3File) selectChannels(raw []byte) audio.Buffer {
	selected := s.connection.Channels.Channels()
	frames := len(raw) / 4

	buf := audio.NewBuffer(frames, len(selected))
	for i := 0; i < frames; i++ {
		for c, ch := range selected {
			sample := int16(binary.LittleEndian.Uint16(raw[(i*2+ch)*2:]))
			buf.Data[i*len(selected)+c] = float32(sample) / 32768.0
		}
	}

	return buf
}

// RetrieveBuffer drains everything decoded since the last call.
func (s *MP3File) RetrieveBuffer() audio.Buffer {
	buf := audio.Concat(s.pending)
	s.pending = nil
	return buf
}

// Close releases the underlying file.
func (s *MP3File) Close() error {
	return s.file.Close()
}
