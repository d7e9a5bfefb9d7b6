// ABOUTME: WAV file recorder consumer
// ABOUTME: Appends consumed float32 frames to a 16-bit PCM file
package sink

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/audlink/audlink/pkg/audio"
)

// WAVRecorder writes consumed audio buffers to a 16-bit PCM WAV file.
// Close finalizes the file header; a recorder that is never closed
// leaves an unreadable file behind.
type WAVRecorder struct {
	file    *os.File
	encoder *wav.Encoder
}

// NewWAVRecorder creates the file and prepares an encoder for the
// given stream format.
func NewWAVRecorder(path string, sampleRate, channels int) (*WAVRecorder, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create wav file: %w", err)
	}

	return &WAVRecorder{
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, 16, channels, 1),
	}, nil
}

// ConsumeBuffer appends the buffer to the file.
func (r *WAVRecorder) ConsumeBuffer(buffer audio.Buffer) error {
	if buffer.Empty() {
		return nil
	}

	samples := make([]int, len(buffer.Data))
	for i, sample := range buffer.Data {
		scaled := float64(sample) * 32767.0
		if scaled > 32767 {
			scaled = 32767
		}
		if scaled < -32768 {
			scaled = -32768
		}
		samples[i] = int(scaled)
	}

	intBuf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: r.encoder.NumChans,
			SampleRate:  r.encoder.SampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := r.encoder.Write(intBuf); err != nil {
		return fmt.Errorf("failed to write wav frames: %w", err)
	}

	return nil
}

// Close finalizes the WAV header and closes the file.
func (r *WAVRecorder) Close() error {
	if err := r.encoder.Close(); err != nil {
		r.file.Close()
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	return r.file.Close()
}
