// ABOUTME: Speaker playback consumer using the oto library
// ABOUTME: Converts float32 frames to PCM with software volume control
package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"

	"github.com/ebitengine/oto/v3"

	"github.com/audlink/audlink/pkg/audio"
)

// Playback plays consumed audio buffers on the default output device.
// Initialize must be called with the link's negotiated format before
// the first buffer arrives.
type Playback struct {
	otoCtx   *oto.Context
	channels int
	volume   int
	muted    bool
	ready    bool
}

// NewPlayback creates a playback sink at full volume.
func NewPlayback() *Playback {
	return &Playback{volume: 100}
}

// Initialize sets up the audio backend for the given stream format.
func (p *Playback) Initialize(sampleRate, channels int) error {
	if p.otoCtx != nil {
		p.Close()
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	p.otoCtx = ctx
	p.channels = channels
	p.ready = true

	log.Printf("Audio playback initialized: %dHz, %d channels", sampleRate, channels)

	return nil
}

// ConsumeBuffer queues the buffer for playback.
func (p *Playback) ConsumeBuffer(buffer audio.Buffer) error {
	if !p.ready {
		return fmt.Errorf("playback not initialized")
	}
	if buffer.Empty() {
		return nil
	}

	multiplier := p.volumeMultiplier()

	pcm := make([]byte, len(buffer.Data)*2)
	for i, sample := range buffer.Data {
		scaled := float64(sample) * multiplier * 32767.0
		if scaled > 32767 {
			scaled = 32767
		}
		if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(scaled)))
	}

	player := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	player.Play()

	return nil
}

// SetVolume sets the playback volume (0-100).
func (p *Playback) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}
	p.volume = volume
}

// SetMuted sets the mute state.
func (p *Playback) SetMuted(muted bool) {
	p.muted = muted
}

func (p *Playback) volumeMultiplier() float64 {
	if p.muted {
		return 0.0
	}
	return float64(p.volume) / 100.0
}

// Close suspends the audio backend.
func (p *Playback) Close() {
	if p.otoCtx != nil {
		p.otoCtx.Suspend()
		p.ready = false
	}
}
