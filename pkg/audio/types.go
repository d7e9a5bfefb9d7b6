// ABOUTME: Core audio data types shared across the module
// ABOUTME: Defines interleaved sample buffers, devices, and device connections
package audio

// Buffer is an interleaved audio buffer.
//
// Interleaved audio data means the samples for each channel alternate.
// For stereo audio (2 channels) the data is arranged as
// [left0, right0, left1, right1, left2, right2, ...]. The slice
// [left0, right0] is called a frame.
//
// The module favors interleaved data since it is what lower-level APIs
// use and it is more compact for transferring audio.
type Buffer struct {
	Data        []float32
	NumChannels int
}

// NewBuffer creates a zeroed interleaved buffer holding frames*channels samples.
func NewBuffer(frames, channels int) Buffer {
	return Buffer{
		Data:        make([]float32, frames*channels),
		NumChannels: channels,
	}
}

// FrameCount reports the number of frames in the buffer. This is the
// number of samples per channel for interleaved data.
func (b Buffer) FrameCount() int {
	if b.NumChannels == 0 {
		return 0
	}
	return len(b.Data) / b.NumChannels
}

// Empty reports whether the buffer holds no samples.
func (b Buffer) Empty() bool {
	return len(b.Data) == 0
}

// Concat accumulates multiple buffers into a single larger buffer.
//
// All buffers are assumed to share a channel count; it is up to the
// caller to guarantee this and pad if necessary.
func Concat(buffers []Buffer) Buffer {
	if len(buffers) == 0 {
		return Buffer{}
	}

	total := 0
	for _, buf := range buffers {
		total += len(buf.Data)
	}

	out := Buffer{
		Data:        make([]float32, 0, total),
		NumChannels: buffers[0].NumChannels,
	}
	for _, buf := range buffers {
		out.Data = append(out.Data, buf.Data...)
	}

	return out
}

// Deinterleave expands the buffer into one sample slice per channel.
func (b Buffer) Deinterleave() [][]float32 {
	if b.NumChannels == 0 {
		return nil
	}

	frames := b.FrameCount()
	chans := make([][]float32, b.NumChannels)
	for c := range chans {
		chans[c] = make([]float32, frames)
	}

	for i := 0; i < frames; i++ {
		for c := 0; c < b.NumChannels; c++ {
			chans[c][i] = b.Data[i*b.NumChannels+c]
		}
	}

	return chans
}

// FromDeinterleaved builds an interleaved Buffer from a per-channel 2-D buffer.
//
// All channels are assumed to be the same length.
func FromDeinterleaved(chans [][]float32) Buffer {
	if len(chans) == 0 {
		return Buffer{}
	}

	frames := len(chans[0])
	buf := NewBuffer(frames, len(chans))
	for c, data := range chans {
		for i, sample := range data {
			buf.Data[i*len(chans)+c] = sample
		}
	}

	return buf
}

// Device identifies an audio endpoint. Devices are compared by value;
// the name is the equality key.
type Device struct {
	Name        string
	NumChannels int
}

// Supports checks whether the requested channel selection is viable for
// this device: every selected index must exist and the selection may not
// claim more channels than the device has.
func (d Device) Supports(sel ChannelSelection) bool {
	if sel.Count() > d.NumChannels {
		return false
	}

	for _, ch := range sel.Channels() {
		if ch < 0 || ch >= d.NumChannels {
			return false
		}
	}

	return true
}

// DeviceConnection describes an established connection to a device.
type DeviceConnection struct {
	Device     Device
	Channels   ChannelSelection
	SampleRate int
}
