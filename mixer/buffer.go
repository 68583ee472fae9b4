// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"

	"github.com/go-audio/audio"
)

// Buffer holds immutable source material as non-interleaved float32 samples
// in [-1, 1]. Buffers may be queued on any number of sources concurrently;
// the mixer only reads them.
type Buffer struct {
	data       [][]float32
	sampleRate int
}

// NewBuffer wraps per-channel sample data. All channels must share a length
// and the channel count must be mono or stereo.
func NewBuffer(data [][]float32, sampleRate int) (*Buffer, error) {
	if len(data) == 0 || len(data) > MaxSourceChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrFormatMismatch, len(data))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidValue, sampleRate)
	}
	for c := 1; c < len(data); c++ {
		if len(data[c]) != len(data[0]) {
			return nil, fmt.Errorf("%w: ragged channel lengths", ErrFormatMismatch)
		}
	}

	return &Buffer{data: data, sampleRate: sampleRate}, nil
}

// NewMonoBuffer wraps a single channel of samples.
func NewMonoBuffer(samples []float32, sampleRate int) (*Buffer, error) {
	return NewBuffer([][]float32{samples}, sampleRate)
}

// BufferFromPCM converts a decoded PCM buffer into a mixer Buffer,
// de-interleaving and normalizing integer samples by the source bit depth.
func BufferFromPCM(pcm *audio.IntBuffer) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("%w: nil PCM buffer", ErrInvalidValue)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 || channels > MaxSourceChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrFormatMismatch, channels)
	}

	scale := float32(1.0)
	if pcm.SourceBitDepth > 0 {
		scale = 1.0 / float32(int64(1)<<(pcm.SourceBitDepth-1))
	}

	frames := len(pcm.Data) / channels
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for i := range frames {
			data[c][i] = float32(pcm.Data[i*channels+c]) * scale
		}
	}

	return &Buffer{data: data, sampleRate: pcm.Format.SampleRate}, nil
}

// BufferFromFloat converts a decoded float PCM buffer.
func BufferFromFloat(pcm *audio.FloatBuffer) (*Buffer, error) {
	if pcm == nil || pcm.Format == nil {
		return nil, fmt.Errorf("%w: nil PCM buffer", ErrInvalidValue)
	}

	channels := pcm.Format.NumChannels
	if channels < 1 || channels > MaxSourceChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrFormatMismatch, channels)
	}

	frames := len(pcm.Data) / channels
	data := make([][]float32, channels)
	for c := range data {
		data[c] = make([]float32, frames)
		for i := range frames {
			data[c][i] = float32(pcm.Data[i*channels+c])
		}
	}

	return &Buffer{data: data, sampleRate: pcm.Format.SampleRate}, nil
}

// Channels reports the channel count.
func (b *Buffer) Channels() int { return len(b.data) }

// SampleRate reports the sample rate in Hz.
func (b *Buffer) SampleRate() int { return b.sampleRate }

// Frames reports the length in frames.
func (b *Buffer) Frames() int {
	if len(b.data) == 0 {
		return 0
	}

	return len(b.data[0])
}

// Samples returns the samples of one channel. The slice must not be
// modified while the buffer is queued on a source.
func (b *Buffer) Samples(channel int) []float32 { return b.data[channel] }
