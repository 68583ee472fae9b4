// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides signal generators shared by the package
// tests: deterministic sources that implement the audio.Source
// contract without touching files or codecs.
package audiotest

import (
	"io"
	"math"
)

// GenSource produces samples from a waveform function. It implements
// audio.Source (without importing it, to stay usable from the audio
// package's own tests).
type GenSource struct {
	rate     int
	channels int
	frames   int
	done     int
	waveform func(frame, channel int) float32
}

// NewGenSource generates frames frames of audio, one waveform call per
// channel per frame.
func NewGenSource(rate, channels, frames int, waveform func(frame, channel int) float32) *GenSource {
	return &GenSource{
		rate:     rate,
		channels: channels,
		frames:   frames,
		waveform: waveform,
	}
}

// NewSilence generates all-zero audio.
func NewSilence(rate, channels, frames int) *GenSource {
	return NewGenSource(rate, channels, frames, func(int, int) float32 { return 0 })
}

// NewConstant generates the same value on every channel.
func NewConstant(rate, channels, frames int, value float32) *GenSource {
	return NewGenSource(rate, channels, frames, func(int, int) float32 { return value })
}

// NewSine generates a sine at freq Hz, identical on all channels.
func NewSine(rate, channels, frames int, freq float64) *GenSource {
	return NewGenSource(rate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * freq * float64(frame) / float64(rate)))
	})
}

func (g *GenSource) SampleRate() int { return g.rate }
func (g *GenSource) Channels() int   { return g.channels }
func (g *GenSource) BufSize() int    { return 4096 }
func (g *GenSource) Close() error    { return nil }

// Rewind makes the source readable again from the start.
func (g *GenSource) Rewind() { g.done = 0 }

func (g *GenSource) ReadSamples(dst []float32) (int, error) {
	if g.done >= g.frames {
		return 0, io.EOF
	}

	frames := min(len(dst)/g.channels, g.frames-g.done)
	for f := range frames {
		for c := range g.channels {
			dst[f*g.channels+c] = g.waveform(g.done+f, c)
		}
	}
	g.done += frames

	return frames * g.channels, nil
}

// Sine fills a mono sample slice with a sine at freq Hz, for tests
// that want raw data rather than a streaming source.
func Sine(rate int, freq float64, frames int) []float32 {
	out := make([]float32, frames)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(rate)))
	}
	return out
}

// Impulse returns frames samples, all zero except a single 1.0 at
// offset. Handy for probing filter responses and delays.
func Impulse(frames, offset int) []float32 {
	out := make([]float32, frames)
	if offset >= 0 && offset < frames {
		out[offset] = 1
	}
	return out
}
