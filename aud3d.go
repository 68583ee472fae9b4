// SPDX-License-Identifier: EPL-2.0

package aud3d

import (
	"fmt"
	"io"

	"github.com/ik5/aud3d/audio"
	"github.com/ik5/aud3d/formats/aiff"
	"github.com/ik5/aud3d/formats/mp3"
	"github.com/ik5/aud3d/formats/vorbis"
	"github.com/ik5/aud3d/formats/wav"
	"github.com/ik5/aud3d/mixer"
	"github.com/ik5/aud3d/utils"
)

// DefaultRegistry returns a registry with every built-in decoder
// installed, keyed by the usual file extensions.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})

	return reg
}

// LoadBuffer decodes an entire stream into a mixer buffer. format is a
// registry key, usually the file extension without the dot.
func LoadBuffer(reg *audio.Registry, format string, r io.Reader) (*mixer.Buffer, error) {
	dec, ok := reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", format, err)
	}
	defer src.Close()

	data, err := audio.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", format, err)
	}

	buf, err := mixer.NewBuffer(data, src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return buf, nil
}

// LoadMonoBuffer decodes a stream like LoadBuffer, but downmixes
// multichannel input to mono first. Spatialized sources want mono
// input, so this is the loader most game code reaches for.
func LoadMonoBuffer(reg *audio.Registry, format string, r io.Reader) (*mixer.Buffer, error) {
	dec, ok := reg.Get(format)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	src, err := dec.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding %q: %w", format, err)
	}
	defer src.Close()

	data, err := audio.ReadAll(audio.NewMonoMixer(src))
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", format, err)
	}

	buf, err := mixer.NewBuffer(data, src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return buf, nil
}

// Render pulls frames from dev into a freshly allocated byte slice in
// the device's configured output format. Useful for offline rendering
// and golden-file tests; real-time playback should reuse its buffer
// and call dev.Mix directly.
func Render(dev *mixer.Device, frames int) ([]byte, error) {
	if frames < 0 {
		return nil, fmt.Errorf("%w: %d frames", mixer.ErrInvalidValue, frames)
	}

	out := make([]byte, frames*dev.FrameBytes())
	if err := dev.Mix(out, frames); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return out, nil
}

// ResampleToMono16 runs src through a cubic resampler and a mono
// downmix and collects the whole stream as 16-bit PCM. bufferSize is
// the read chunk in samples.
func ResampleToMono16(src audio.Source, targetRate, bufferSize int) ([]int16, int, error) {
	mono := audio.NewMonoMixer(audio.NewResampler(src, targetRate))

	pcm16 := make([]int16, 0, targetRate*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := mono.ReadSamples(buf)
		for _, x := range buf[:n] {
			pcm16 = append(pcm16, utils.Float32ToInt16(x))
		}

		if err == io.EOF {
			return pcm16, targetRate, nil
		}
		if err != nil {
			return pcm16, targetRate, fmt.Errorf("%w", err)
		}
	}
}
