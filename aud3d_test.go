// SPDX-License-Identifier: EPL-2.0

package aud3d_test

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/ik5/aud3d"
	"github.com/ik5/aud3d/audio"
	"github.com/ik5/aud3d/formats/wav"
	"github.com/ik5/aud3d/internal/audiotest"
	"github.com/ik5/aud3d/mixer"
)

// genDecoder adapts an audiotest generator into the decoder interface so
// registry tests do not depend on a specific codec.
type genDecoder struct {
	src *audiotest.GenSource
}

func (d genDecoder) Decode(io.Reader) (audio.Source, error) {
	d.src.Rewind()

	return d.src, nil
}

func encodeWav16(t *testing.T, samples []int16, sampleRate int) []byte {
	t.Helper()

	var buf bytes.Buffer
	if err := wav.WriteWAV16(&buf, sampleRate, samples); err != nil {
		t.Fatalf("WriteWAV16: %v", err)
	}

	return buf.Bytes()
}

func TestDefaultRegistryFormats(t *testing.T) {
	t.Parallel()

	reg := aud3d.DefaultRegistry()

	for _, format := range []string{"wav", "aif", "aiff", "mp3", "ogg"} {
		if _, ok := reg.Get(format); !ok {
			t.Errorf("format %q not registered", format)
		}
	}
	if _, ok := reg.Get("flac"); ok {
		t.Error("unexpected flac decoder")
	}

	if got := len(reg.Formats()); got != 5 {
		t.Errorf("got %d formats, want 5", got)
	}
}

func TestLoadBufferWav(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 1000)
	for i := range samples {
		samples[i] = int16(i - 500)
	}
	data := encodeWav16(t, samples, 44100)

	buf, err := aud3d.LoadBuffer(aud3d.DefaultRegistry(), "wav", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("LoadBuffer: %v", err)
	}

	if buf.Channels() != 1 {
		t.Errorf("got %d channels, want 1", buf.Channels())
	}
	if buf.SampleRate() != 44100 {
		t.Errorf("got rate %d, want 44100", buf.SampleRate())
	}
	if buf.Frames() != len(samples) {
		t.Fatalf("got %d frames, want %d", buf.Frames(), len(samples))
	}

	got := buf.Samples(0)
	for i, s := range samples {
		want := float32(s) / 32768
		if got[i] != want {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestLoadBufferUnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := aud3d.LoadBuffer(aud3d.DefaultRegistry(), "xm", strings.NewReader("data"))
	if !errors.Is(err, aud3d.ErrUnknownFormat) {
		t.Fatalf("got %v, want ErrUnknownFormat", err)
	}
}

func TestLoadBufferDecodeFailure(t *testing.T) {
	t.Parallel()

	_, err := aud3d.LoadBuffer(aud3d.DefaultRegistry(), "wav", strings.NewReader("not a riff file"))
	if !errors.Is(err, wav.ErrNotWavFile) {
		t.Fatalf("got %v, want ErrNotWavFile", err)
	}
}

func TestLoadMonoBufferDownmixes(t *testing.T) {
	t.Parallel()

	// Left at 0.8, right at 0.2: the mono average is 0.5.
	src := audiotest.NewGenSource(48000, 2, 300, func(_, channel int) float32 {
		if channel == 0 {
			return 0.8
		}

		return 0.2
	})

	reg := audio.NewRegistry()
	reg.Register("gen", genDecoder{src: src})

	buf, err := aud3d.LoadMonoBuffer(reg, "gen", strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadMonoBuffer: %v", err)
	}

	if buf.Channels() != 1 {
		t.Fatalf("got %d channels, want 1", buf.Channels())
	}
	if buf.Frames() != 300 {
		t.Fatalf("got %d frames, want 300", buf.Frames())
	}
	for i, v := range buf.Samples(0) {
		if v < 0.499 || v > 0.501 {
			t.Fatalf("frame %d = %v, want 0.5", i, v)
		}
	}
}

func TestRenderAllocatesExactly(t *testing.T) {
	t.Parallel()

	dev, err := mixer.Open(mixer.DeviceConfig{
		SampleRate: 48000,
		Layout:     mixer.LayoutStereo,
		Sample:     mixer.SampleInt16,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	out, err := aud3d.Render(dev, 512)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(out) != 512*dev.FrameBytes() {
		t.Fatalf("got %d bytes, want %d", len(out), 512*dev.FrameBytes())
	}
	// No sources: the render is silence.
	for i, b := range out {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestRenderRejectsNegativeFrames(t *testing.T) {
	t.Parallel()

	dev, err := mixer.Open(mixer.DeviceConfig{
		SampleRate: 48000,
		Layout:     mixer.LayoutMono,
		Sample:     mixer.SampleFloat32,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := aud3d.Render(dev, -1); err == nil {
		t.Fatal("Render accepted a negative frame count")
	}
}

func TestResampleToMono16(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstant(24000, 2, 1200, 0.5)

	pcm, rate, err := aud3d.ResampleToMono16(src, 48000, 512)
	if err != nil {
		t.Fatalf("ResampleToMono16: %v", err)
	}

	if rate != 48000 {
		t.Fatalf("got rate %d, want 48000", rate)
	}
	// 1200 frames at 24 kHz is about 2400 at 48 kHz.
	if len(pcm) < 2300 || len(pcm) > 2500 {
		t.Fatalf("got %d samples, want about 2400", len(pcm))
	}

	want := int16(16383) // 0.5 full scale
	if !slices.Contains(pcm, want) {
		t.Fatalf("resampled output never reaches %d", want)
	}
	for i, v := range pcm {
		if v < 0 || v > want+1 {
			t.Fatalf("sample %d = %d, outside the constant's range", i, v)
		}
	}
}
