// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"testing"

	"github.com/ik5/aud3d/audio"
	"github.com/ik5/aud3d/internal/audiotest"
)

func TestMonoMixerAverages(t *testing.T) {
	t.Parallel()

	src := audiotest.NewGenSource(8000, 2, 50, func(_, channel int) float32 {
		if channel == 0 {
			return 0.8
		}
		return 0.2
	})
	m := audio.NewMonoMixer(src)

	if got := m.Channels(); got != 1 {
		t.Fatalf("Channels() = %d, want 1", got)
	}
	if got := m.SampleRate(); got != 8000 {
		t.Fatalf("SampleRate() = %d, want 8000", got)
	}

	out := drain(t, m, 16)
	if len(out) != 50 {
		t.Fatalf("downmix produced %d frames, want 50", len(out))
	}
	for i, v := range out {
		if v != 0.5 {
			t.Fatalf("frame %d = %v, want 0.5 (average of 0.8 and 0.2)", i, v)
		}
	}
}

func TestMonoMixerPassthrough(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstant(8000, 1, 30, 0.7)
	out := drain(t, audio.NewMonoMixer(src), 8)

	if len(out) != 30 {
		t.Fatalf("passthrough produced %d frames, want 30", len(out))
	}
	for i, v := range out {
		if v != 0.7 {
			t.Fatalf("frame %d = %v, want 0.7", i, v)
		}
	}
}

func TestMonoMixerQuad(t *testing.T) {
	t.Parallel()

	src := audiotest.NewGenSource(8000, 4, 10, func(_, channel int) float32 {
		return float32(channel)
	})
	out := drain(t, audio.NewMonoMixer(src), 16)

	// (0+1+2+3)/4
	for i, v := range out {
		if v != 1.5 {
			t.Fatalf("frame %d = %v, want 1.5", i, v)
		}
	}
}

func TestMonoMixerEmptyDst(t *testing.T) {
	t.Parallel()

	m := audio.NewMonoMixer(audiotest.NewSilence(8000, 2, 10))
	if n, err := m.ReadSamples(nil); n != 0 || err != nil {
		t.Fatalf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}
