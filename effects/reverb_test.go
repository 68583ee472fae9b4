// SPDX-License-Identifier: EPL-2.0

package effects

import (
	"testing"

	"github.com/ik5/aud3d/internal/audiotest"
	"github.com/ik5/aud3d/mixer"
)

func ambiBuffers(frames int) [][]float32 {
	out := make([][]float32, 4)
	for i := range out {
		out[i] = make([]float32, frames)
	}

	return out
}

func TestReverbImpulseResponse(t *testing.T) {
	t.Parallel()

	r := NewReverb(48000)

	const frames = 8192

	in := ambiBuffers(frames)
	copy(in[0], audiotest.Impulse(frames, 0))
	out := ambiBuffers(frames)

	r.Process(frames, in, out)

	// Nothing can arrive before the pre-delay plus the shortest comb line.
	first := r.preLen + scaleTuning(combTuning[1], 48000)
	for i := range first {
		if out[0][i] != 0 {
			t.Fatalf("frame %d nonzero before the first echo path (%d)", i, first)
		}
	}

	var tail float64
	for i := first; i < frames; i++ {
		tail += float64(out[0][i]) * float64(out[0][i])
	}
	if tail == 0 {
		t.Fatal("impulse produced no reverb tail")
	}

	for i := 1; i < 4; i++ {
		for j := range frames {
			if out[i][j] != 0 {
				t.Fatalf("directional line %d frame %d nonzero, reverb is omni", i, j)
			}
		}
	}
}

func TestReverbTailOutlastsInput(t *testing.T) {
	t.Parallel()

	r := NewReverb(48000)

	const frames = 8192

	in := ambiBuffers(frames)
	copy(in[0], audiotest.Impulse(frames, 0))
	out := ambiBuffers(frames)
	r.Process(frames, in, out)

	// A second block of pure silence still rings.
	silence := ambiBuffers(frames)
	ring := ambiBuffers(frames)
	r.Process(frames, silence, ring)

	var energy float64
	for i := range frames {
		energy += float64(ring[0][i]) * float64(ring[0][i])
	}
	if energy == 0 {
		t.Fatal("tail died within one block")
	}
}

func TestReverbProcessAccumulates(t *testing.T) {
	t.Parallel()

	r := NewReverb(48000)

	const frames = 256

	in := ambiBuffers(frames)
	out := ambiBuffers(frames)
	for i := range out[0] {
		out[0][i] = 0.5
	}

	r.Process(frames, in, out)

	for i := range out[0] {
		if out[0][i] != 0.5 {
			t.Fatalf("frame %d: silence input disturbed existing bus content: %v", i, out[0][i])
		}
	}
}

func TestReverbUpdateClamps(t *testing.T) {
	t.Parallel()

	dev, err := mixer.Open(mixer.DeviceConfig{
		SampleRate: 48000,
		Layout:     mixer.LayoutStereo,
		Sample:     mixer.SampleFloat32,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	r := NewReverb(48000)
	r.Update(dev, nil, &mixer.EffectProps{
		Decay:   5,
		GainHF:  0.25,
		Delay:   10,
		Density: 0.5,
	})

	for i := range r.combs {
		if r.combs[i].decay > 0.999 {
			t.Errorf("comb %d decay %v above stability bound", i, r.combs[i].decay)
		}
		if r.combs[i].damp != 0.75 {
			t.Errorf("comb %d damp = %v, want 0.75", i, r.combs[i].damp)
		}
	}
	if r.preLen != r.maxPreLen-1 {
		t.Errorf("preLen = %d, want capped at %d", r.preLen, r.maxPreLen-1)
	}
	if r.gain != 0.5 {
		t.Errorf("gain = %v, want 0.5", r.gain)
	}
}

func TestScaleTuning(t *testing.T) {
	t.Parallel()

	if got := scaleTuning(1687, 44100); got != 1687 {
		t.Errorf("reference rate changed tuning: %d", got)
	}
	if got := scaleTuning(1687, 88200); got != 3374 {
		t.Errorf("double rate: got %d, want 3374", got)
	}
	if got := scaleTuning(1, 8000); got != 1 {
		t.Errorf("tiny tuning: got %d, want at least 1", got)
	}
}

func BenchmarkReverbProcess(b *testing.B) {
	r := NewReverb(48000)

	const frames = 1024

	in := ambiBuffers(frames)
	copy(in[0], audiotest.Sine(48000, 440, frames))
	out := ambiBuffers(frames)

	b.ReportAllocs()

	for b.Loop() {
		r.Process(frames, in, out)
	}
}
