// SPDX-License-Identifier: EPL-2.0

package effects

import "github.com/ik5/aud3d/mixer"

// Comb and allpass tunings, in samples at the reference rate. The comb
// lengths are mutually prime so their echoes do not reinforce.
var (
	combTuning    = [4]int{1687, 1601, 2053, 2251}
	combDecays    = [4]float32{0.97, 0.95, 0.93, 0.91}
	allpassTuning = [2]int{389, 307}
)

const (
	reverbRefRate      = 44100
	allpassCoeff       = 0.5
	preDelaySeconds    = 0.008
	maxPreDelaySeconds = 0.1
)

type comb struct {
	buf    []float32
	pos    int
	length int
	decay  float32

	// One-pole damping inside the feedback path.
	damp  float32
	store float32
}

func (c *comb) process(in float32) float32 {
	out := c.buf[c.pos]
	c.store = out*(1-c.damp) + c.store*c.damp
	c.buf[c.pos] = in + c.store*c.decay

	c.pos++
	if c.pos >= c.length {
		c.pos = 0
	}

	return out
}

type allpass struct {
	buf    []float32
	pos    int
	length int
}

func (a *allpass) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := bufOut - in
	a.buf[a.pos] = in + bufOut*allpassCoeff

	a.pos++
	if a.pos >= a.length {
		a.pos = 0
	}

	return out
}

// Reverb is a parallel-comb, series-allpass reverberator with a short
// pre-delay. The wet output is omnidirectional: it feeds the ambisonic W
// line only.
type Reverb struct {
	combs     [4]comb
	allpasses [2]allpass

	preDelay    []float32
	prePos      int
	preLen      int
	maxPreLen   int
	sampleRate  int

	gain float32
}

// NewReverb sizes the delay lines for the device rate.
func NewReverb(sampleRate int) *Reverb {
	r := &Reverb{
		sampleRate: sampleRate,
		gain:       1,
	}

	for i := range r.combs {
		length := scaleTuning(combTuning[i], sampleRate)
		r.combs[i] = comb{
			buf:    make([]float32, length),
			length: length,
			decay:  combDecays[i],
		}
	}
	for i := range r.allpasses {
		length := scaleTuning(allpassTuning[i], sampleRate)
		r.allpasses[i] = allpass{
			buf:    make([]float32, length),
			length: length,
		}
	}

	r.maxPreLen = int(maxPreDelaySeconds * float32(sampleRate))
	r.preDelay = make([]float32, r.maxPreLen)
	r.preLen = int(preDelaySeconds * float32(sampleRate))

	return r
}

func scaleTuning(samples, sampleRate int) int {
	n := samples * sampleRate / reverbRefRate
	if n < 1 {
		n = 1
	}

	return n
}

// Update implements mixer.EffectState. Decay scales the comb feedback,
// GainHF sets the in-loop damping and Delay (seconds, capped) the
// pre-delay.
func (r *Reverb) Update(dev *mixer.Device, slot *mixer.EffectSlot, props *mixer.EffectProps) {
	decayScale := float32(1)
	if props.Decay > 0 {
		decayScale = props.Decay
	}
	damp := float32(0)
	if props.GainHF > 0 && props.GainHF < 1 {
		damp = 1 - props.GainHF
	}

	for i := range r.combs {
		d := combDecays[i] * decayScale
		if d > 0.999 {
			d = 0.999
		}
		r.combs[i].decay = d
		r.combs[i].damp = damp
	}

	if props.Delay > 0 {
		n := int(props.Delay * float32(r.sampleRate))
		if n > r.maxPreLen-1 {
			n = r.maxPreLen - 1
		}
		r.preLen = n
	}

	r.gain = 1
	if props.Density > 0 {
		r.gain = props.Density
	}
}

// Process implements mixer.EffectState.
func (r *Reverb) Process(frames int, in, out [][]float32) {
	src := in[0]
	dst := out[0]

	for i := range frames {
		s := src[i]

		// Pre-delay.
		if r.preLen > 0 {
			idx := r.prePos - r.preLen
			if idx < 0 {
				idx += r.maxPreLen
			}
			delayed := r.preDelay[idx]
			r.preDelay[r.prePos] = s
			r.prePos++
			if r.prePos >= r.maxPreLen {
				r.prePos = 0
			}
			s = delayed
		}

		var acc float32
		for c := range r.combs {
			acc += r.combs[c].process(s)
		}
		for a := range r.allpasses {
			acc = r.allpasses[a].process(acc)
		}

		dst[i] += acc * r.gain * 0.25
	}
}
