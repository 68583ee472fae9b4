// SPDX-License-Identifier: EPL-2.0

package effects

import "github.com/ik5/aud3d/mixer"

const maxEchoSeconds = 0.5

// Echo is a two-tap delay: the taps alternate left and right of center and
// feed back through a damping low-pass.
type Echo struct {
	buf []float32
	pos int

	tap1     int
	tap2     int
	feedback float32
	damp     float32
	spread   float32

	lowpass float32
}

// NewEcho sizes the delay line for the device rate.
func NewEcho(sampleRate int) *Echo {
	e := &Echo{
		buf:      make([]float32, int(maxEchoSeconds*2*float32(sampleRate))),
		feedback: 0.5,
	}
	e.tap1 = sampleRate / 10
	e.tap2 = e.tap1 * 2

	return e
}

// Update implements mixer.EffectState. Delay and LRDelay are in seconds,
// Damping sets the feedback low-pass, Spread the stereo width of the taps.
func (e *Echo) Update(dev *mixer.Device, slot *mixer.EffectSlot, props *mixer.EffectProps) {
	rate := float32(dev.SampleRate())

	delay := props.Delay
	if delay <= 0 || delay > maxEchoSeconds {
		delay = 0.1
	}
	lr := props.LRDelay
	if lr < 0 || lr > maxEchoSeconds {
		lr = delay
	}

	e.tap1 = clampTap(int(delay*rate), len(e.buf))
	e.tap2 = clampTap(e.tap1+int(lr*rate), len(e.buf))

	e.feedback = props.Feedback
	if e.feedback < 0 || e.feedback >= 1 {
		e.feedback = 0.5
	}
	e.damp = props.Damping
	if e.damp < 0 || e.damp >= 1 {
		e.damp = 0
	}
	e.spread = props.Spread
	if e.spread < -1 || e.spread > 1 {
		e.spread = 0
	}
}

func clampTap(tap, size int) int {
	if tap < 1 {
		return 1
	}
	if tap >= size {
		return size - 1
	}

	return tap
}

// Process implements mixer.EffectState. Tap outputs go to the W line; the
// spread pans them into opposite sides of the Y (left/right) line.
func (e *Echo) Process(frames int, in, out [][]float32) {
	src := in[0]
	w := out[0]
	y := out[1]

	size := len(e.buf)
	for i := range frames {
		i1 := e.pos - e.tap1
		if i1 < 0 {
			i1 += size
		}
		i2 := e.pos - e.tap2
		if i2 < 0 {
			i2 += size
		}

		t1 := e.buf[i1]
		t2 := e.buf[i2]

		e.lowpass = t2*(1-e.damp) + e.lowpass*e.damp
		e.buf[e.pos] = src[i] + e.lowpass*e.feedback
		e.pos++
		if e.pos >= size {
			e.pos = 0
		}

		w[i] += (t1 + t2) * 0.5
		y[i] += (t1 - t2) * 0.5 * e.spread
	}
}
