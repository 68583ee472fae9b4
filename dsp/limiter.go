// SPDX-License-Identifier: EPL-2.0

package dsp

import "github.com/rkusa/gm/math32"

// Limiter is a look-ahead peak limiter. It delays the signal, tracks the
// peak amplitude across all channels over the look-ahead window, and applies
// a smoothed gain reduction so no output sample exceeds the ceiling.
type Limiter struct {
	ceiling   float32
	lookAhead int
	release   float32

	delay [][]float32
	peaks []float32
	pos   int

	gain float32
}

// NewLimiter creates a limiter for the given channel count. lookAhead is in
// samples; releasePerSample is the per-sample recovery factor toward unity
// gain (0 < releasePerSample < 1, closer to 1 releases slower).
func NewLimiter(numChannels, lookAhead int, ceiling, releasePerSample float32) *Limiter {
	if lookAhead < 1 {
		lookAhead = 1
	}

	delay := make([][]float32, numChannels)
	for i := range delay {
		delay[i] = make([]float32, lookAhead)
	}

	return &Limiter{
		ceiling:   ceiling,
		lookAhead: lookAhead,
		release:   releasePerSample,
		delay:     delay,
		peaks:     make([]float32, lookAhead),
		gain:      1,
	}
}

// Delay reports the limiter latency in samples.
func (l *Limiter) Delay() int { return l.lookAhead }

// Process limits chans in place. All channel slices must share a length.
func (l *Limiter) Process(chans [][]float32, frames int) {
	if len(chans) == 0 {
		return
	}

	for i := range frames {
		// The largest magnitude across channels at this frame.
		var peak float32
		for c := range chans {
			if v := absf(chans[c][i]); v > peak {
				peak = v
			}
		}

		// Window maximum over the incoming sample and everything still
		// in the delay line, including the sample about to leave. The
		// slot is only overwritten after the scan so the outgoing
		// sample always bounds its own gain.
		windowPeak := peak
		for _, p := range l.peaks {
			if p > windowPeak {
				windowPeak = p
			}
		}

		target := float32(1)
		if windowPeak > l.ceiling {
			target = l.ceiling / windowPeak
		}

		// Attack instantly, release smoothly.
		if target < l.gain {
			l.gain = target
		} else {
			l.gain = target + (l.gain-target)*l.release
		}

		for c := range chans {
			out := l.delay[c][l.pos] * l.gain
			l.delay[c][l.pos] = chans[c][i]
			chans[c][i] = out
		}
		l.peaks[l.pos] = peak

		l.pos++
		if l.pos == l.lookAhead {
			l.pos = 0
		}
	}
}

// Clear resets the delay lines and gain state.
func (l *Limiter) Clear() {
	for c := range l.delay {
		clear(l.delay[c])
	}
	clear(l.peaks)
	l.pos = 0
	l.gain = 1
}

// DbToGain converts decibels to a linear amplitude factor.
func DbToGain(db float32) float32 {
	return math32.Pow(10, db/20)
}

// GainToDb converts a linear amplitude factor to decibels.
func GainToDb(gain float32) float32 {
	const invLn10 = 0.4342944819

	return 20 * invLn10 * math32.Log(gain)
}
