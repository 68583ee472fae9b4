// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"github.com/rkusa/gm/math32"
)

// BiquadType selects the response of a Biquad section.
type BiquadType int

const (
	// HighShelf boosts or cuts everything above the reference frequency.
	HighShelf BiquadType = iota
	// LowShelf boosts or cuts everything below the reference frequency.
	LowShelf
	// Peaking boosts or cuts around the reference frequency.
	Peaking
	// LowPass attenuates above the reference frequency.
	LowPass
	// HighPass attenuates below the reference frequency.
	HighPass
	// BandPass attenuates away from the reference frequency.
	BandPass
)

// Biquad is a second-order IIR filter section processed in transposed
// direct form II. The zero value is a pass-through with unset coefficients;
// call SetParams before processing.
type Biquad struct {
	b0, b1, b2 float32
	a1, a2     float32
	z1, z2     float32
}

// minGain limits shelving gain to -100dB so coefficients stay finite.
const minGain = 0.00001

// SetParams configures the section. f0norm is the reference frequency
// divided by the sample rate (0 < f0norm < 0.5), gain is linear, and rcpQ
// is the reciprocal of the quality factor.
func (f *Biquad) SetParams(ftype BiquadType, f0norm, gain, rcpQ float32) {
	if gain < minGain {
		gain = minGain
	}

	w0 := 2 * math32.Pi * f0norm
	sinW0, cosW0 := math32.Sincos(w0)
	alpha := sinW0 / 2 * rcpQ

	a := [3]float32{1, 0, 0}
	b := [3]float32{1, 0, 0}

	switch ftype {
	case HighShelf:
		sqrtGainAlpha2 := 2 * math32.Sqrt(gain) * alpha
		b[0] = gain * ((gain + 1) + (gain-1)*cosW0 + sqrtGainAlpha2)
		b[1] = -2 * gain * ((gain - 1) + (gain+1)*cosW0)
		b[2] = gain * ((gain + 1) + (gain-1)*cosW0 - sqrtGainAlpha2)
		a[0] = (gain + 1) - (gain-1)*cosW0 + sqrtGainAlpha2
		a[1] = 2 * ((gain - 1) - (gain+1)*cosW0)
		a[2] = (gain + 1) - (gain-1)*cosW0 - sqrtGainAlpha2
	case LowShelf:
		sqrtGainAlpha2 := 2 * math32.Sqrt(gain) * alpha
		b[0] = gain * ((gain + 1) - (gain-1)*cosW0 + sqrtGainAlpha2)
		b[1] = 2 * gain * ((gain - 1) - (gain+1)*cosW0)
		b[2] = gain * ((gain + 1) - (gain-1)*cosW0 - sqrtGainAlpha2)
		a[0] = (gain + 1) + (gain-1)*cosW0 + sqrtGainAlpha2
		a[1] = -2 * ((gain - 1) + (gain+1)*cosW0)
		a[2] = (gain + 1) + (gain-1)*cosW0 - sqrtGainAlpha2
	case Peaking:
		b[0] = 1 + alpha*gain
		b[1] = -2 * cosW0
		b[2] = 1 - alpha*gain
		a[0] = 1 + alpha/gain
		a[1] = -2 * cosW0
		a[2] = 1 - alpha/gain
	case LowPass:
		b[0] = (1 - cosW0) / 2
		b[1] = 1 - cosW0
		b[2] = (1 - cosW0) / 2
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	case HighPass:
		b[0] = (1 + cosW0) / 2
		b[1] = -(1 + cosW0)
		b[2] = (1 + cosW0) / 2
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	case BandPass:
		b[0] = alpha
		b[1] = 0
		b[2] = -alpha
		a[0] = 1 + alpha
		a[1] = -2 * cosW0
		a[2] = 1 - alpha
	}

	f.a1 = a[1] / a[0]
	f.a2 = a[2] / a[0]
	f.b0 = b[0] / a[0]
	f.b1 = b[1] / a[0]
	f.b2 = b[2] / a[0]
}

// SetParamsFromSlope configures a shelving section using a 0dB/octave-style
// slope of 1, matching the behavior expected for source filtering.
func (f *Biquad) SetParamsFromSlope(ftype BiquadType, f0norm, gain float32) {
	if gain < minGain {
		gain = minGain
	}

	// rcpQ = 1/sqrt((g + 1/g)*(1/slope - 1) + 2), which for slope=1
	// reduces to 1/sqrt(2).
	rcpQ := float32(1) / math32.Sqrt(2)
	f.SetParams(ftype, f0norm, gain, rcpQ)
}

// CopyParamsFrom copies another section's coefficients, leaving this
// section's history untouched.
func (f *Biquad) CopyParamsFrom(other *Biquad) {
	f.b0 = other.b0
	f.b1 = other.b1
	f.b2 = other.b2
	f.a1 = other.a1
	f.a2 = other.a2
}

// Clear resets the filter history.
func (f *Biquad) Clear() {
	f.z1 = 0
	f.z2 = 0
}

// Process filters src into dst. The slices may alias. len(dst) must be at
// least len(src).
func (f *Biquad) Process(dst, src []float32) {
	b0, b1, b2 := f.b0, f.b1, f.b2
	a1, a2 := f.a1, f.a2
	z1, z2 := f.z1, f.z2

	for i, in := range src {
		out := in*b0 + z1
		z1 = in*b1 - out*a1 + z2
		z2 = in*b2 - out*a2
		dst[i] = out
	}

	f.z1 = z1
	f.z2 = z2
}
