// SPDX-License-Identifier: EPL-2.0

package dsp

import "github.com/rkusa/gm/math32"

// HrirLength is the impulse-response length used for binaural rendering.
const HrirLength = 32

// MaxHrirDelay bounds the inter-aural delay in samples.
const MaxHrirDelay = 64

// HrirFilter holds one direction's binaural rendering parameters: a stereo
// impulse response and a per-ear onset delay in samples.
type HrirFilter struct {
	Coeffs [HrirLength][2]float32
	Delay  [2]int
}

// Hrtf provides head-related impulse responses for a direction. dist and
// spread allow near-field and wide-source adjustments; implementations may
// ignore them.
type Hrtf interface {
	// Coefficients fills out with the impulse response and delays for the
	// given elevation and azimuth (radians).
	Coefficients(elevation, azimuth, dist, spread float32, out *HrirFilter)
}

// SphericalHrtf is a parametric spherical-head model: an inter-aural time
// difference from the Woodworth formula and a first-order head-shadow
// low-pass on the far ear. It stands in where no measured dataset is
// available.
type SphericalHrtf struct {
	sampleRate  float32
	headRadius  float32
	itdScale    float32
	shadowDepth float32
}

// speedOfSoundMetersPerSec is the reference sound speed for the ITD.
const speedOfSoundMetersPerSec = 343.3

// NewSphericalHrtf returns a model for the given device sample rate.
func NewSphericalHrtf(sampleRate int) *SphericalHrtf {
	const headRadiusMeters = 0.0875

	return &SphericalHrtf{
		sampleRate:  float32(sampleRate),
		headRadius:  headRadiusMeters,
		itdScale:    headRadiusMeters / speedOfSoundMetersPerSec,
		shadowDepth: 0.85,
	}
}

// Coefficients implements Hrtf.
func (h *SphericalHrtf) Coefficients(elevation, azimuth, dist, spread float32, out *HrirFilter) {
	_ = dist

	sinAz := math32.Sin(azimuth)
	cosEl := math32.Cos(elevation)
	lateral := sinAz * cosEl

	// Woodworth: itd = r/c * (asin(l) + l). Positive lateral means the
	// source is right of center, delaying the left ear.
	itd := h.itdScale * (math32.Asin(clampUnit(lateral)) + lateral) * h.sampleRate
	if itd < 0 {
		itd = -itd
	}
	if itd > MaxHrirDelay-1 {
		itd = MaxHrirDelay - 1
	}

	var leftDelay, rightDelay float32
	if lateral >= 0 {
		leftDelay = itd
	} else {
		rightDelay = itd
	}
	out.Delay[0] = int(leftDelay)
	out.Delay[1] = int(rightDelay)

	// Head shadow: attenuate and low-pass the far ear. A wide spread
	// reduces the shadow, as the source wraps around the head.
	shadow := h.shadowDepth * absf(lateral)
	if spread > 0 {
		shadow *= 1 - spread/(2*math32.Pi)*0.5
	}

	nearGain := float32(1)
	farGain := 1 - shadow
	// One-pole low-pass expressed as a decaying IR tail on the far ear.
	alpha := 0.3 + 0.6*shadow

	var near, far int
	if lateral >= 0 {
		near, far = 1, 0
	} else {
		near, far = 0, 1
	}

	for i := range out.Coeffs {
		out.Coeffs[i][0] = 0
		out.Coeffs[i][1] = 0
	}
	out.Coeffs[0][near] = nearGain

	// farGain * (1-alpha) * alpha^i expansion of the one-pole response.
	g := farGain * (1 - alpha)
	for i := range HrirLength {
		out.Coeffs[i][far] = g
		g *= alpha
		if g < 1e-6 {
			break
		}
	}
}

func clampUnit(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}

	return v
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}
