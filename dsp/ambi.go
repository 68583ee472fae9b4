// SPDX-License-Identifier: EPL-2.0

package dsp

import "github.com/rkusa/gm/math32"

// AmbiChannels is the channel count of the first-order ambisonic (B-Format)
// representation used throughout the mixer, in ACN order: W, Y, Z, X.
const AmbiChannels = 4

// DirectionCoeffs returns first-order ambisonic encoding coefficients (ACN
// order, SN3D normalization) for a unit direction vector in the listener's
// frame: +x right, +y up, -z front. spread (radians) widens the source,
// collapsing the directional components toward an omnidirectional response
// as it approaches a full sphere.
func DirectionCoeffs(x, y, z, spread float32) [AmbiChannels]float32 {
	// B-Format wants +X front and +Y left; the listener frame has -z in
	// front and +x to the right.
	coeffs := [AmbiChannels]float32{
		1,  // ACN 0 = W
		-x, // ACN 1 = Y (left)
		y,  // ACN 2 = Z (up)
		-z, // ACN 3 = X (front)
	}

	if spread > 0 {
		// Attenuate the directional components toward zero as the
		// spread reaches a full sphere, keeping W constant.
		ca := math32.Cos(spread * 0.5)
		dirScale := (1 + ca) * 0.5
		coeffs[1] *= dirScale
		coeffs[2] *= dirScale
		coeffs[3] *= dirScale
	}

	return coeffs
}

// AngleCoeffs returns encoding coefficients for an azimuth/elevation pair
// (radians; azimuth clockwise from front, elevation upward).
func AngleCoeffs(azimuth, elevation, spread float32) [AmbiChannels]float32 {
	sinAz, cosAz := math32.Sincos(azimuth)
	sinEl, cosEl := math32.Sincos(elevation)

	x := sinAz * cosEl
	y := sinEl
	z := -cosAz * cosEl

	return DirectionCoeffs(x, y, z, spread)
}

// ScaleAzimuthFront stretches an azimuth (radians) away from the front by
// scale, clamping at +/-90 degrees. Used for stereo-pair rendering, where
// the physical speakers cover a narrower span than the full circle.
func ScaleAzimuthFront(azimuth, scale float32) float32 {
	const halfPi = math32.Pi / 2
	if azimuth > -halfPi && azimuth < halfPi {
		az := azimuth * scale
		if az > halfPi {
			return halfPi
		}
		if az < -halfPi {
			return -halfPi
		}

		return az
	}

	return azimuth
}

// PanGains multiplies encoding coefficients by a master gain, producing the
// per-ambisonic-channel mixing gains for a target buffer with numChannels
// lines (extra entries stay zero).
func PanGains(coeffs *[AmbiChannels]float32, gain float32, numChannels int, gains []float32) {
	for i := range gains {
		gains[i] = 0
	}
	n := min(numChannels, AmbiChannels)
	for i := range n {
		gains[i] = coeffs[i] * gain
	}
}

// Speaker describes one output channel position for decoding.
type Speaker struct {
	Azimuth   float32 // radians, clockwise from front
	Elevation float32 // radians
	LFE       bool    // subwoofer channels receive W only
}

// Decoder converts the first-order ambisonic mix to speaker feeds using a
// sampling (projection) decode of the speaker layout.
type Decoder struct {
	matrix [][AmbiChannels]float32
}

// NewDecoder builds a decoder for the given speaker layout. A single
// speaker receives W unscaled, so a front-centered source decodes back to
// its original amplitude.
func NewDecoder(speakers []Speaker) *Decoder {
	d := &Decoder{matrix: make([][AmbiChannels]float32, len(speakers))}

	if len(speakers) == 1 {
		d.matrix[0] = [AmbiChannels]float32{1, 0, 0, 0}
		return d
	}

	// Directional weight for a projection decode, normalized so that the
	// total energy of a panned source stays near unity.
	wScale := float32(1) / float32(len(speakers))
	dirScale := wScale * 2

	for i, sp := range speakers {
		if sp.LFE {
			d.matrix[i] = [AmbiChannels]float32{wScale, 0, 0, 0}
			continue
		}

		c := AngleCoeffs(sp.Azimuth, sp.Elevation, 0)
		d.matrix[i] = [AmbiChannels]float32{
			wScale,
			dirScale * c[1],
			dirScale * c[2],
			dirScale * c[3],
		}
	}

	return d
}

// Process decodes frames samples from the ambisonic input lines into the
// speaker output lines, overwriting out.
func (d *Decoder) Process(out, in [][]float32, frames int) {
	for ch, row := range d.matrix {
		dst := out[ch][:frames]
		for i := range dst {
			dst[i] = 0
		}
		for acn := range AmbiChannels {
			g := row[acn]
			if g == 0 {
				continue
			}
			src := in[acn][:frames]
			for i, s := range src {
				dst[i] += s * g
			}
		}
	}
}
