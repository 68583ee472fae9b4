// SPDX-License-Identifier: EPL-2.0

package dsp

// UhjEncoder converts first-order B-format (W, X, Y) to two-channel UHJ,
// a stereo-compatible encoding that preserves horizontal surround
// information:
//
//	S = 0.9396926*W + 0.1855740*X
//	D = j(-0.3420201*W + 0.5098604*X) + 0.6554516*Y
//	Left  = (S + D) / 2
//	Right = (S - D) / 2
//
// where j is a +90 degree phase shift. The shift is realized as a pair of
// allpass cascades whose outputs hold a 90 degree relative phase across the
// audio band; the direct path runs through the second cascade so both stay
// aligned.
type UhjEncoder struct {
	shift quadratureNetwork
}

// NewUhjEncoder returns a two-channel UHJ encoder.
func NewUhjEncoder() *UhjEncoder {
	return &UhjEncoder{}
}

// Encode writes frames of UHJ stereo into left and right from the ambisonic
// W, X and Y channels.
func (e *UhjEncoder) Encode(left, right []float32, w, x, y []float32, frames int) {
	for i := range frames {
		mid := 0.9396926*w[i] + 0.1855740*x[i]
		side := -0.3420201*w[i] + 0.5098604*x[i]

		sideJ, midRef := e.shift.process(side, mid)
		d := sideJ + 0.6554516*y[i]

		left[i] = (midRef + d) * 0.5
		right[i] = (midRef - d) * 0.5
	}
}

// Clear resets the phase network state.
func (e *UhjEncoder) Clear() {
	e.shift = quadratureNetwork{}
}

// quadratureNetwork is two first-order allpass cascades whose outputs differ
// by approximately 90 degrees over the audio band. The coefficients are the
// classic analog-derived pairs used in SSB and ambisonic phase networks.
type quadratureNetwork struct {
	zA [4][2]float32
	zB [4][2]float32
}

var quadACoeffs = [4]float32{0.6923878, 0.9360654, 0.9882295, 0.9987488}
var quadBCoeffs = [4]float32{0.4021921, 0.8561711, 0.9722910, 0.9952885}

// process returns cascade A applied to a (with +90 degrees relative phase)
// and cascade B applied to b.
func (q *quadratureNetwork) process(a, b float32) (float32, float32) {
	for s := range quadACoeffs {
		c := quadACoeffs[s]
		y := q.zA[s][1] + c*(a-q.zA[s][0])
		q.zA[s][0], q.zA[s][1] = y, a
		a = y
	}
	for s := range quadBCoeffs {
		c := quadBCoeffs[s]
		y := q.zB[s][1] + c*(b-q.zB[s][0])
		q.zB[s][0], q.zB[s][1] = y, b
		b = y
	}

	return a, b
}
