// SPDX-License-Identifier: EPL-2.0

package dsp

// NfcFilter emulates the near-field effect of wavefront curvature: a bass
// boost for the emulated source distance combined with a bass cut for the
// playback speaker distance. The boost alone has infinite DC gain, so the
// cut (from a finite, non-zero control frequency) is what keeps the filter
// stable.
//
// Frequencies are expressed as w = speedOfSound / (distance * sampleRate).
// A w0 of 0 represents a plane wave (infinitely distant source), leaving
// only the speaker-distance compensation.
type NfcFilter struct {
	baseGain float32
	gain     float32
	b1       float32
	a1       float32
	z1       float32
}

// NewNfcFilter returns a filter compensating for the control (speaker)
// frequency w1, initially adjusted for a plane-wave source (w0 = 0). w1
// must be positive.
func NewNfcFilter(w1 float32) *NfcFilter {
	f := &NfcFilter{}
	f.Init(w1)

	return f
}

// Init sets the bass-cut coefficients for control frequency w1 and resets
// the source side to a plane wave.
func (f *NfcFilter) Init(w1 float32) {
	r := 0.5 * w1
	g := 1 + r

	f.baseGain = 1 / g
	f.a1 = 2 * r / g

	// Source boost matches the cut for pass-through until adjusted.
	f.gain = 1
	f.b1 = f.a1
}

// Adjust sets the bass-boost coefficients for the source frequency w0.
func (f *NfcFilter) Adjust(w0 float32) {
	r := 0.5 * w0
	g := 1 + r

	f.gain = f.baseGain * g
	f.b1 = 2 * r / g
}

// Clear resets the filter history.
func (f *NfcFilter) Clear() {
	f.z1 = 0
}

// Process filters src into dst. The slices may alias.
func (f *NfcFilter) Process(dst, src []float32) {
	gain, b1, a1 := f.gain, f.b1, f.a1
	z1 := f.z1

	for i, in := range src {
		y := in*gain - a1*z1
		dst[i] = y + b1*z1
		z1 += y
	}

	f.z1 = z1
}
