// SPDX-License-Identifier: EPL-2.0

package dsp

import "github.com/rkusa/gm/math32"

// BandSplitter splits a signal into phase-matched low and high bands around
// a crossover frequency, using a second-order low-pass and a first-order
// all-pass so that low + high reconstructs the input's magnitude response.
type BandSplitter struct {
	coeff float32
	lpZ1  float32
	lpZ2  float32
	apZ1  float32

	// Separate history for the standalone all-pass, so phase-matching an
	// auxiliary signal does not disturb the split state.
	soloZ1 float32
}

// NewBandSplitter returns a splitter with its crossover at f0norm (cutoff
// frequency divided by sample rate).
func NewBandSplitter(f0norm float32) *BandSplitter {
	s := &BandSplitter{}
	s.Init(f0norm)

	return s
}

// Init sets the crossover frequency and clears filter history.
func (s *BandSplitter) Init(f0norm float32) {
	w := f0norm * 2 * math32.Pi
	cw := math32.Cos(w)
	if cw > 1e-7 {
		s.coeff = (math32.Sin(w) - 1) / cw
	} else {
		s.coeff = cw * -0.5
	}

	s.lpZ1 = 0
	s.lpZ2 = 0
	s.apZ1 = 0
	s.soloZ1 = 0
}

// Clear resets the filter history without changing the crossover.
func (s *BandSplitter) Clear() {
	s.lpZ1 = 0
	s.lpZ2 = 0
	s.apZ1 = 0
	s.soloZ1 = 0
}

// Process splits src into hpOut and lpOut. All slices must be at least
// len(src) long; hpOut and lpOut must not alias src.
func (s *BandSplitter) Process(hpOut, lpOut, src []float32) {
	apCoeff := s.coeff
	lpCoeff := s.coeff*0.5 + 0.5
	lpZ1, lpZ2, apZ1 := s.lpZ1, s.lpZ2, s.apZ1

	for i, in := range src {
		// Two cascaded one-pole sections form the low-pass.
		d := (in - lpZ1) * lpCoeff
		lpY := lpZ1 + d
		lpZ1 = lpY + d

		d = (lpY - lpZ2) * lpCoeff
		lpY = lpZ2 + d
		lpZ2 = lpY + d
		lpOut[i] = lpY

		// The all-pass matches the low-pass phase; subtracting yields
		// the high band.
		apY := in*apCoeff + apZ1
		apZ1 = in - apY*apCoeff
		hpOut[i] = apY - lpY
	}

	s.lpZ1 = lpZ1
	s.lpZ2 = lpZ2
	s.apZ1 = apZ1
}

// ApplyAllpass runs only the all-pass stage in place, for phase-matching a
// signal that is later mixed with split output.
func (s *BandSplitter) ApplyAllpass(buf []float32) {
	coeff := s.coeff
	z1 := s.soloZ1

	for i, in := range buf {
		out := in*coeff + z1
		z1 = in - out*coeff
		buf[i] = out
	}

	s.soloZ1 = z1
}
