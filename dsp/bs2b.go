// SPDX-License-Identifier: EPL-2.0

package dsp

import "github.com/rkusa/gm/math32"

// Bs2b crossfeed levels, after Boris Mikhaylov's bs2b presets. The plain
// levels crossfeed harder than the "easy" ones; higher levels pull the
// virtual speakers closer together.
const (
	Bs2bLow = iota + 1
	Bs2bMiddle
	Bs2bHigh
	Bs2bLowEasy
	Bs2bMiddleEasy
	Bs2bHighEasy

	Bs2bDefault = Bs2bHighEasy
)

// Bs2b applies Bauer crossfeed to a headphone stereo signal: each channel is
// low-passed, attenuated and fed to the opposite ear, while the direct path
// gets a matching high boost, reducing the extreme separation of hard-panned
// material.
type Bs2b struct {
	a0Lo, b1Lo float32
	a0Hi, a1Hi float32
	b1Hi       float32

	zLoL, zLoR float32
	zHiL, zHiR float32
}

// NewBs2b creates a crossfeed processor for the given level and rate.
func NewBs2b(level, sampleRate int) *Bs2b {
	b := &Bs2b{}
	b.SetParams(level, sampleRate)

	return b
}

// SetParams reconfigures the crossfeed level. State is cleared.
func (b *Bs2b) SetParams(level, sampleRate int) {
	// Feed cut frequencies and linear gains per level. The stronger the
	// level, the more low end reaches the opposite ear.
	var fcLo, fcHi, gLo, gHi float32
	switch level {
	case Bs2bLow:
		fcLo, fcHi, gLo, gHi = 360, 501, 0.398107170553497, 0.205671765275719
	case Bs2bMiddle:
		fcLo, fcHi, gLo, gHi = 500, 711, 0.459726988530872, 0.228208484414988
	case Bs2bHigh:
		fcLo, fcHi, gLo, gHi = 700, 1021, 0.530884444230988, 0.250105790667544
	case Bs2bLowEasy:
		fcLo, fcHi, gLo, gHi = 360, 494, 0.316227766016838, 0.168236228897329
	case Bs2bMiddleEasy:
		fcLo, fcHi, gLo, gHi = 500, 689, 0.354813389233575, 0.187169483835901
	default:
		fcLo, fcHi, gLo, gHi = 700, 975, 0.398107170553497, 0.205671765275719
	}

	g := 1 / (1 - gHi + gLo)

	x := math32.Exp(-2 * math32.Pi * fcLo / float32(sampleRate))
	b.b1Lo = x
	b.a0Lo = gLo * (1 - x) * g

	x = math32.Exp(-2 * math32.Pi * fcHi / float32(sampleRate))
	b.b1Hi = x
	b.a0Hi = (1 - gHi*(1-x)) * g
	b.a1Hi = -x * g

	b.Clear()
}

// Clear resets the filter state.
func (b *Bs2b) Clear() {
	b.zLoL, b.zLoR = 0, 0
	b.zHiL, b.zHiR = 0, 0
}

// Process crossfeeds left and right in place.
func (b *Bs2b) Process(left, right []float32, frames int) {
	for i := range frames {
		l, r := left[i], right[i]

		hiL := b.a0Hi*l + b.zHiL
		b.zHiL = b.a1Hi*l + b.b1Hi*hiL
		loL := b.a0Lo*l + b.zLoL
		b.zLoL = b.b1Lo * loL

		hiR := b.a0Hi*r + b.zHiR
		b.zHiR = b.a1Hi*r + b.b1Hi*hiR
		loR := b.a0Lo*r + b.zLoR
		b.zLoR = b.b1Lo * loR

		left[i] = hiL + loR
		right[i] = hiR + loL
	}
}
