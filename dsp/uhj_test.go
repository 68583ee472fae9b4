// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

func TestUhjCenterImageIsBalanced(t *testing.T) {
	t.Parallel()

	e := NewUhjEncoder()

	const frames = 256

	w := make([]float32, frames)
	x := make([]float32, frames)
	y := make([]float32, frames)
	for i := range w {
		v := float32(math.Sin(float64(i) * 0.1))
		// W/X ratio chosen so the difference signal cancels exactly.
		w[i] = 0.5098604 * v
		x[i] = 0.3420201 * v
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	e.Encode(left, right, w, x, y, frames)

	// The two channels sum the same terms in a different order, which
	// leaves rounding of the last bit.
	for i := range frames {
		if diff := left[i] - right[i]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: center image split into %v / %v", i, left[i], right[i])
		}
	}
}

func TestUhjSideImageIsAntisymmetric(t *testing.T) {
	t.Parallel()

	e := NewUhjEncoder()

	const frames = 256

	w := make([]float32, frames)
	x := make([]float32, frames)
	y := make([]float32, frames)
	for i := range y {
		y[i] = float32(math.Sin(float64(i) * 0.07))
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	e.Encode(left, right, w, x, y, frames)

	for i := range frames {
		if left[i] != -right[i] {
			t.Fatalf("sample %d: pure-Y signal gave %v / %v, want mirrored", i, left[i], right[i])
		}
	}
}

func TestUhjOmniKeepsEnergy(t *testing.T) {
	t.Parallel()

	e := NewUhjEncoder()

	const frames = 4096

	w := make([]float32, frames)
	x := make([]float32, frames)
	y := make([]float32, frames)
	var in float64
	for i := range w {
		w[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
		in += float64(w[i]) * float64(w[i])
	}

	left := make([]float32, frames)
	right := make([]float32, frames)
	e.Encode(left, right, w, x, y, frames)

	var out float64
	for i := range frames {
		out += float64(left[i])*float64(left[i]) + float64(right[i])*float64(right[i])
	}

	// The allpass network preserves magnitude; only the UHJ matrix scales.
	if out == 0 || out > in {
		t.Errorf("output energy %v for input energy %v", out, in)
	}
}

func TestUhjClearResetsState(t *testing.T) {
	t.Parallel()

	e := NewUhjEncoder()

	w := []float32{1, 1, 1, 1}
	zero := []float32{0, 0, 0, 0}
	left := make([]float32, 4)
	right := make([]float32, 4)
	e.Encode(left, right, w, zero, zero, 4)
	e.Clear()

	silence := make([]float32, 8)
	left = make([]float32, 8)
	right = make([]float32, 8)
	e.Encode(left, right, silence, silence, silence, 8)

	for i := range left {
		if left[i] != 0 || right[i] != 0 {
			t.Fatalf("sample %d nonzero after Clear: %v / %v", i, left[i], right[i])
		}
	}
}

func BenchmarkUhjEncode(b *testing.B) {
	e := NewUhjEncoder()

	const frames = 1024

	w := make([]float32, frames)
	x := make([]float32, frames)
	y := make([]float32, frames)
	for i := range w {
		w[i] = float32(math.Sin(float64(i) * 0.05))
		x[i] = w[i] * 0.5
		y[i] = -w[i] * 0.25
	}

	left := make([]float32, frames)
	right := make([]float32, frames)

	b.ReportAllocs()

	for b.Loop() {
		e.Encode(left, right, w, x, y, frames)
	}
}
