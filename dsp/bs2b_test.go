// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

func TestBs2bCrossfeedsHardPan(t *testing.T) {
	t.Parallel()

	b := NewBs2b(Bs2bDefault, 48000)

	const frames = 4096

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range left {
		// Low-frequency tone hard-panned left; crossfeed acts below the cut.
		left[i] = float32(math.Sin(2 * math.Pi * 100 * float64(i) / 48000))
	}

	b.Process(left, right, frames)

	var lEnergy, rEnergy float64
	for i := frames / 2; i < frames; i++ { // skip the filter settle
		lEnergy += float64(left[i]) * float64(left[i])
		rEnergy += float64(right[i]) * float64(right[i])
	}

	if rEnergy == 0 {
		t.Fatal("no signal fed to the opposite ear")
	}
	if rEnergy >= lEnergy {
		t.Fatalf("crossfed energy %v not below direct energy %v", rEnergy, lEnergy)
	}
}

func TestBs2bProfilesDiffer(t *testing.T) {
	t.Parallel()

	feed := func(level int) float64 {
		b := NewBs2b(level, 48000)

		const frames = 4096
		left := make([]float32, frames)
		right := make([]float32, frames)
		for i := range left {
			left[i] = float32(math.Sin(2 * math.Pi * 100 * float64(i) / 48000))
		}
		b.Process(left, right, frames)

		var e float64
		for i := frames / 2; i < frames; i++ {
			e += float64(right[i]) * float64(right[i])
		}

		return e
	}

	low, mid, high := feed(Bs2bLowEasy), feed(Bs2bDefault), feed(Bs2bHigh)
	if mid <= low {
		t.Errorf("default crossfeed %v not above low easy %v", mid, low)
	}
	if high <= mid {
		t.Errorf("high crossfeed %v not above default %v", high, mid)
	}
}

func TestBs2bPreservesMono(t *testing.T) {
	t.Parallel()

	b := NewBs2b(Bs2bDefault, 48000)

	const frames = 2048

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range left {
		v := float32(math.Sin(2 * math.Pi * 440 * float64(i) / 48000))
		left[i] = v
		right[i] = v
	}

	b.Process(left, right, frames)

	for i := range frames {
		if diff := left[i] - right[i]; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("sample %d: mono input split into %v / %v", i, left[i], right[i])
		}
		if left[i] > 1.2 || left[i] < -1.2 {
			t.Fatalf("sample %d out of range: %v", i, left[i])
		}
	}
}

func TestBs2bClearResetsState(t *testing.T) {
	t.Parallel()

	b := NewBs2b(Bs2bDefault, 48000)

	left := []float32{1, 1, 1, 1}
	right := []float32{0, 0, 0, 0}
	b.Process(left, right, 4)
	b.Clear()

	silence := make([]float32, 8)
	out := make([]float32, 8)
	b.Process(silence, out, 8)

	for i, v := range silence {
		if v != 0 || out[i] != 0 {
			t.Fatalf("sample %d nonzero after Clear: %v / %v", i, v, out[i])
		}
	}
}

func BenchmarkBs2bProcess(b *testing.B) {
	bs := NewBs2b(Bs2bDefault, 48000)

	left := make([]float32, 1024)
	right := make([]float32, 1024)
	for i := range left {
		left[i] = float32(math.Sin(float64(i) * 0.1))
		right[i] = -left[i]
	}

	b.ReportAllocs()

	for b.Loop() {
		bs.Process(left, right, 1024)
	}
}
