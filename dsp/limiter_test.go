// SPDX-License-Identifier: EPL-2.0

package dsp

import (
	"math"
	"testing"
)

func TestLimiterCeiling(t *testing.T) {
	t.Parallel()

	l := NewLimiter(2, 16, 1.0, 0.999)

	const frames = 1024

	left := make([]float32, frames)
	right := make([]float32, frames)
	for i := range left {
		// A signal well above the ceiling.
		left[i] = 2.5 * float32(math.Sin(2*math.Pi*0.01*float64(i)))
		right[i] = -left[i]
	}

	l.Process([][]float32{left, right}, frames)

	for i := range frames {
		if left[i] > 1.0001 || left[i] < -1.0001 {
			t.Fatalf("left sample %d exceeds ceiling: %v", i, left[i])
		}
		if right[i] > 1.0001 || right[i] < -1.0001 {
			t.Fatalf("right sample %d exceeds ceiling: %v", i, right[i])
		}
	}
}

func TestLimiterPassesQuietSignal(t *testing.T) {
	t.Parallel()

	l := NewLimiter(1, 8, 1.0, 0.99)

	const frames = 64

	buf := make([]float32, frames)
	want := make([]float32, frames)
	for i := range buf {
		buf[i] = 0.25 * float32(math.Sin(float64(i)*0.4))
		want[i] = buf[i]
	}

	l.Process([][]float32{buf}, frames)

	// Output is delayed by the look-ahead but otherwise untouched.
	delay := l.Delay()
	for i := delay; i < frames; i++ {
		if diff := buf[i] - want[i-delay]; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sample %d: got %v, want %v", i, buf[i], want[i-delay])
		}
	}
}

func TestDbGainRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		db   float32
		want float32
	}{
		{name: "0 dB is unity", db: 0, want: 1.0},
		{name: "-6 dB halves", db: -6.0206, want: 0.5},
		{name: "+20 dB is 10x", db: 20, want: 10.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := DbToGain(tt.db)
			if diff := got/tt.want - 1; diff > 1e-3 || diff < -1e-3 {
				t.Errorf("DbToGain(%v) = %v, want %v", tt.db, got, tt.want)
			}

			back := GainToDb(got)
			if diff := back - tt.db; diff > 1e-2 || diff < -1e-2 {
				t.Errorf("GainToDb(%v) = %v, want %v", got, back, tt.db)
			}
		})
	}
}

func BenchmarkLimiterProcess(b *testing.B) {
	l := NewLimiter(2, 64, 1.0, 0.9995)

	left := make([]float32, 1024)
	right := make([]float32, 1024)
	for i := range left {
		left[i] = 1.5 * float32(math.Sin(float64(i)*0.05))
		right[i] = left[i]
	}
	chans := [][]float32{left, right}

	b.ReportAllocs()

	for b.Loop() {
		l.Process(chans, 1024)
	}
}
