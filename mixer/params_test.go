// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"testing"
)

func closeTo(got, want, tol float32) bool {
	d := got - want
	if d < 0 {
		d = -d
	}

	return d <= tol
}

func TestDistanceAttenuation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		model   DistanceModel
		dist    float32
		ref     float32
		maxDist float32
		rolloff float32
		want    float32
	}{
		{name: "inverse at reference", model: DistanceInverse, dist: 1, ref: 1, maxDist: 100, rolloff: 1, want: 1},
		{name: "inverse at 2x reference", model: DistanceInverse, dist: 2, ref: 1, maxDist: 100, rolloff: 1, want: 0.5},
		{name: "inverse rolloff 2", model: DistanceInverse, dist: 2, ref: 1, maxDist: 100, rolloff: 2, want: 1.0 / 3.0},
		{name: "inverse zero reference bypasses", model: DistanceInverse, dist: 50, ref: 0, maxDist: 100, rolloff: 1, want: 1},
		{name: "inverse clamped below reference", model: DistanceInverseClamped, dist: 0.1, ref: 1, maxDist: 100, rolloff: 1, want: 1},
		{name: "inverse clamped beyond max", model: DistanceInverseClamped, dist: 100, ref: 1, maxDist: 10, rolloff: 1, want: 0.1},
		{name: "clamped max below ref bypasses", model: DistanceInverseClamped, dist: 5, ref: 2, maxDist: 1, rolloff: 1, want: 1},
		{name: "linear at reference", model: DistanceLinear, dist: 1, ref: 1, maxDist: 11, rolloff: 1, want: 1},
		{name: "linear midpoint", model: DistanceLinear, dist: 6, ref: 1, maxDist: 11, rolloff: 1, want: 0.5},
		{name: "linear floors at zero", model: DistanceLinear, dist: 30, ref: 1, maxDist: 11, rolloff: 2, want: 0},
		{name: "linear degenerate range", model: DistanceLinear, dist: 5, ref: 3, maxDist: 3, rolloff: 1, want: 1},
		{name: "exponent at reference", model: DistanceExponent, dist: 1, ref: 1, maxDist: 100, rolloff: 1, want: 1},
		{name: "exponent at 2x", model: DistanceExponent, dist: 2, ref: 1, maxDist: 100, rolloff: 1, want: 0.5},
		{name: "exponent rolloff 2", model: DistanceExponent, dist: 2, ref: 1, maxDist: 100, rolloff: 2, want: 0.25},
		{name: "none ignores distance", model: DistanceNone, dist: 1000, ref: 1, maxDist: 10, rolloff: 5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := distanceAttenuation(tt.model, tt.dist, tt.ref, tt.maxDist, tt.rolloff)
			if !closeTo(got, tt.want, 1e-5) {
				t.Errorf("distanceAttenuation = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDistanceClampedMatchesAtBoundary(t *testing.T) {
	t.Parallel()

	// Beyond max distance, the clamped model must hold the value it has
	// at max distance.
	atMax := distanceAttenuation(DistanceInverseClamped, 10, 1, 10, 1)
	beyond := distanceAttenuation(DistanceInverseClamped, 100, 1, 10, 1)
	if atMax != beyond {
		t.Fatalf("attenuation at max %v != beyond max %v", atMax, beyond)
	}
}

func TestDopplerPitch(t *testing.T) {
	t.Parallel()

	// Axis points from source toward the listener.
	axis := vec3{0, 0, 1}

	t.Run("static", func(t *testing.T) {
		t.Parallel()

		got := dopplerPitch(343.3, 1, axis, vec3{}, vec3{})
		if got != 1 {
			t.Fatalf("static doppler = %v, want 1", got)
		}
	})

	t.Run("approaching source raises pitch", func(t *testing.T) {
		t.Parallel()

		got := dopplerPitch(343.3, 1, axis, vec3{0, 0, 100}, vec3{})
		want := float32(343.3 / (343.3 - 100))
		if !closeTo(got, want, 1e-4) {
			t.Fatalf("approaching doppler = %v, want %v", got, want)
		}
	})

	t.Run("receding source lowers pitch", func(t *testing.T) {
		t.Parallel()

		got := dopplerPitch(343.3, 1, axis, vec3{0, 0, -100}, vec3{})
		want := float32(343.3 / (343.3 + 100))
		if !closeTo(got, want, 1e-4) {
			t.Fatalf("receding doppler = %v, want %v", got, want)
		}
	})

	t.Run("source at speed of sound saturates to infinity", func(t *testing.T) {
		t.Parallel()

		got := dopplerPitch(343.3, 1, axis, vec3{0, 0, 400}, vec3{})
		if !math.IsInf(float64(got), 1) {
			t.Fatalf("supersonic source doppler = %v, want +Inf", got)
		}
	})

	t.Run("listener receding at speed of sound saturates to zero", func(t *testing.T) {
		t.Parallel()

		got := dopplerPitch(343.3, 1, axis, vec3{}, vec3{0, 0, 400})
		if got != 0 {
			t.Fatalf("supersonic listener doppler = %v, want 0", got)
		}
	})
}

func TestConeGains(t *testing.T) {
	t.Parallel()

	props := &sourceProps{
		InnerAngle:  90,
		OuterAngle:  270,
		OuterGain:   0.25,
		OuterGainHF: 0.5,
	}

	// Facing straight at the listener: inside the inner cone.
	g, hf := coneGains(props, vec3{0, 0, 1}, vec3{0, 0, 1})
	if g != 1 || hf != 1 {
		t.Fatalf("on-axis cone gains = (%v, %v), want (1, 1)", g, hf)
	}

	// Facing directly away: outside the outer cone.
	g, hf = coneGains(props, vec3{0, 0, -1}, vec3{0, 0, 1})
	if g != 0.25 || hf != 0.5 {
		t.Fatalf("off-axis cone gains = (%v, %v), want (0.25, 0.5)", g, hf)
	}

	// Perpendicular: angle 180, midway between 90 and 270.
	g, hf = coneGains(props, vec3{1, 0, 0}, vec3{0, 0, 1})
	if !closeTo(g, 0.625, 1e-4) || !closeTo(hf, 0.75, 1e-4) {
		t.Fatalf("transition cone gains = (%v, %v), want (0.625, 0.75)", g, hf)
	}
}

func TestSpreadFromRadius(t *testing.T) {
	t.Parallel()

	if got := spreadFromRadius(0, 10); got != 0 {
		t.Errorf("zero radius spread = %v, want 0", got)
	}

	// Source twice as far as its radius subtends 2*asin(1/2) = pi/3.
	got := spreadFromRadius(1, 2)
	if !closeTo(got, math.Pi/3, 1e-5) {
		t.Errorf("distant spread = %v, want pi/3", got)
	}

	// Listener inside the source approaches a full sphere.
	got = spreadFromRadius(10, 0)
	if !closeTo(got, 2*math.Pi, 1e-5) {
		t.Errorf("enclosed spread = %v, want 2*pi", got)
	}
}

func TestPitchToStep(t *testing.T) {
	t.Parallel()

	if got := pitchToStep(1, 48000, 48000); got != FracOne {
		t.Errorf("unity step = %d, want %d", got, FracOne)
	}
	if got := pitchToStep(2, 48000, 48000); got != 2*FracOne {
		t.Errorf("double step = %d, want %d", got, 2*FracOne)
	}
	if got := pitchToStep(1, 24000, 48000); got != FracOne/2 {
		t.Errorf("half-rate step = %d, want %d", got, FracOne/2)
	}
	if got := pitchToStep(0, 48000, 48000); got != 0 {
		t.Errorf("zero pitch step = %d, want 0", got)
	}
	if got := pitchToStep(1e9, 48000, 48000); got != MaxPitch<<FracBits {
		t.Errorf("huge pitch step = %d, want ceiling %d", got, MaxPitch<<FracBits)
	}
	if got := pitchToStep(float32(math.Inf(1)), 48000, 48000); got != MaxPitch<<FracBits {
		t.Errorf("infinite pitch step = %d, want ceiling %d", got, MaxPitch<<FracBits)
	}
	if got := pitchToStep(float32(math.NaN()), 48000, 48000); got != MaxPitch<<FracBits {
		t.Errorf("NaN pitch step = %d, want ceiling %d", got, MaxPitch<<FracBits)
	}
}

func TestListenerFrame(t *testing.T) {
	t.Parallel()

	// Default orientation: -z forward, +y up.
	lst := &listenerProps{Forward: vec3{0, 0, -1}, Up: vec3{0, 1, 0}}
	frame := newListenerFrame(lst)

	local := frame.toLocal(vec3{0, 0, -5})
	if !closeTo(local[2], -5, 1e-5) || !closeTo(local[0], 0, 1e-5) {
		t.Fatalf("front point maps to %v, want (0, 0, -5)", local)
	}

	local = frame.toLocal(vec3{3, 0, 0})
	if !closeTo(local[0], 3, 1e-5) {
		t.Fatalf("right point maps to %v, want +x", local)
	}

	// Listener turned to face +x: a world +x point is now straight
	// ahead.
	lst = &listenerProps{Forward: vec3{1, 0, 0}, Up: vec3{0, 1, 0}}
	frame = newListenerFrame(lst)

	local = frame.toLocal(vec3{7, 0, 0})
	if !closeTo(local[2], -7, 1e-5) || !closeTo(local[0], 0, 1e-5) {
		t.Fatalf("rotated front point maps to %v, want (0, 0, -7)", local)
	}
}

func TestListenerFrameOffsetPosition(t *testing.T) {
	t.Parallel()

	lst := &listenerProps{
		Position: vec3{10, 0, 0},
		Forward:  vec3{0, 0, -1},
		Up:       vec3{0, 1, 0},
	}
	frame := newListenerFrame(lst)

	local := frame.toLocal(vec3{10, 0, -4})
	if !closeTo(local[2], -4, 1e-5) || !closeTo(local[0], 0, 1e-5) {
		t.Fatalf("translated point maps to %v, want (0, 0, -4)", local)
	}
}
