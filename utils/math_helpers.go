// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits v to the inclusive range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

// Lerp blends between a and b by t, where t=0 yields a and t=1 yields b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
