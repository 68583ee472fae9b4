// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 converts a normalized sample to signed 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	// Clamp and scale
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Float32ToInt32 converts a normalized sample to signed 32-bit PCM.
// A float has at most 25 bits of signed precision, so the positive limit
// is the largest float value below 2^31.
func Float32ToInt32(x float32) int32 {
	v := x * 2147483648.0
	if v > 2147483520.0 {
		v = 2147483520.0
	} else if v < -2147483648.0 {
		v = -2147483648.0
	}

	return int32(v)
}

// Float32ToUint8 converts a normalized sample to unsigned 8-bit PCM with a
// 128 bias.
func Float32ToUint8(x float32) uint8 {
	v := x * 128.0
	if v > 127.0 {
		v = 127.0
	} else if v < -128.0 {
		v = -128.0
	}

	return uint8(int16(v) + 128)
}
