// SPDX-License-Identifier: EPL-2.0

package mixer

const (
	// FracBits is the sub-sample precision of the fixed-point resampler
	// position; FracOne is one whole source frame in that representation.
	FracBits = 12
	FracOne  = 1 << FracBits
	FracMask = FracOne - 1

	// MaxPitch caps the resample step at 255 source frames per output
	// frame.
	MaxPitch = 255

	// MaxSends is the number of auxiliary effect sends per source.
	MaxSends = 2

	// MaxSourceChannels bounds the channel count of queued buffers: mono
	// and stereo material is spatialized, anything wider is rejected.
	MaxSourceChannels = 2
)

const (
	// DefaultSpeedOfSound is in units per second, with one unit equal to
	// one meter at the default meters-per-unit.
	DefaultSpeedOfSound = 343.3

	// DefaultDopplerFactor scales the doppler pitch effect.
	DefaultDopplerFactor = 1.0

	// airAbsorbGainHF is the high-frequency gain lost per meter at an air
	// absorption factor of 1.
	airAbsorbGainHF = 0.99426

	// hfReference and lfReference are the shelf corner frequencies, in
	// Hz, for the direct and send filters.
	hfReference = 5000.0
	lfReference = 250.0
)

// defaultBlockSize is the mixing block length in frames when the device
// configuration leaves it zero.
const defaultBlockSize = 1024
