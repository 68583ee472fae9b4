// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	// ErrInvalidDstSize is returned by ReadSamples when the destination
	// length is not a multiple of the stream's channel count.
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")
)
