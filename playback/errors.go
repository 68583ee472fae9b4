// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	// ErrUnsupportedSampleType indicates the device output format has
	// no oto equivalent.
	ErrUnsupportedSampleType = errors.New("sample type not supported for playback")

	// ErrPlayerClosed indicates the player was already closed.
	ErrPlayerClosed = errors.New("player closed")
)
