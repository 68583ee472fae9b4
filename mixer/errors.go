// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrInvalidValue reports a parameter outside its documented range.
	ErrInvalidValue = errors.New("invalid parameter value")
	// ErrInvalidOperation reports a call that is not valid in the
	// entity's current state.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrDeviceDisconnected reports an operation on a disconnected device.
	ErrDeviceDisconnected = errors.New("device disconnected")
	// ErrFormatMismatch reports a queued buffer whose channel count or
	// rate conflicts with buffers already queued on the source.
	ErrFormatMismatch = errors.New("buffer format mismatch")
)
