// SPDX-License-Identifier: EPL-2.0

package aud3d

import "errors"

// ErrUnknownFormat indicates no decoder is registered for a format key.
var ErrUnknownFormat = errors.New("unknown audio format")
