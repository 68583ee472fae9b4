// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains a source into non-interleaved per-channel sample slices,
// suitable for loading into a mixer buffer.
func ReadAll(src Source) ([][]float32, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("%w", ErrInvalidDstSize)
	}

	data := make([][]float32, channels)
	buf := make([]float32, src.BufSize())
	if len(buf) == 0 {
		buf = make([]float32, 4096)
	}

	for {
		n, err := src.ReadSamples(buf)
		frames := n / channels
		for f := range frames {
			for c := range channels {
				data[c] = append(data[c], buf[f*channels+c])
			}
		}

		if err == io.EOF {
			return data, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
	}
}
