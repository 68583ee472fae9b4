// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/aud3d/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation over a sliding four-frame window. Works on interleaved
// samples and preserves the channel count.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64
	channels int

	// window[0..3] hold frames t-1, t0, t+1, t+2.
	window [4][]float32
	valid  [4]bool
	primed bool

	pos  float64
	eof  bool
	tmp  []float32
}

// NewResampler wraps src, producing samples at dstRate.
func NewResampler(src Source, dstRate int) *Resampler {
	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		ratio:    float64(src.SampleRate()) / float64(dstRate),
		channels: src.Channels(),
		tmp:      make([]float32, src.Channels()),
	}
	for i := range r.window {
		r.window[i] = make([]float32, r.channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// shift advances the window by one source frame.
func (r *Resampler) shift() error {
	copy(r.window[0], r.window[1])
	copy(r.window[1], r.window[2])
	copy(r.window[2], r.window[3])
	r.valid[0], r.valid[1], r.valid[2] = r.valid[1], r.valid[2], r.valid[3]

	if r.eof {
		// Pad by repeating the last frame so interpolation can run
		// out the tail, then let the window drain.
		copy(r.window[3], r.window[2])
		r.valid[3] = false

		return nil
	}

	n, err := r.src.ReadSamples(r.tmp)
	if n > 0 {
		copy(r.window[3], r.tmp[:n])
		r.valid[3] = true
	} else {
		copy(r.window[3], r.window[2])
	}
	if err == io.EOF {
		r.eof = true

		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (r *Resampler) prime() error {
	for i := 1; i < 4; i++ {
		n, err := r.src.ReadSamples(r.tmp)
		if n > 0 {
			copy(r.window[i], r.tmp[:n])
			r.valid[i] = true
		}
		if err == io.EOF {
			r.eof = true

			break
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	// The leading edge mirrors the first frame.
	copy(r.window[0], r.window[1])
	r.valid[0] = r.valid[1]
	r.primed = true

	return nil
}

// ReadSamples produces samples at the target rate. dst length must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
		if !r.valid[1] {
			return 0, io.EOF
		}
	}

	written := 0
	frames := len(dst) / r.channels

	for written < frames {
		for r.pos >= 1.0 {
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.valid[1] || !r.valid[2] {
			if written == 0 {
				return 0, io.EOF
			}

			return written * r.channels, io.EOF
		}

		x := float32(r.pos)
		base := written * r.channels
		for c := range r.channels {
			dst[base+c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
