// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF decoding on top of
// github.com/go-audio/aiff.
//
// AIFF is the big-endian cousin of WAV, common on Apple platforms and
// in audio production pipelines. The decoder accepts PCM at 8, 16, 24
// or 32 bits and returns an audio.Source yielding interleaved float32
// samples in [-1, 1]:
//
//	file, _ := os.Open("clip.aif")
//	src, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Non-seekable readers are buffered in memory before parsing, since
// the chunk walk needs to seek. AIFF-C compressed variants are not
// supported, and neither is encoding.
package aiff
