// SPDX-License-Identifier: EPL-2.0

// Package wav provides WAV decoding and a small PCM-16 writer.
//
// Decoding is built on github.com/go-audio/wav and accepts PCM files
// at 8, 16, 24 or 32 bits, mono or multi-channel, at any sample rate.
// The decoder returns an audio.Source yielding interleaved float32
// samples in [-1, 1]:
//
//	file, _ := os.Open("clip.wav")
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // ErrNotWavFile, ErrUnsupportedWavLayout, ErrUnsupportedBitDepth
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Non-seekable readers are buffered in memory before parsing, since
// the chunk walk needs to seek.
//
// WriteWAV16 goes the other way: it serializes mono int16 PCM with a
// standard 44-byte header, writing in fixed-size chunks so large
// renders do not balloon allocations. It is the golden-file format
// used by the engine's offline render tests.
package wav
