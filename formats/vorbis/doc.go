// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis decoding on top of
// github.com/jfreymuth/oggvorbis.
//
// The decoder returns an audio.Source yielding interleaved float32
// samples in [-1, 1], at the file's native channel count and sample
// rate:
//
//	file, _ := os.Open("clip.ogg")
//	src, err := vorbis.Decoder{}.Decode(file)
//	if err != nil {
//	    // not an Ogg Vorbis stream
//	}
//	buf := make([]float32, 4096)
//	n, err := src.ReadSamples(buf)
//
// Vorbis is a common shipping format for game assets, which is the
// main reason it is wired into the format registry here. Encoding is
// not supported.
package vorbis
