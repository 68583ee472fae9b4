// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 decoding on top of
// github.com/hajimehoshi/go-mp3.
//
// The decoder returns an audio.Source yielding interleaved float32
// samples in [-1, 1]. Output is always stereo at the file's native
// sample rate; run it through audio.NewMonoMixer to feed a spatialized
// mono source:
//
//	file, _ := os.Open("clip.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
//	if err != nil {
//	    // not an MP3 stream
//	}
//	mono := audio.NewMonoMixer(src)
//
// Encoding is not supported.
package mp3
