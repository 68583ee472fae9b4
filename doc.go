// SPDX-License-Identifier: EPL-2.0

// Package aud3d is a real-time positional audio engine.
//
// The engine mixes dozens of sources into a spatialized output stream:
// each source carries a position, velocity, orientation and filter
// state in 3D space, and the mixer renders them relative to a movable
// listener with distance attenuation, doppler shift, cone directivity
// and an effect send chain. Rendering targets speakers (mono through
// 7.1), headphones (HRTF or crossfeed) or an ambisonic UHJ stream.
//
// # Layout
//
// The heavy lifting lives in the subpackages:
//
//   - mixer: devices, contexts, listeners, sources, effect slots and
//     the lock-free control/render split between them
//   - effects: reverb and echo processors for effect slots
//   - dsp: filters, ambisonic panning, HRTF and the output limiter
//   - audio: decoder interfaces, streaming resampler and downmixer
//   - formats: WAV, AIFF, MP3 and Ogg Vorbis decoders
//   - playback: speaker output via ebitengine/oto
//
// This package ties them together with loading helpers.
//
// # Quick Start
//
//	dev, _ := mixer.Open(mixer.DeviceConfig{
//	    SampleRate: 48000,
//	    Layout:     mixer.LayoutStereo,
//	    Sample:     mixer.SampleFloat32,
//	})
//	ctx, _ := mixer.NewContext(dev)
//
//	file, _ := os.Open("shot.wav")
//	buf, _ := aud3d.LoadBuffer(aud3d.DefaultRegistry(), "wav", file)
//
//	src, _ := ctx.NewSource()
//	src.QueueBuffer(buf)
//	src.SetPosition(4, 0, -2)
//	src.Play()
//
// Drive dev.Mix from an output callback, or hand the device to
// playback.NewPlayer to let oto pull from it.
package aud3d
