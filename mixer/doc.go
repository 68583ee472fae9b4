// SPDX-License-Identifier: EPL-2.0

// Package mixer implements a real-time 3D audio rendering core. It mixes a
// set of independently-controlled sources into periodic blocks of interleaved
// output samples, applying distance, doppler and cone attenuation,
// directional panning over a first-order ambisonic bus, optional binaural
// (HRTF) rendering, and auxiliary effect-slot routing.
//
// # Threads
//
// The package distinguishes two roles. Control code (any application
// goroutine) creates devices, contexts and sources and changes their
// parameters at arbitrary times. The audio goroutine calls Device.Mix once
// per block, typically driven by a playback backend. The mixing path holds
// no locks, performs no allocation after warm-up, and never waits on control
// code. Parameter changes travel through per-entity single-slot mailboxes:
// setters stage values and mark the entity dirty; the next commit publishes
// an immutable snapshot which the mixer picks up at the top of its block.
//
// Structural changes (adding a context, growing a voice pool) install new
// slices atomically and then wait for the device's mix counter to report an
// idle parity before retiring per-voice state, so the mixer never iterates a
// structure mid-replacement.
//
// Per-source control calls are not synchronized against each other; if an
// application drives one source from several goroutines it must serialize
// those calls itself.
//
// # Typical use
//
//	dev, _ := mixer.Open(mixer.DeviceConfig{SampleRate: 48000, Layout: mixer.LayoutStereo})
//	ctx, _ := mixer.NewContext(dev)
//	src, _ := ctx.NewSource()
//	src.QueueBuffer(buf)
//	src.SetPosition(0, 0, -2)
//	src.Play()
//	// backend loop:
//	dev.Mix(out, frames)
package mixer
