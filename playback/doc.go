// SPDX-License-Identifier: EPL-2.0

// Package playback connects a mixer device to the system audio output
// via github.com/ebitengine/oto.
//
// The oto backend pulls from the device on its own goroutine, which
// becomes the engine's mix thread:
//
//	dev, _ := mixer.Open(mixer.DeviceConfig{
//	    SampleRate: 48000,
//	    Layout:     mixer.LayoutStereo,
//	    Sample:     mixer.SampleFloat32,
//	})
//	player, err := playback.NewPlayer(dev, 20*time.Millisecond)
//	if err != nil {
//	    // no audio output available
//	}
//	player.Start()
//	defer player.Close()
//
// Float32, int16 and uint8 device formats map directly onto oto
// formats; int32 output is offline-only.
package playback
