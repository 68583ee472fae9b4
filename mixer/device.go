// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/ik5/aud3d/dsp"
)

// DeviceConfig describes the output of a Device. The zero value of optional
// fields selects sensible defaults.
type DeviceConfig struct {
	// SampleRate in Hz. Required.
	SampleRate int
	// Layout is the speaker arrangement.
	Layout ChannelLayout
	// Sample is the encoding Mix writes.
	Sample SampleType
	// Render selects the spatial decode stage. RenderHrtf, RenderUhj and
	// RenderBs2b require LayoutStereo.
	Render RenderMode
	// BlockSize is the internal mixing block in frames. Defaults to 1024.
	BlockSize int

	// StabilizeFront enables the center-image stabilizer. Only effective
	// on layouts with a physical center speaker.
	StabilizeFront bool
	// Limiter enables the output peak limiter.
	Limiter bool
	// Dither enables triangular dither before integer quantization.
	Dither bool

	// SpeakerDistances, in meters per output channel, enables per-channel
	// distance compensation delay and gain.
	SpeakerDistances []float32
	// NfcReferenceDistance, in meters, enables near-field compensation
	// filtering of spatialized sources relative to this speaker distance.
	NfcReferenceDistance float32

	// EventQueueSize bounds the async notification ring. Defaults to 64.
	EventQueueSize int
}

// Device owns the output format, the mixing buses and the post-processing
// pipeline. A backend drives it by calling Mix once per period; all other
// methods are control-side.
type Device struct {
	cfg         DeviceConfig
	sampleRate  int
	blockSize   int
	outChannels int

	// mixCount parity marks a block mix in progress (odd = mixing).
	mixCount  atomic.Uint32
	connected atomic.Bool

	contexts atomic.Pointer[[]*Context]

	// structural serializes control-side structural changes; never taken
	// on the mixing path.
	structural sync.Mutex

	events *eventQueue

	hrtf dsp.Hrtf

	// Mixing buses, audio-side only.
	dry      [dsp.AmbiChannels][]float32
	binaural [2][]float32
	spk      [][]float32
	scratch  mixScratch

	post *postProcessor

	nfcW1 float32
}

// mixScratch is per-device working memory for the voice mixer.
type mixScratch struct {
	resampled []float32
	filtered  []float32
	nearField []float32
}

// Open creates a device. The device starts connected; a backend reporting a
// fatal fault calls Disconnect.
func Open(cfg DeviceConfig) (*Device, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidValue, cfg.SampleRate)
	}

	outChannels := cfg.Layout.Channels()
	if outChannels == 0 {
		return nil, fmt.Errorf("%w: unknown layout", ErrInvalidValue)
	}
	if cfg.Render != RenderSpeakers && cfg.Layout != LayoutStereo {
		return nil, fmt.Errorf("%w: render mode requires stereo layout", ErrInvalidValue)
	}
	if cfg.Sample.Bytes() == 0 {
		return nil, fmt.Errorf("%w: unknown sample type", ErrInvalidValue)
	}
	if len(cfg.SpeakerDistances) != 0 && len(cfg.SpeakerDistances) != outChannels {
		return nil, fmt.Errorf("%w: %d speaker distances for %d channels",
			ErrInvalidValue, len(cfg.SpeakerDistances), outChannels)
	}

	if cfg.BlockSize <= 0 {
		cfg.BlockSize = defaultBlockSize
	}
	if cfg.EventQueueSize <= 0 {
		cfg.EventQueueSize = 64
	}

	d := &Device{
		cfg:         cfg,
		sampleRate:  cfg.SampleRate,
		blockSize:   cfg.BlockSize,
		outChannels: outChannels,
		events:      newEventQueue(cfg.EventQueueSize),
	}
	d.connected.Store(true)

	empty := make([]*Context, 0)
	d.contexts.Store(&empty)

	for i := range d.dry {
		d.dry[i] = make([]float32, d.blockSize)
	}
	d.spk = make([][]float32, outChannels)
	for i := range d.spk {
		d.spk[i] = make([]float32, d.blockSize)
	}
	d.scratch = mixScratch{
		resampled: make([]float32, d.blockSize),
		filtered:  make([]float32, d.blockSize),
		nearField: make([]float32, d.blockSize),
	}

	if cfg.Render == RenderHrtf {
		d.binaural[0] = make([]float32, d.blockSize)
		d.binaural[1] = make([]float32, d.blockSize)
		d.hrtf = dsp.NewSphericalHrtf(cfg.SampleRate)
	}

	if cfg.NfcReferenceDistance > 0 {
		d.nfcW1 = speedOfSoundMeters / (cfg.NfcReferenceDistance * float32(cfg.SampleRate))
	}

	d.post = newPostProcessor(d)

	return d, nil
}

// speedOfSoundMeters is the reference sound speed used where a value in
// meters per second is needed regardless of the listener's unit scale.
const speedOfSoundMeters = 343.3

// SampleRate reports the output rate in Hz.
func (d *Device) SampleRate() int { return d.sampleRate }

// Channels reports the output channel count.
func (d *Device) Channels() int { return d.outChannels }

// BlockSize reports the internal mixing block in frames.
func (d *Device) BlockSize() int { return d.blockSize }

// Sample reports the output sample encoding.
func (d *Device) Sample() SampleType { return d.cfg.Sample }

// FrameBytes reports the encoded size of one output frame.
func (d *Device) FrameBytes() int { return d.outChannels * d.cfg.Sample.Bytes() }

// Connected reports whether the device is still live.
func (d *Device) Connected() bool { return d.connected.Load() }

// PollEvent drains one asynchronous notification, reporting false when none
// is pending.
func (d *Device) PollEvent() (Event, bool) { return d.events.pop() }

// waitForMix spins until the fence parity reports no block mix in flight
// and returns the observed count. Callers needing a consistent read repeat
// their read until the count is unchanged.
func (d *Device) waitForMix() uint32 {
	c := d.mixCount.Load()
	for c&1 != 0 {
		runtime.Gosched()
		c = d.mixCount.Load()
	}

	return c
}

// addContext installs ctx into the live list.
func (d *Device) addContext(ctx *Context) {
	d.structural.Lock()
	defer d.structural.Unlock()

	old := *d.contexts.Load()
	next := make([]*Context, len(old)+1)
	copy(next, old)
	next[len(old)] = ctx
	d.contexts.Store(&next)
}

// removeContext takes ctx out of the live list and waits out any in-flight
// mix so the mixer cannot still be iterating the context's state.
func (d *Device) removeContext(ctx *Context) {
	d.structural.Lock()
	defer d.structural.Unlock()

	old := *d.contexts.Load()
	next := make([]*Context, 0, len(old))
	for _, c := range old {
		if c != ctx {
			next = append(next, c)
		}
	}
	d.contexts.Store(&next)
	d.waitForMix()
}

// Disconnect marks the device as failed, force-stops every voice in every
// context and enqueues a one-shot notification. Safe against an in-flight
// mix; after it returns the device mixes silence.
func (d *Device) Disconnect(reason string) {
	if !d.connected.CompareAndSwap(true, false) {
		return
	}

	d.structural.Lock()
	defer d.structural.Unlock()

	// A block that could still see the device as connected holds the
	// fence odd; once the fence reads even, every later block observes
	// the disconnect and skips voice and event work.
	d.waitForMix()

	for _, ctx := range *d.contexts.Load() {
		for _, v := range *ctx.voices.Load() {
			if v.state.Load() == vStopped {
				continue
			}
			v.state.Store(vStopped)
			if src := v.source; src != nil {
				src.state.Store(int32(StateStopped))
				d.events.push(Event{
					Type:   EventSourceStateChanged,
					Source: src,
					State:  StateStopped,
				})
			}
		}
	}

	d.events.push(Event{Type: EventDisconnected, Reason: reason})
}

// Mix renders frames of output into dst in the configured sample type,
// interleaved. dst must hold frames*FrameBytes() bytes. This is the audio
// thread entry point; exactly one goroutine may call it.
func (d *Device) Mix(dst []byte, frames int) error {
	if frames < 0 || len(dst) < frames*d.FrameBytes() {
		return fmt.Errorf("%w: output buffer too small", ErrInvalidValue)
	}

	for frames > 0 {
		n := min(frames, d.blockSize)
		d.mixBlock(n)
		dst = d.post.pack(dst, d.spk, n)
		frames -= n
	}

	return nil
}

// mixBlock renders one block into the speaker buffers.
func (d *Device) mixBlock(frames int) {
	for i := range d.dry {
		clear(d.dry[i][:frames])
	}
	if d.binaural[0] != nil {
		clear(d.binaural[0][:frames])
		clear(d.binaural[1][:frames])
	}
	for i := range d.spk {
		clear(d.spk[i][:frames])
	}

	// The fence goes odd before the connected check, so Disconnect can
	// never observe an idle fence between the check and the mix work.
	d.mixCount.Add(1)
	if d.connected.Load() {
		for _, ctx := range *d.contexts.Load() {
			ctx.mixBlock(frames)
		}
	}
	d.mixCount.Add(1)

	if !d.connected.Load() {
		return
	}

	d.post.process(d, frames)
}
