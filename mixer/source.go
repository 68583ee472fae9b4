// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync/atomic"
)

// Source is one controllable sound emitter. Parameter setters may be called
// at any time, including while playing; they take effect within one mixing
// block (or on the next ProcessUpdates while the context defers updates).
//
// A Source is not safe for concurrent use by multiple goroutines.
type Source struct {
	ctx *Context

	staged sourceProps
	dirty  atomic.Bool
	props  mailbox[sourceProps]

	state atomic.Int32
	voice atomic.Pointer[Voice]

	queue    []*Buffer
	channels int
	rate     int
}

// NewSource creates a source with neutral defaults: unity gain and
// pitch, omnidirectional, inverse-clamped attenuation bounds.
func (c *Context) NewSource() (*Source, error) {
	if !c.dev.Connected() {
		return nil, ErrDeviceDisconnected
	}

	s := &Source{
		ctx: c,
		staged: sourceProps{
			Pitch:         1,
			Gain:          1,
			MaxGain:       1,
			InnerAngle:    360,
			OuterAngle:    360,
			OuterGainHF:   1,
			RefDistance:   1,
			MaxDistance:   maxFloat32,
			Rolloff:       1,
			DistanceModel: DistanceInverseClamped,
			DopplerFactor: 1,
			StereoPan:     [2]float32{defaultStereoPanLeft, defaultStereoPanRight},
			DirectGain:    1,
			DirectGainHF:  1,
			DirectGainLF:  1,
			Resampler:     ResampleLinear,
		},
	}
	for i := range s.staged.Sends {
		s.staged.Sends[i] = sendProps{Gain: 0, GainHF: 1, GainLF: 1}
	}
	s.state.Store(int32(StateInitial))
	c.addSource(s)

	return s, nil
}

const maxFloat32 = 3.4028234663852886e38

// Default stereo channel pan angles, radians: +-30 degrees.
const (
	defaultStereoPanLeft  = -0.5235987755982988
	defaultStereoPanRight = 0.5235987755982988
)

// Destroy stops the source and unregisters it from its context.
func (s *Source) Destroy() {
	s.Stop()
	s.ctx.removeSource(s)
}

// State reports the source's play state.
func (s *Source) State() SourceState { return SourceState(s.state.Load()) }

// QueueBuffer appends b to the playback queue. All queued buffers must
// share a channel count and sample rate.
func (s *Source) QueueBuffer(b *Buffer) error {
	if b == nil || b.Frames() == 0 {
		return fmt.Errorf("%w: empty buffer", ErrInvalidValue)
	}
	if s.channels == 0 {
		s.channels = b.Channels()
		s.rate = b.SampleRate()
	} else if b.Channels() != s.channels || b.SampleRate() != s.rate {
		return fmt.Errorf("%w: queued %dch@%d on %dch@%d source",
			ErrFormatMismatch, b.Channels(), b.SampleRate(), s.channels, s.rate)
	}

	s.queue = append(s.queue, b)
	if v := s.voice.Load(); v != nil {
		q := make([]*Buffer, len(s.queue))
		copy(q, s.queue)
		v.queue.Store(&q)
	}

	return nil
}

// ClearBuffers empties the queue. Only valid while not playing or paused.
func (s *Source) ClearBuffers() error {
	st := s.State()
	if st == StatePlaying || st == StatePaused {
		return fmt.Errorf("%w: source is %s", ErrInvalidOperation, st)
	}

	s.queue = nil
	s.channels = 0
	s.rate = 0

	return nil
}

// Play starts (or restarts) playback from the head of the buffer queue. A
// paused source resumes instead.
func (s *Source) Play() error {
	if !s.ctx.dev.Connected() {
		return ErrDeviceDisconnected
	}
	if len(s.queue) == 0 {
		return fmt.Errorf("%w: no buffers queued", ErrInvalidOperation)
	}

	if v := s.voice.Load(); v != nil {
		if s.State() == StatePaused {
			v.state.Store(vPlaying)
			s.state.Store(int32(StatePlaying))

			return nil
		}

		// Restart: retire the old voice, then claim a fresh one.
		v.state.Store(vStopped)
		s.voice.Store(nil)
		s.ctx.dev.waitForMix()
	}

	v := s.ctx.claimVoice()
	v.reset(s)
	s.voice.Store(v)
	s.state.Store(int32(StatePlaying))
	v.state.Store(vPlaying)

	return nil
}

// Pause suspends playback, keeping the position.
func (s *Source) Pause() error {
	if s.State() != StatePlaying {
		return nil
	}

	if v := s.voice.Load(); v != nil {
		v.state.CompareAndSwap(vPlaying, vPaused)
	}
	s.state.Store(int32(StatePaused))

	return nil
}

// Stop ends playback. The voice fades out within one block; stopping a
// stopped source is a no-op.
func (s *Source) Stop() {
	st := s.State()
	if st != StatePlaying && st != StatePaused {
		// A source that ran its queue out keeps its last voice linked;
		// release it so the pool can reclaim.
		s.voice.Store(nil)

		return
	}

	if v := s.voice.Load(); v != nil {
		if st == StatePaused {
			v.state.Store(vStopped)
		} else {
			v.state.CompareAndSwap(vPlaying, vStopping)
		}
		// Unlink so the pool can reclaim the voice once it stops.
		s.voice.Store(nil)
	}
	s.state.Store(int32(StateStopped))
}

// SampleOffset reports the playback position in frames of source material,
// consistent with a completed mix block.
func (s *Source) SampleOffset() int64 {
	v := s.voice.Load()
	if v == nil {
		return 0
	}

	dev := s.ctx.dev
	for {
		c := dev.waitForMix()
		pos := v.position.Load()
		if dev.mixCount.Load() == c {
			return pos
		}
	}
}

// SetPosition places the source in world coordinates (listener-relative
// when SetRelative is enabled).
func (s *Source) SetPosition(x, y, z float32) {
	s.staged.Position = [3]float32{x, y, z}
	s.markDirty()
}

// SetVelocity sets the source velocity for the doppler model.
func (s *Source) SetVelocity(x, y, z float32) {
	s.staged.Velocity = [3]float32{x, y, z}
	s.markDirty()
}

// SetDirection sets the facing direction for cone attenuation. The zero
// vector makes the source omnidirectional.
func (s *Source) SetDirection(x, y, z float32) {
	s.staged.Direction = [3]float32{x, y, z}
	s.markDirty()
}

// SetPitch sets the playback rate multiplier.
func (s *Source) SetPitch(p float32) error {
	if p < 0 {
		return fmt.Errorf("%w: pitch %v", ErrInvalidValue, p)
	}

	s.staged.Pitch = p
	s.markDirty()

	return nil
}

// SetGain sets the source gain.
func (s *Source) SetGain(g float32) error {
	if g < 0 {
		return fmt.Errorf("%w: gain %v", ErrInvalidValue, g)
	}

	s.staged.Gain = g
	s.markDirty()

	return nil
}

// SetGainBounds clamps the distance-attenuated gain to [minGain, maxGain].
func (s *Source) SetGainBounds(minGain, maxGain float32) error {
	if minGain < 0 || maxGain < minGain || maxGain > 1 {
		return fmt.Errorf("%w: gain bounds [%v, %v]", ErrInvalidValue, minGain, maxGain)
	}

	s.staged.MinGain = minGain
	s.staged.MaxGain = maxGain
	s.markDirty()

	return nil
}

// SetCone configures directional attenuation. Angles are in degrees; the
// source is treated as omnidirectional while innerAngle is 360 or the
// direction is zero.
func (s *Source) SetCone(innerAngle, outerAngle, outerGain float32) error {
	if innerAngle < 0 || innerAngle > 360 || outerAngle < 0 || outerAngle > 360 {
		return fmt.Errorf("%w: cone angles %v/%v", ErrInvalidValue, innerAngle, outerAngle)
	}
	if outerGain < 0 || outerGain > 1 {
		return fmt.Errorf("%w: outer gain %v", ErrInvalidValue, outerGain)
	}

	s.staged.InnerAngle = innerAngle
	s.staged.OuterAngle = outerAngle
	s.staged.OuterGain = outerGain
	s.markDirty()

	return nil
}

// SetConeOuterGainHF sets the extra high-frequency attenuation outside the
// outer cone.
func (s *Source) SetConeOuterGainHF(g float32) error {
	if g < 0 || g > 1 {
		return fmt.Errorf("%w: outer gain hf %v", ErrInvalidValue, g)
	}

	s.staged.OuterGainHF = g
	s.markDirty()

	return nil
}

// SetDistanceParams sets the reference distance, maximum distance and
// rolloff factor of the attenuation model.
func (s *Source) SetDistanceParams(ref, maxDist, rolloff float32) error {
	if ref < 0 || maxDist < 0 || rolloff < 0 {
		return fmt.Errorf("%w: distance params %v/%v/%v", ErrInvalidValue, ref, maxDist, rolloff)
	}

	s.staged.RefDistance = ref
	s.staged.MaxDistance = maxDist
	s.staged.Rolloff = rolloff
	s.markDirty()

	return nil
}

// SetDistanceModel sets the per-source attenuation model, honored when the
// context enables source distance models.
func (s *Source) SetDistanceModel(m DistanceModel) error {
	if m < DistanceInverse || m > DistanceNone {
		return fmt.Errorf("%w: distance model %d", ErrInvalidValue, m)
	}

	s.staged.DistanceModel = m
	s.markDirty()

	return nil
}

// SetDopplerFactor scales the doppler effect for this source only.
func (s *Source) SetDopplerFactor(f float32) error {
	if f < 0 || f > 1 {
		return fmt.Errorf("%w: doppler factor %v", ErrInvalidValue, f)
	}

	s.staged.DopplerFactor = f
	s.markDirty()

	return nil
}

// SetAirAbsorptionFactor scales distance-based high frequency loss; zero
// disables it.
func (s *Source) SetAirAbsorptionFactor(f float32) error {
	if f < 0 || f > 10 {
		return fmt.Errorf("%w: air absorption factor %v", ErrInvalidValue, f)
	}

	s.staged.AirAbsorptionFactor = f
	s.markDirty()

	return nil
}

// SetRadius gives the source an apparent size, widening its image with
// proximity.
func (s *Source) SetRadius(r float32) error {
	if r < 0 {
		return fmt.Errorf("%w: radius %v", ErrInvalidValue, r)
	}

	s.staged.Radius = r
	s.markDirty()

	return nil
}

// SetStereoPan sets the pan angles, in radians, of a stereo source's left
// and right channels.
func (s *Source) SetStereoPan(left, right float32) {
	s.staged.StereoPan = [2]float32{left, right}
	s.markDirty()
}

// SetRelative interprets the source position, velocity and direction as
// listener-relative.
func (s *Source) SetRelative(rel bool) {
	s.staged.Relative = rel
	s.markDirty()
}

// SetLooping wraps the buffer queue instead of stopping at its end.
func (s *Source) SetLooping(loop bool) {
	s.staged.Looping = loop
	s.markDirty()
}

// SetDirectFilter attenuates the direct path: overall, high shelf and low
// shelf gains.
func (s *Source) SetDirectFilter(gain, gainHF, gainLF float32) error {
	if gain < 0 || gain > 1 || gainHF < 0 || gainHF > 1 || gainLF < 0 || gainLF > 1 {
		return fmt.Errorf("%w: filter gains %v/%v/%v", ErrInvalidValue, gain, gainHF, gainLF)
	}

	s.staged.DirectGain = gain
	s.staged.DirectGainHF = gainHF
	s.staged.DirectGainLF = gainLF
	s.markDirty()

	return nil
}

// SetSend routes the source into an auxiliary effect slot. A nil slot
// disconnects the send.
func (s *Source) SetSend(index int, slot *EffectSlot, gain, gainHF, gainLF float32) error {
	if index < 0 || index >= MaxSends {
		return fmt.Errorf("%w: send index %d", ErrInvalidValue, index)
	}
	if gain < 0 || gain > 1 || gainHF < 0 || gainHF > 1 || gainLF < 0 || gainLF > 1 {
		return fmt.Errorf("%w: send gains %v/%v/%v", ErrInvalidValue, gain, gainHF, gainLF)
	}

	s.staged.Sends[index] = sendProps{Slot: slot, Gain: gain, GainHF: gainHF, GainLF: gainLF}
	s.markDirty()

	return nil
}

// SetResampler selects the interpolation quality used when the source rate
// or pitch differs from the device rate.
func (s *Source) SetResampler(r ResamplerType) error {
	if r < ResamplePoint || r > ResampleCubic {
		return fmt.Errorf("%w: resampler %d", ErrInvalidValue, r)
	}

	s.staged.Resampler = r
	s.markDirty()

	return nil
}

func (s *Source) markDirty() {
	s.dirty.Store(true)
	s.commit(false)
}

func (s *Source) commit(force bool) {
	if !force && !s.dirty.CompareAndSwap(true, false) {
		return
	}
	if force {
		s.dirty.Store(false)
	}

	n := s.props.acquire()
	n.val = s.staged
	s.props.publish(n)
}
