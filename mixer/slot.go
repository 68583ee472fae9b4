// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync/atomic"

	"github.com/ik5/aud3d/dsp"
)

// EffectState is the DSP contract an effect implementation fulfills. The
// core depends on nothing else about an effect.
//
// Update runs on the mixing goroutine when new slot parameters arrive and
// must not allocate or block. Process consumes the slot's accumulated wet
// input and adds its result into out; in and out hold one buffer per
// ambisonic channel.
type EffectState interface {
	Update(dev *Device, slot *EffectSlot, props *EffectProps)
	Process(frames int, in, out [][]float32)
}

// EffectProps carries the parameters of whichever effect is bound to a
// slot. Implementations read the fields they care about.
type EffectProps struct {
	// Reverb.
	Decay     float32
	Density   float32
	Diffusion float32
	GainHF    float32

	// Echo.
	Delay    float32
	LRDelay  float32
	Damping  float32
	Feedback float32
	Spread   float32
}

// EffectSlot is an auxiliary mixing bus: sources route a share of their
// signal into it, the bound effect processes the accumulated input, and the
// result feeds either the device output or another slot.
type EffectSlot struct {
	ctx *Context

	staged slotProps
	dirty  atomic.Bool
	props  mailbox[slotProps]

	// cur is the snapshot the mixer is using; wet is this slot's input
	// accumulation bus. scratch collects the bound effect's output so
	// the slot gain applies to it before it reaches the target bus.
	cur     slotProps
	wet     [dsp.AmbiChannels][]float32
	scratch [dsp.AmbiChannels][]float32

	// Reusable channel-slice views for the effect interface.
	inView  [dsp.AmbiChannels][]float32
	outView [dsp.AmbiChannels][]float32
}

// NewEffectSlot creates a slot on the context with unity gain and no bound
// effect.
func (c *Context) NewEffectSlot() (*EffectSlot, error) {
	if !c.dev.Connected() {
		return nil, ErrDeviceDisconnected
	}

	s := &EffectSlot{
		ctx:    c,
		staged: slotProps{Gain: 1},
	}
	s.cur = s.staged
	for i := range s.wet {
		s.wet[i] = make([]float32, c.dev.blockSize)
		s.scratch[i] = make([]float32, c.dev.blockSize)
	}

	c.addSlot(s)

	return s, nil
}

// Destroy removes the slot. Sources still sending to it must be rerouted
// first.
func (s *EffectSlot) Destroy() {
	s.ctx.removeSlot(s)
}

// SetEffect binds an effect implementation and its parameters. A nil state
// makes the slot pass its input through unprocessed.
func (s *EffectSlot) SetEffect(state EffectState, props EffectProps) {
	s.staged.State = state
	s.staged.Effect = props
	s.markDirty()
}

// SetEffectProps updates the bound effect's parameters.
func (s *EffectSlot) SetEffectProps(props EffectProps) {
	s.staged.Effect = props
	s.markDirty()
}

// SetGain scales the slot's output.
func (s *EffectSlot) SetGain(g float32) error {
	if g < 0 || g > 1 {
		return fmt.Errorf("%w: gain %v", ErrInvalidValue, g)
	}

	s.staged.Gain = g
	s.markDirty()

	return nil
}

// SetTarget chains the slot's output into another slot instead of the
// device output. Cycles are rejected.
func (s *EffectSlot) SetTarget(target *EffectSlot) error {
	for t := target; t != nil; t = t.staged.Target {
		if t == s {
			return fmt.Errorf("%w: effect slot target cycle", ErrInvalidOperation)
		}
	}

	s.staged.Target = target
	s.markDirty()

	return nil
}

func (s *EffectSlot) markDirty() {
	s.dirty.Store(true)
	s.commit(false)
}

func (s *EffectSlot) commit(force bool) {
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

// takeProps picks up new parameters and runs the bound effect's Update.
// Mixer side.
func (s *EffectSlot) takeProps(c *Context) {
	if !s.props.take(&s.cur) {
		return
	}

	if s.cur.State != nil {
		s.cur.State.Update(c.dev, s, &s.cur.Effect)
	}
}

func (s *EffectSlot) clearWet(frames int) {
	for i := range s.wet {
		clear(s.wet[i][:frames])
	}
}

// process runs the bound effect over the slot's wet input, adding the
// output into the target slot's input or the device dry bus.
func (s *EffectSlot) process(c *Context, frames int) {
	var out [dsp.AmbiChannels][]float32
	if t := s.cur.Target; t != nil {
		out = t.wet
	} else {
		out = c.dev.dry
	}

	g := s.cur.Gain

	if s.cur.State != nil {
		if g == 1 {
			s.cur.State.Process(frames, s.wetSlices(frames), s.outSlices(out, frames))

			return
		}

		// The effect adds into its out buffers, so it runs on a cleared
		// scratch bus and the slot gain scales what it produced.
		for i := range s.scratch {
			clear(s.scratch[i][:frames])
		}
		s.cur.State.Process(frames, s.wetSlices(frames), s.outSlices(s.scratch, frames))
		for ch := range s.scratch {
			dst := out[ch][:frames]
			src := s.scratch[ch][:frames]
			for i := range src {
				dst[i] += src[i] * g
			}
		}

		return
	}

	// Pass-through slot: apply the slot gain only.
	for ch := range s.wet {
		dst := out[ch][:frames]
		src := s.wet[ch][:frames]
		for i := range src {
			dst[i] += src[i] * g
		}
	}
}

// wetSlices and outSlices adapt fixed-size channel arrays to the effect
// interface without allocating per block.
func (s *EffectSlot) wetSlices(frames int) [][]float32 {
	for i := range s.wet {
		s.inView[i] = s.wet[i][:frames]
	}

	return s.inView[:]
}

func (s *EffectSlot) outSlices(out [dsp.AmbiChannels][]float32, frames int) [][]float32 {
	for i := range out {
		s.outView[i] = out[i][:frames]
	}

	return s.outView[:]
}

// orderSlots rebuilds the processing order: every slot is placed before the
// first already-placed slot reachable from it through target links, so a
// slot always runs before anything it feeds.
func (c *Context) orderSlots() []*EffectSlot {
	live := *c.slots.Load()
	scratch := *c.sortedSlots.Load()
	scratch = scratch[:0]

	for _, s := range live {
		pos := len(scratch)
		for i, placed := range scratch {
			if s.feeds(placed) {
				pos = i

				break
			}
		}
		scratch = append(scratch, nil)
		copy(scratch[pos+1:], scratch[pos:])
		scratch[pos] = s
	}

	return scratch
}

// feeds reports whether s routes into t, directly or through a chain.
func (s *EffectSlot) feeds(t *EffectSlot) bool {
	for n := s.cur.Target; n != nil; n = n.cur.Target {
		if n == t {
			return true
		}
	}

	return false
}
