// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// voiceGrowStep is the pool growth increment.
const voiceGrowStep = 16

// Context owns a listener, a voice pool and a set of effect slots on one
// device. Several contexts may share a device; each mixes independently
// into the device buses.
type Context struct {
	dev *Device

	listener Listener

	staged contextProps
	dirty  atomic.Bool
	props  mailbox[contextProps]

	// holdUpdates defers parameter visibility; updateCount parity marks
	// the mixer's parameter phase for ProcessUpdates to wait out.
	holdUpdates atomic.Bool
	updateCount atomic.Uint32

	voices atomic.Pointer[[]*Voice]
	slots  atomic.Pointer[[]*EffectSlot]

	// sortedSlots is the mixer-owned processing order, rebuilt each
	// block. Capacity is managed control-side at membership changes.
	sortedSlots atomic.Pointer[[]*EffectSlot]

	// Control-side registries, never touched by the mixer.
	mu      sync.Mutex
	sources []*Source

	// cur holds the snapshot the mixer is currently using.
	cur contextProps
}

// NewContext creates a context on dev with default listener and doppler
// parameters.
func NewContext(dev *Device) (*Context, error) {
	if !dev.Connected() {
		return nil, ErrDeviceDisconnected
	}

	c := &Context{
		dev: dev,
		staged: contextProps{
			DopplerFactor:   DefaultDopplerFactor,
			DopplerVelocity: 1,
			SpeedOfSound:    DefaultSpeedOfSound,
			DistanceModel:   DistanceInverseClamped,
		},
	}
	c.cur = c.staged
	c.listener.init(c)

	voices := make([]*Voice, 0)
	c.voices.Store(&voices)
	slots := make([]*EffectSlot, 0)
	c.slots.Store(&slots)
	sorted := make([]*EffectSlot, 0)
	c.sortedSlots.Store(&sorted)

	dev.addContext(c)

	return c, nil
}

// Destroy removes the context from its device. Sources and slots created on
// it must not be used afterwards.
func (c *Context) Destroy() {
	c.dev.removeContext(c)
}

// Device reports the owning device.
func (c *Context) Device() *Device { return c.dev }

// Listener gives access to the context's listener parameters.
func (c *Context) Listener() *Listener { return &c.listener }

// SetDistanceModel selects the context-wide attenuation model.
func (c *Context) SetDistanceModel(m DistanceModel) error {
	if m < DistanceInverse || m > DistanceNone {
		return fmt.Errorf("%w: distance model %d", ErrInvalidValue, m)
	}

	c.staged.DistanceModel = m
	c.markDirty()

	return nil
}

// SetSourceDistanceModel lets each source's own model override the
// context's when enabled.
func (c *Context) SetSourceDistanceModel(enabled bool) {
	c.staged.SourceDistanceModel = enabled
	c.markDirty()
}

// SetDopplerFactor scales the doppler pitch effect; zero disables it.
func (c *Context) SetDopplerFactor(f float32) error {
	if f < 0 {
		return fmt.Errorf("%w: doppler factor %v", ErrInvalidValue, f)
	}

	c.staged.DopplerFactor = f
	c.markDirty()

	return nil
}

// SetSpeedOfSound sets the propagation speed used by the doppler model, in
// units per second.
func (c *Context) SetSpeedOfSound(s float32) error {
	if s <= 0 {
		return fmt.Errorf("%w: speed of sound %v", ErrInvalidValue, s)
	}

	c.staged.SpeedOfSound = s
	c.markDirty()

	return nil
}

func (c *Context) markDirty() {
	c.dirty.Store(true)
	c.commit(false)
}

// commit publishes the staged snapshot when dirty. force republishes even
// when clean, used by the deferred-update flush.
func (c *Context) commit(force bool) {
	if !force && !c.dirty.CompareAndSwap(true, false) {
		return
	}
	if force {
		c.dirty.Store(false)
	}

	n := c.props.acquire()
	n.val = c.staged
	c.props.publish(n)
}

// DeferUpdates holds parameter visibility: entities keep mixing with the
// targets they had when the hold began until ProcessUpdates is called.
func (c *Context) DeferUpdates() {
	c.holdUpdates.Store(true)
}

// ProcessUpdates releases a hold. It waits out the mixer's parameter phase,
// republishes the current parameters of every live entity and then lifts
// the hold, so every change made during the hold is visible to the very
// next block.
func (c *Context) ProcessUpdates() {
	if !c.holdUpdates.Load() {
		return
	}

	for c.updateCount.Load()&1 != 0 {
		runtime.Gosched()
	}

	c.commit(true)
	c.listener.commit(true)

	c.mu.Lock()
	for _, s := range c.sources {
		s.commit(true)
	}
	c.mu.Unlock()

	for _, slot := range *c.slots.Load() {
		slot.commit(true)
	}

	c.holdUpdates.Store(false)
}

// addSource registers a source for the deferred-update flush.
func (c *Context) addSource(s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sources = append(c.sources, s)
}

func (c *Context) removeSource(s *Source) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, x := range c.sources {
		if x == s {
			c.sources = append(c.sources[:i], c.sources[i+1:]...)

			break
		}
	}
}

// claimVoice finds a stopped voice or grows the pool. Control side.
func (c *Context) claimVoice() *Voice {
	c.dev.structural.Lock()
	defer c.dev.structural.Unlock()

	pool := *c.voices.Load()
	for _, v := range pool {
		if v.state.Load() != vStopped {
			continue
		}
		// A voice still linked from its source's live voice pointer is
		// not reclaimable; everything else stopped is.
		if src := v.source; src != nil && src.voice.Load() == v {
			continue
		}

		// An in-flight block may still be retiring this voice.
		c.dev.waitForMix()

		return v
	}

	next := make([]*Voice, len(pool), len(pool)+voiceGrowStep)
	copy(next, pool)
	for range voiceGrowStep {
		next = append(next, newVoice(c.dev))
	}
	c.voices.Store(&next)

	// The old slice may still be under iteration by the mixer; it is
	// garbage collected once the mixer moves to the new one. The fence
	// wait only guards the claim below from racing a mix over the old
	// pool's free voice.
	c.dev.waitForMix()

	return next[len(pool)]
}

// addSlot installs a new effect slot and refreshes the order scratch.
func (c *Context) addSlot(s *EffectSlot) {
	c.dev.structural.Lock()
	defer c.dev.structural.Unlock()

	old := *c.slots.Load()
	next := make([]*EffectSlot, len(old)+1)
	copy(next, old)
	next[len(old)] = s
	c.slots.Store(&next)

	scratch := make([]*EffectSlot, 0, len(next))
	c.sortedSlots.Store(&scratch)
}

// removeSlot uninstalls a slot and waits out the mixer before the slot's
// buffers can be reused.
func (c *Context) removeSlot(s *EffectSlot) {
	c.dev.structural.Lock()
	defer c.dev.structural.Unlock()

	old := *c.slots.Load()
	next := make([]*EffectSlot, 0, len(old))
	for _, x := range old {
		if x != s {
			next = append(next, x)
		}
	}
	c.slots.Store(&next)

	scratch := make([]*EffectSlot, 0, len(next))
	c.sortedSlots.Store(&scratch)

	c.dev.waitForMix()
}

// mixBlock runs the context's slice of one device block: parameter pickup,
// voice mixing and effect processing. Audio side.
func (c *Context) mixBlock(frames int) {
	held := c.holdUpdates.Load()
	voices := *c.voices.Load()

	c.updateCount.Add(1)
	if !held {
		c.props.take(&c.cur)
		c.listener.props.take(&c.listener.cur)
		for _, slot := range *c.slots.Load() {
			slot.takeProps(c)
		}
		for _, v := range voices {
			if st := v.state.Load(); st == vPlaying || st == vStopping {
				v.takeProps()
			}
		}
	}
	slots := c.orderSlots()
	c.updateCount.Add(1)

	for _, slot := range slots {
		slot.clearWet(frames)
	}

	for _, v := range voices {
		v.mix(c, frames)
	}

	for _, slot := range slots {
		slot.process(c, frames)
	}
}
