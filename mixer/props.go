// SPDX-License-Identifier: EPL-2.0

package mixer

import "sync/atomic"

// propsNode wraps one snapshot value with free-list linkage so published
// records can be recycled without allocating in the steady state.
type propsNode[T any] struct {
	next atomic.Pointer[propsNode[T]]
	val  T
}

// mailbox is a per-entity single-slot publish channel. The control side
// stages a snapshot and swaps it into the pending slot; the mixer swaps the
// slot empty once per block and copies the value out. Replaced or consumed
// nodes go back on the free stack.
//
// The free stack push is safe from both sides concurrently. Pops only
// happen under publish, which is serialized per entity by the caller, so
// the pop needs no ABA defense.
type mailbox[T any] struct {
	pending atomic.Pointer[propsNode[T]]
	free    atomic.Pointer[propsNode[T]]
}

// acquire returns a node to fill, reusing a free one when available.
func (m *mailbox[T]) acquire() *propsNode[T] {
	n := m.free.Load()
	for n != nil {
		if m.free.CompareAndSwap(n, n.next.Load()) {
			n.next.Store(nil)

			return n
		}
		n = m.free.Load()
	}

	return &propsNode[T]{}
}

// release pushes a node back on the free stack.
func (m *mailbox[T]) release(n *propsNode[T]) {
	for {
		head := m.free.Load()
		n.next.Store(head)
		if m.free.CompareAndSwap(head, n) {
			return
		}
	}
}

// publish installs n as the pending snapshot, recycling any snapshot it
// replaces. Control side only.
func (m *mailbox[T]) publish(n *propsNode[T]) {
	if old := m.pending.Swap(n); old != nil {
		m.release(old)
	}
}

// take copies the pending snapshot into dst and reports whether one was
// present. Mixer side only.
func (m *mailbox[T]) take(dst *T) bool {
	n := m.pending.Swap(nil)
	if n == nil {
		return false
	}

	*dst = n.val
	m.release(n)

	return true
}

// freeCount reports the free-stack depth. Test hook for pool boundedness.
func (m *mailbox[T]) freeCount() int {
	count := 0
	for n := m.free.Load(); n != nil; n = n.next.Load() {
		count++
	}

	return count
}

// listenerProps is the published listener state.
type listenerProps struct {
	Position      [3]float32
	Velocity      [3]float32
	Forward       [3]float32
	Up            [3]float32
	Gain          float32
	MetersPerUnit float32
}

// contextProps is the published per-context state.
type contextProps struct {
	DopplerFactor       float32
	DopplerVelocity     float32
	SpeedOfSound        float32
	DistanceModel       DistanceModel
	SourceDistanceModel bool
}

// sendProps is one auxiliary routing of a source.
type sendProps struct {
	Slot   *EffectSlot
	Gain   float32
	GainHF float32
	GainLF float32
}

// sourceProps is the published per-source state consumed by the voice.
type sourceProps struct {
	Pitch     float32
	Gain      float32
	MinGain   float32
	MaxGain   float32
	Position  [3]float32
	Velocity  [3]float32
	Direction [3]float32

	InnerAngle  float32
	OuterAngle  float32
	OuterGain   float32
	OuterGainHF float32

	RefDistance float32
	MaxDistance float32
	Rolloff     float32

	DistanceModel DistanceModel

	DopplerFactor       float32
	AirAbsorptionFactor float32

	Radius    float32
	StereoPan [2]float32

	Relative bool
	Looping  bool

	// Direct-path filter.
	DirectGain   float32
	DirectGainHF float32
	DirectGainLF float32

	Resampler ResamplerType

	Sends [MaxSends]sendProps
}

// slotProps is the published per-effect-slot state.
type slotProps struct {
	Gain   float32
	Target *EffectSlot
	State  EffectState
	Effect EffectProps
}
