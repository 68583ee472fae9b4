// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"sync/atomic"
)

// Listener is the point of view sounds are rendered from. One per context;
// obtained via Context.Listener.
type Listener struct {
	ctx *Context

	staged listenerProps
	dirty  atomic.Bool
	props  mailbox[listenerProps]

	// cur is the snapshot the mixer is currently using.
	cur listenerProps
}

func (l *Listener) init(ctx *Context) {
	l.ctx = ctx
	l.staged = listenerProps{
		Forward:       [3]float32{0, 0, -1},
		Up:            [3]float32{0, 1, 0},
		Gain:          1,
		MetersPerUnit: 1,
	}
	l.cur = l.staged
}

// SetPosition places the listener in world coordinates.
func (l *Listener) SetPosition(x, y, z float32) {
	l.staged.Position = [3]float32{x, y, z}
	l.markDirty()
}

// SetVelocity sets the listener's velocity for the doppler model, in units
// per second.
func (l *Listener) SetVelocity(x, y, z float32) {
	l.staged.Velocity = [3]float32{x, y, z}
	l.markDirty()
}

// SetOrientation sets the facing ("at") and up vectors. They need not be
// unit length but must not be parallel or zero.
func (l *Listener) SetOrientation(atX, atY, atZ, upX, upY, upZ float32) error {
	if (atX == 0 && atY == 0 && atZ == 0) || (upX == 0 && upY == 0 && upZ == 0) {
		return fmt.Errorf("%w: zero orientation vector", ErrInvalidValue)
	}

	l.staged.Forward = [3]float32{atX, atY, atZ}
	l.staged.Up = [3]float32{upX, upY, upZ}
	l.markDirty()

	return nil
}

// SetGain sets the master gain applied to every source.
func (l *Listener) SetGain(g float32) error {
	if g < 0 {
		return fmt.Errorf("%w: gain %v", ErrInvalidValue, g)
	}

	l.staged.Gain = g
	l.markDirty()

	return nil
}

// SetMetersPerUnit scales world units to meters for air absorption and
// near-field filtering.
func (l *Listener) SetMetersPerUnit(m float32) error {
	if m <= 0 {
		return fmt.Errorf("%w: meters per unit %v", ErrInvalidValue, m)
	}

	l.staged.MetersPerUnit = m
	l.markDirty()

	return nil
}

func (l *Listener) markDirty() {
	l.dirty.Store(true)
	l.commit(false)
}

func (l *Listener) commit(force bool) {
	if !force && !l.dirty.CompareAndSwap(true, false) {
		return
	}
	if force {
		l.dirty.Store(false)
	}

	n := l.props.acquire()
	n.val = l.staged
	l.props.publish(n)
}
