// SPDX-License-Identifier: EPL-2.0

package mixer

import "sync/atomic"

// EventType identifies an asynchronous notification from the mixer.
type EventType int

const (
	// EventSourceStateChanged reports a source whose play state changed
	// on the mixing side, such as reaching the end of its queue.
	EventSourceStateChanged EventType = iota
	// EventDisconnected reports a fatal device fault. Sent once.
	EventDisconnected
)

// Event is one asynchronous notification.
type Event struct {
	Type   EventType
	Source *Source
	State  SourceState
	Reason string
}

// eventQueue is a single-producer single-consumer ring. The mixer writes,
// the application drains. A full ring drops the event rather than blocking
// the audio path.
type eventQueue struct {
	ring  []Event
	mask  uint64
	write atomic.Uint64
	read  atomic.Uint64
}

func newEventQueue(size int) *eventQueue {
	n := 1
	for n < size {
		n <<= 1
	}

	return &eventQueue{
		ring: make([]Event, n),
		mask: uint64(n - 1),
	}
}

// push enqueues ev, reporting false when the ring is full.
func (q *eventQueue) push(ev Event) bool {
	w := q.write.Load()
	if w-q.read.Load() >= uint64(len(q.ring)) {
		return false
	}

	q.ring[w&q.mask] = ev
	q.write.Store(w + 1)

	return true
}

// pop dequeues the oldest event, reporting false when the ring is empty.
func (q *eventQueue) pop() (Event, bool) {
	r := q.read.Load()
	if r == q.write.Load() {
		return Event{}, false
	}

	ev := q.ring[r&q.mask]
	q.read.Store(r + 1)

	return ev, true
}
