// Package lightsync defines a single-slot notification queue for handing the
// latest state from a producer goroutine to its consumers.
package lightsync

import (
	"context"
	"sync"
)

// A Queue is a level-triggered single-value buffer shared by producers and
// consumers. A producer calls [Queue.Send] to make a value available, and a
// consumer calls [Queue.Recv] or reads from [Queue.Ready] to obtain the most
// recently-sent value.
//
// Sending a value to the queue does not block: If a value is already
// buffered, it is discarded and replaced by the new one, so only the latest
// value sent is ever observable. Each buffered value is delivered to exactly
// one consumer; once it has been consumed, the queue is empty and consumers
// block until the next Send.
//
// A Queue must be constructed with [NewQueue].
type Queue[T any] struct {
	μ  sync.Mutex // serializes senders
	ch chan T
}

// NewQueue constructs a new empty queue.
func NewQueue[T any]() *Queue[T] { return &Queue[T]{ch: make(chan T, 1)} }

// Send buffers v, discarding any value that was buffered but not yet
// consumed, and reports whether such a value was discarded. Send does not
// block, and wakes at most one pending receiver.
func (q *Queue[T]) Send(v T) bool {
	q.μ.Lock()
	defer q.μ.Unlock()

	select {
	case q.ch <- v:
		return false
	default:
	}

	// The buffer is full. Drain it, unless a receiver beat us to it; either
	// way it is empty afterward, and only senders fill it.
	var replaced bool
	select {
	case <-q.ch:
		replaced = true
	default:
	}
	q.ch <- v
	return replaced
}

// Recv blocks until a value is available or ctx ends. If a value is
// available, Recv removes and returns it with a nil error. Otherwise it
// returns a zero value and the error that ended ctx.
func (q *Queue[T]) Recv(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Ready returns a channel that delivers a value when one is available. Once a
// value is received, further reads on the channel will block until another
// value is sent.
func (q *Queue[T]) Ready() <-chan T { return q.ch }

// Pending reports whether a value is buffered. The result is advisory, since
// a concurrent Send or Recv may change it immediately.
func (q *Queue[T]) Pending() bool { return len(q.ch) != 0 }
