package refresh

import (
	"context"
	"sync"

	"github.com/viant/cookiejwt"
)

// Waiter represents a request parked behind an in-flight renewal
type Waiter struct {
	Request *cookiejwt.Request
	err     error
	done    chan struct{}
	once    sync.Once
}

// NewWaiter creates a new waiter
func NewWaiter(request *cookiejwt.Request) *Waiter {
	return &Waiter{
		Request: request,
		done:    make(chan struct{}),
	}
}

// Wait waits for the renewal outcome; it returns the renewal error, or ctx.Err() if ctx ends first
func (w *Waiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return w.err
	}
}

// Resolve releases the waiter to replay its request
func (w *Waiter) Resolve() {
	w.settle(nil)
}

// Reject releases the waiter with the renewal error
func (w *Waiter) Reject(err error) {
	w.settle(err)
}

// Done returns a channel closed once the waiter settles
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

func (w *Waiter) settle(err error) {
	w.once.Do(func() {
		w.err = err
		close(w.done)
	})
}

// Queue represents waiters awaiting one renewal. It is not safe for concurrent use; the coordinator guards it.
type Queue struct {
	waiters  []*Waiter
	capacity int
}

// NewQueue creates a queue; capacity <= 0 means unbounded
func NewQueue(capacity int) *Queue {
	return &Queue{capacity: capacity}
}

// Full returns true when a bounded queue is at capacity
func (q *Queue) Full() bool {
	return q.capacity > 0 && len(q.waiters) >= q.capacity
}

// Add appends a waiter for the request
func (q *Queue) Add(request *cookiejwt.Request) (*Waiter, error) {
	if q.Full() {
		return nil, ErrQueueFull
	}
	ret := NewWaiter(request)
	q.waiters = append(q.waiters, ret)
	return ret, nil
}

// Flush settles every waiter with the same outcome and empties the queue. It returns the number of waiters released.
func (q *Queue) Flush(err error) int {
	count := len(q.waiters)
	for _, waiter := range q.waiters {
		if err == nil {
			waiter.Resolve()
		} else {
			waiter.Reject(err)
		}
	}
	q.waiters = nil
	return count
}

// Size returns the number of queued waiters
func (q *Queue) Size() int {
	return len(q.waiters)
}
