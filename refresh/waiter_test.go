package refresh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/cookiejwt"
)

func TestQueue_Flush(t *testing.T) {
	testCases := []struct {
		name     string
		size     int
		flushErr error
	}{
		{name: "resolve all", size: 3},
		{name: "reject all", size: 2, flushErr: errors.New("renewal failed")},
		{name: "empty", size: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			queue := NewQueue(0)
			var waiters []*Waiter
			for i := 0; i < tc.size; i++ {
				waiter, err := queue.Add(cookiejwt.NewRequest("GET", "http://api/x", nil))
				assert.NoError(t, err)
				waiters = append(waiters, waiter)
			}
			assert.Equal(t, tc.size, queue.Flush(tc.flushErr))
			assert.Equal(t, 0, queue.Size())
			for _, waiter := range waiters {
				assert.Equal(t, tc.flushErr, waiter.Wait(context.Background()))
			}
		})
	}
}

func TestWaiter_SettlesOnce(t *testing.T) {
	waiter := NewWaiter(nil)
	first := errors.New("first")
	waiter.Reject(first)
	waiter.Resolve()
	waiter.Reject(errors.New("second"))
	<-waiter.Done()
	assert.Equal(t, first, waiter.Wait(context.Background()))
}

func TestQueue_Capacity(t *testing.T) {
	queue := NewQueue(1)
	assert.False(t, queue.Full())
	_, err := queue.Add(nil)
	assert.NoError(t, err)
	assert.True(t, queue.Full())
	_, err = queue.Add(nil)
	assert.ErrorIs(t, err, ErrQueueFull)
	queue.Flush(nil)
	_, err = queue.Add(nil)
	assert.NoError(t, err)
	assert.False(t, NewQueue(0).Full())
}
