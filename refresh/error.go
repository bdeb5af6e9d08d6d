package refresh

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned to a caller that cannot be parked because the pending queue is at capacity.
var ErrQueueFull = errors.New("refresh: pending queue is full")

// ErrRenewalAborted rejects queued callers when a renewal ends without an outcome (Renew panicked).
var ErrRenewalAborted = &RenewalError{Err: errors.New("renewal aborted")}

// RenewalError is returned to every caller of a failed renewal cycle.
type RenewalError struct {
	Err error
}

// Error implements the error interface.
func (e *RenewalError) Error() string {
	return fmt.Sprintf("session renewal failed: %v", e.Err)
}

// Unwrap returns the underlying renewal failure.
func (e *RenewalError) Unwrap() error {
	return e.Err
}

// IsRenewalFailure returns true if err is or wraps a RenewalError.
func IsRenewalFailure(err error) bool {
	var target *RenewalError
	return errors.As(err, &target)
}
