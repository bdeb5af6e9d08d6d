package refresh

import (
	"context"
	"sync"
	"time"

	"github.com/viant/cookiejwt"
)

// State is the observable state of a Coordinator.
type State int

const (
	// Idle means no renewal is outstanding.
	Idle State = iota
	// Refreshing means a renewal request is in flight.
	Refreshing
)

// String returns the state name.
func (s State) String() string {
	if s == Refreshing {
		return "refreshing"
	}
	return "idle"
}

// Client is the HTTP client the coordinator renews sessions and replays requests with.
type Client interface {
	// Renew issues the dedicated refresh call. It must not go through failure interception.
	Renew(ctx context.Context) error
	// Replay re-sends a request descriptor unchanged.
	Replay(ctx context.Context, request *cookiejwt.Request) (*cookiejwt.Response, error)
}

// Coordinator turns bursts of unauthorized failures into a single renewal and fans its outcome out to every caller.
type Coordinator struct {
	client        Client
	onAuthFailure func()
	renewTimeout  time.Duration
	logger        cookiejwt.Logger

	mux      sync.Mutex
	inFlight bool
	pending  *Queue
}

// HandleFailure handles a failed request. Failures other than a first 401 are returned unchanged;
// a first 401 either starts a renewal or waits for the one in flight, then replays the request.
func (c *Coordinator) HandleFailure(ctx context.Context, err error) (*cookiejwt.Response, error) {
	if !cookiejwt.IsUnauthorized(err) {
		return nil, err
	}
	request := cookiejwt.RequestOf(err)
	if request == nil {
		return nil, err
	}

	c.mux.Lock()
	if request.Retried() {
		c.mux.Unlock()
		return nil, err
	}
	if c.inFlight && c.pending.Full() {
		c.mux.Unlock()
		return nil, ErrQueueFull
	}
	if !request.MarkRetried() {
		c.mux.Unlock()
		return nil, err
	}
	if c.inFlight {
		waiter, qErr := c.pending.Add(request)
		c.mux.Unlock()
		if qErr != nil {
			return nil, qErr
		}
		if wErr := waiter.Wait(ctx); wErr != nil {
			return nil, wErr
		}
		return c.client.Replay(ctx, request)
	}
	c.inFlight = true
	c.mux.Unlock()

	released, renewErr := c.renewCycle(ctx)
	if renewErr != nil {
		c.logger.Debugf("session renewal failed, rejected %d queued request(s): %v", released, renewErr)
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return nil, renewErr
	}
	c.logger.Debugf("session renewed, replaying %s %s and %d queued request(s)", request.Method, request.URL, released)
	return c.client.Replay(ctx, request)
}

// State returns the current coordinator state.
func (c *Coordinator) State() State {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.inFlight {
		return Refreshing
	}
	return Idle
}

// Pending returns the number of requests waiting on the current renewal.
func (c *Coordinator) Pending() int {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.pending.Size()
}

// renewCycle renews and then flushes the queue and resets inFlight, even when Renew panics.
func (c *Coordinator) renewCycle(ctx context.Context) (released int, err error) {
	err = ErrRenewalAborted
	defer func() {
		c.mux.Lock()
		released = c.pending.Flush(err)
		c.inFlight = false
		c.mux.Unlock()
	}()
	err = c.renew(ctx)
	return released, err
}

// renew runs detached from the trigger's cancellation: every queued caller shares its outcome.
func (c *Coordinator) renew(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if c.renewTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.renewTimeout)
		defer cancel()
	}
	if err := c.client.Renew(ctx); err != nil {
		return &RenewalError{Err: err}
	}
	return nil
}

// New creates a coordinator bound to client.
func New(client Client, opts ...Option) *Coordinator {
	ret := &Coordinator{
		client:  client,
		logger:  cookiejwt.NopLogger,
		pending: NewQueue(0),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}
