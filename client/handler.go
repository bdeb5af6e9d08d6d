package client

import (
	"context"

	"github.com/viant/cookiejwt"
)

// FailureHandler intercepts failed requests. It may recover by returning a response,
// or return the (possibly different) error to pass on to the next handler.
type FailureHandler interface {
	HandleFailure(ctx context.Context, err error) (*cookiejwt.Response, error)
}

// FailureHandlerFunc adapts a function to FailureHandler
type FailureHandlerFunc func(ctx context.Context, err error) (*cookiejwt.Response, error)

// HandleFailure calls f(ctx, err)
func (f FailureHandlerFunc) HandleFailure(ctx context.Context, err error) (*cookiejwt.Response, error) {
	return f(ctx, err)
}
