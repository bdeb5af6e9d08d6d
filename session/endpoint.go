package session

import (
	"context"
	"net/http"

	"github.com/viant/cookiejwt"
	"github.com/viant/cookiejwt/client"
)

// endpoints binds the refresh endpoint to the client for the coordinator.
type endpoints struct {
	client  *client.Client
	refresh string
}

// Renew posts to the refresh endpoint; the refresh cookie travels in the jar.
// It bypasses failure interception so a 401 here surfaces as the renewal failure.
func (e *endpoints) Renew(ctx context.Context) error {
	request, err := e.client.NewRequest(http.MethodPost, e.refresh, nil)
	if err != nil {
		return err
	}
	_, err = e.client.Execute(ctx, request)
	return err
}

func (e *endpoints) Replay(ctx context.Context, request *cookiejwt.Request) (*cookiejwt.Response, error) {
	return e.client.Replay(ctx, request)
}
