package client

import (
	"net/http"

	"github.com/viant/cookiejwt"
)

// Option mutates Client.
type Option func(*Client)

// WithHTTPClient allows custom http.Client. A client without a cookie jar gets one.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithHeader sets a default header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithLogger sets the client logger.
func WithLogger(logger cookiejwt.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithFailureHandler registers a failure handler at construction.
func WithFailureHandler(handler FailureHandler) Option {
	return func(c *Client) {
		c.handlers = append(c.handlers, handler)
	}
}
