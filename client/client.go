package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"

	"github.com/viant/afs/url"
	"github.com/viant/cookiejwt"
	"golang.org/x/net/publicsuffix"
)

// Client sends requests relative to a base address, carries cookies through its jar,
// and turns non-2xx responses into *cookiejwt.StatusError passed through registered failure handlers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	logger     cookiejwt.Logger

	mux      sync.RWMutex
	handlers []FailureHandler
}

// Use registers a failure handler; handlers run in registration order.
func (c *Client) Use(handler FailureHandler) {
	c.mux.Lock()
	defer c.mux.Unlock()
	c.handlers = append(c.handlers, handler)
}

// BaseURL returns the base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Jar returns the cookie jar.
func (c *Client) Jar() http.CookieJar {
	return c.httpClient.Jar
}

// NewRequest creates a descriptor for path resolved against the base address.
// body may be nil, raw []byte, or any value encoded as JSON.
func (c *Client) NewRequest(method, path string, body interface{}) (*cookiejwt.Request, error) {
	data, contentType, err := cookiejwt.EncodeJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	request := cookiejwt.NewRequest(method, c.resolve(path), data)
	for k, v := range c.headers {
		request.Header[k] = append([]string(nil), v...)
	}
	if request.Header.Get("Accept") == "" {
		request.Header.Set("Accept", "application/json")
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	return request, nil
}

// Do sends the request; failures go through the registered failure handlers.
func (c *Client) Do(ctx context.Context, request *cookiejwt.Request) (*cookiejwt.Response, error) {
	response, err := c.Execute(ctx, request)
	if err == nil {
		return response, nil
	}
	return c.handleFailure(ctx, err)
}

// Replay re-sends a descriptor unchanged through Do.
func (c *Client) Replay(ctx context.Context, request *cookiejwt.Request) (*cookiejwt.Response, error) {
	return c.Do(ctx, request)
}

// Get sends GET path
func (c *Client) Get(ctx context.Context, path string) (*cookiejwt.Response, error) {
	return c.send(ctx, http.MethodGet, path, nil)
}

// Post sends POST path with a JSON body
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*cookiejwt.Response, error) {
	return c.send(ctx, http.MethodPost, path, body)
}

// Put sends PUT path with a JSON body
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*cookiejwt.Response, error) {
	return c.send(ctx, http.MethodPut, path, body)
}

// Delete sends DELETE path
func (c *Client) Delete(ctx context.Context, path string) (*cookiejwt.Response, error) {
	return c.send(ctx, http.MethodDelete, path, nil)
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*cookiejwt.Response, error) {
	request, err := c.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	return c.Do(ctx, request)
}

// Execute sends the request without failure interception.
func (c *Client) Execute(ctx context.Context, request *cookiejwt.Request) (*cookiejwt.Response, error) {
	req, err := request.HTTPRequest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debugf("%s %s: status %d", request.Method, request.URL, resp.StatusCode)
		return nil, cookiejwt.NewStatusError(resp.StatusCode, body, request)
	}
	return &cookiejwt.Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body, Request: request}, nil
}

func (c *Client) handleFailure(ctx context.Context, err error) (*cookiejwt.Response, error) {
	c.mux.RLock()
	handlers := c.handlers
	c.mux.RUnlock()
	for _, handler := range handlers {
		response, hErr := handler.HandleFailure(ctx, err)
		if hErr == nil {
			return response, nil
		}
		err = hErr
	}
	return nil, err
}

// resolve joins path onto the base address unless path is already absolute.
func (c *Client) resolve(path string) string {
	if path == "" {
		return c.baseURL
	}
	if url.Scheme(path, "") != "" {
		return path
	}
	return strings.TrimRight(c.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// New creates a client bound to baseURL, with a public-suffix aware cookie jar unless a custom client brings its own.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, cookiejwt.ErrBaseURLRequired
	}
	schema := url.Scheme(baseURL, "")
	if (schema != "http" && schema != "https") || url.Host(baseURL) == "" {
		return nil, fmt.Errorf("%w: %s", cookiejwt.ErrInvalidBaseURL, baseURL)
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		headers:    make(http.Header),
		logger:     cookiejwt.DefaultLogger,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		withJar := *c.httpClient
		withJar.Jar = jar
		c.httpClient = &withJar
	}
	return c, nil
}
