package cookiejwt

import (
	"bytes"
	"context"
	"net/http"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Request describes an outbound request so that it can be replayed after a session renewal.
// The descriptor is shared by reference; its body is kept as bytes so every send gets a fresh reader.
type Request struct {
	ID     string
	Method string
	URL    string
	Header http.Header
	Body   []byte

	retried atomic.Bool
}

// NewRequest creates a request descriptor with a generated id.
func NewRequest(method, URL string, body []byte) *Request {
	return &Request{
		ID:     uuid.New().String(),
		Method: method,
		URL:    URL,
		Header: make(http.Header),
		Body:   body,
	}
}

// MarkRetried flags the request as renewal-eligible no more. It returns false when the flag was already set.
func (r *Request) MarkRetried() bool {
	return r.retried.CompareAndSwap(false, true)
}

// Retried returns true once the request has been used to trigger or await a renewal.
func (r *Request) Retried() bool {
	return r.retried.Load()
}

// HTTPRequest builds a new *http.Request from the descriptor.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body *bytes.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, r.Method, r.URL, nil)
	}
	if err != nil {
		return nil, err
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}
	if r.ID != "" {
		req.Header.Set(RequestIDHeader, r.ID)
	}
	return req, nil
}

// Response represents a successful (2xx) HTTP response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Request    *Request
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// EncodeJSON marshals v for use as a request body; []byte passes through unchanged.
func EncodeJSON(v interface{}) ([]byte, string, error) {
	switch actual := v.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return actual, "", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, "", err
	}
	return data, jsonMime, nil
}
