package cookiejwt

import "errors"

var (
	// ErrBaseURLRequired is returned when a client is built without a base address.
	ErrBaseURLRequired = errors.New("base URL is required")
	// ErrInvalidBaseURL is returned when the base address is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("base URL must be an absolute http(s) URL")
)
