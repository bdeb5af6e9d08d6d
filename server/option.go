package server

import "github.com/rs/zerolog"

// Option mutates Handler.
type Option func(*Handler)

// WithConfig sets endpoints and cookie attributes.
func WithConfig(config Config) Option {
	return func(h *Handler) { h.config = config }
}

// WithLogger sets the handler logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}
