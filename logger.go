package cookiejwt

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger defines the interface for logging operations
type Logger interface {
	// Errorf logs an error message with formatting
	Errorf(format string, args ...interface{})
	// Debugf logs a diagnostic message with formatting
	Debugf(format string, args ...interface{})
}

// ZeroLogger adapts zerolog to Logger
type ZeroLogger struct {
	logger zerolog.Logger
}

// Errorf implements Logger.Errorf
func (l *ZeroLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Msgf(format, args...)
}

// Debugf implements Logger.Debugf
func (l *ZeroLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug().Msgf(format, args...)
}

// NewLogger creates a Logger writing JSON lines to writer at info level, so only errors are reported.
// If writer is nil, os.Stderr is used as the default. Use NewZeroLogger for debug output.
func NewLogger(writer io.Writer) *ZeroLogger {
	if writer == nil {
		writer = os.Stderr
	}
	return &ZeroLogger{logger: zerolog.New(writer).Level(zerolog.InfoLevel).With().Timestamp().Logger()}
}

// NewZeroLogger wraps an existing zerolog logger.
func NewZeroLogger(logger zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{logger: logger}
}

// NopLogger discards everything.
var NopLogger Logger = &ZeroLogger{logger: zerolog.Nop()}

// DefaultLogger is the default logger instance that writes to os.Stderr
var DefaultLogger Logger = NewLogger(os.Stderr)
