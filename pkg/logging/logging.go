// Package logging builds the process logger and adapts it to the Temporal SDK.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	tlog "go.temporal.io/sdk/log"
)

// Output formats
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New creates a logger writing to w (stdout when nil).
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case FormatJSON:
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	default:
		return zerolog.Nop(), fmt.Errorf("invalid log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Success starts an info event marked as a successful outcome.
func Success(l *zerolog.Logger) *zerolog.Event {
	return l.Info().Str("outcome", "success")
}

// TemporalLogger routes Temporal SDK logs through zerolog.
type TemporalLogger struct {
	l zerolog.Logger
}

var (
	_ tlog.Logger     = (*TemporalLogger)(nil)
	_ tlog.WithLogger = (*TemporalLogger)(nil)
)

// NewTemporalLogger wraps l for use in client.Options.Logger.
func NewTemporalLogger(l zerolog.Logger) *TemporalLogger {
	return &TemporalLogger{l: l}
}

func (t *TemporalLogger) Debug(msg string, keyvals ...interface{}) {
	t.l.Debug().Fields(keyvals).Msg(msg)
}

func (t *TemporalLogger) Info(msg string, keyvals ...interface{}) {
	t.l.Info().Fields(keyvals).Msg(msg)
}

func (t *TemporalLogger) Warn(msg string, keyvals ...interface{}) {
	t.l.Warn().Fields(keyvals).Msg(msg)
}

func (t *TemporalLogger) Error(msg string, keyvals ...interface{}) {
	t.l.Error().Fields(keyvals).Msg(msg)
}

// With returns a logger that always carries keyvals.
func (t *TemporalLogger) With(keyvals ...interface{}) tlog.Logger {
	return &TemporalLogger{l: t.l.With().Fields(keyvals).Logger()}
}
