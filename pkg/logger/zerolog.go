package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Output formats understood by NewZeroLogger.
const (
	FormatAuto    = "auto"
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures a ZeroLogger.
type Options struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Empty means info.
	Level string

	// Format is one of FormatAuto, FormatJSON or FormatConsole.
	// FormatAuto selects console output when Output is a terminal.
	Format string

	// Output receives the encoded lines. Defaults to os.Stderr.
	Output io.Writer
}

// ZeroLogger is a Logger backed by zerolog. Every line carries a level,
// a timestamp and any fields attached through With.
type ZeroLogger struct {
	zl     zerolog.Logger
	closer io.Closer
}

// NewZeroLogger builds a ZeroLogger from opts.
func NewZeroLogger(opts Options) (*ZeroLogger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	w, err := formatWriter(out, opts.Format)
	if err != nil {
		return nil, err
	}
	return &ZeroLogger{
		zl: zerolog.New(w).Level(level).With().Timestamp().Logger(),
	}, nil
}

// NewFileLogger appends JSON lines to the file at path, creating it if needed.
// Close closes the file.
func NewFileLogger(path, level string) (*ZeroLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l, err := NewZeroLogger(Options{Level: level, Format: FormatJSON, Output: f})
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	l.closer = f
	return l, nil
}

// ParseLevel parses a zerolog level name. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func formatWriter(out io.Writer, format string) (io.Writer, error) {
	switch format {
	case "", FormatAuto:
		if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
			return zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime}, nil
		}
		return out, nil
	case FormatJSON:
		return out, nil
	case FormatConsole:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.DateTime, NoColor: true}, nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}

// Debug logs at debug level.
func (z *ZeroLogger) Debug(format string, args ...interface{}) {
	z.zl.Debug().Msgf(format, args...)
}

// Info logs at info level.
func (z *ZeroLogger) Info(format string, args ...interface{}) {
	z.zl.Info().Msgf(format, args...)
}

// Warning logs at warn level.
func (z *ZeroLogger) Warning(format string, args ...interface{}) {
	z.zl.Warn().Msgf(format, args...)
}

// Error logs at error level.
func (z *ZeroLogger) Error(format string, args ...interface{}) {
	z.zl.Error().Msgf(format, args...)
}

// With returns a child logger carrying key=value. The child shares the
// parent's output and is not responsible for closing it.
func (z *ZeroLogger) With(key string, value interface{}) Logger {
	return &ZeroLogger{zl: z.zl.With().Interface(key, value).Logger()}
}

// Close closes the underlying file, if any.
func (z *ZeroLogger) Close() error {
	if z.closer == nil {
		return nil
	}
	err := z.closer.Close()
	z.closer = nil
	return err
}

var _ Logger = (*ZeroLogger)(nil)
