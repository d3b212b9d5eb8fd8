// Package logger provides the logging interface used across micetimer.
// The daemon logs through Logger so that the scheduler, dispatcher and
// command line share one set of backends (zerolog console/JSON, log file).
package logger

import (
	"fmt"
)

// Logger defines the interface for leveled logging across all micetimer components.
type Logger interface {
	// Debug logs a diagnostic message (e.g., "Re-arming [backup] for 5m0s").
	Debug(format string, args ...interface{})

	// Info logs an informational message (e.g., "Event loop started").
	Info(format string, args ...interface{})

	// Warning logs a warning message (e.g., "spurious readiness on fd 7").
	Warning(format string, args ...interface{})

	// Error logs an error message (e.g., "Failed to re-arm [backup]: bad file descriptor").
	Error(format string, args ...interface{})

	// With returns a Logger that attaches key=value to every message.
	With(key string, value interface{}) Logger

	// Close releases resources held by the logger (e.g., an open log file).
	// Safe to call multiple times. Returns nil for loggers without resources.
	Close() error
}

// NopLogger is a logger that discards all messages.
// Useful for testing or when logging should be disabled.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(format string, args ...interface{}) {}

// Info discards the message.
func (n *NopLogger) Info(format string, args ...interface{}) {}

// Warning discards the message.
func (n *NopLogger) Warning(format string, args ...interface{}) {}

// Error discards the message.
func (n *NopLogger) Error(format string, args ...interface{}) {}

// With returns the same NopLogger.
func (n *NopLogger) With(key string, value interface{}) Logger { return n }

// Close is a no-op.
func (n *NopLogger) Close() error {
	return nil
}

// MockLogger implements Logger for testing purposes.
// It records all log calls for verification in tests. Loggers derived
// with With share the recorded calls of their parent.
type MockLogger struct {
	*mockCalls
	Fields map[string]interface{}
}

type mockCalls struct {
	DebugCalls   []string
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates a new MockLogger for testing.
func NewMockLogger() *MockLogger {
	return &MockLogger{
		mockCalls: &mockCalls{
			DebugCalls:   make([]string, 0),
			InfoCalls:    make([]string, 0),
			WarningCalls: make([]string, 0),
			ErrorCalls:   make([]string, 0),
		},
		Fields: map[string]interface{}{},
	}
}

// Debug records the formatted message.
func (m *MockLogger) Debug(format string, args ...interface{}) {
	m.DebugCalls = append(m.DebugCalls, fmt.Sprintf(format, args...))
}

// Info records the formatted message.
func (m *MockLogger) Info(format string, args ...interface{}) {
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

// Warning records the formatted message.
func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

// Error records the formatted message.
func (m *MockLogger) Error(format string, args ...interface{}) {
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

// With returns a MockLogger sharing this logger's recorded calls.
func (m *MockLogger) With(key string, value interface{}) Logger {
	fields := make(map[string]interface{}, len(m.Fields)+1)
	for k, v := range m.Fields {
		fields[k] = v
	}
	fields[key] = value
	return &MockLogger{mockCalls: m.mockCalls, Fields: fields}
}

// Close records that Close was called.
func (m *MockLogger) Close() error {
	m.CloseCalled = true
	return nil
}

// Ensure implementations satisfy the Logger interface.
var (
	_ Logger = (*NopLogger)(nil)
	_ Logger = (*MockLogger)(nil)
)
