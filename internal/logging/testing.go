// pattern: Imperative Shell

package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NopLogger returns a ScopedLogger that discards all output.
func NopLogger() *ScopedLogger {
	return &ScopedLogger{}
}

// NopProvider hands out NopLogger for every scope.
type NopProvider struct{}

// For implements LoggerProvider.
func (NopProvider) For(scope string) *ScopedLogger {
	return &ScopedLogger{scope: scope}
}

// TestLogManager captures log entries in memory for assertions.
type TestLogManager struct {
	sink    *MemorySink
	baseZap *zap.Logger
	loggers map[string]*ScopedLogger
	mu      sync.Mutex
}

// NewTestLogManager creates a LoggerProvider that records every entry at DEBUG and above.
func NewTestLogManager() *TestLogManager {
	sink := NewMemorySink()
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(jsonEncoderConfig()),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)
	return &TestLogManager{
		sink:    sink,
		baseZap: zap.New(core),
		loggers: make(map[string]*ScopedLogger),
	}
}

// For returns a scoped logger for the given scope name.
func (m *TestLogManager) For(scope string) *ScopedLogger {
	return cachedLogger(&m.mu, m.loggers, m.baseZap, zapcore.DebugLevel, scope)
}

// Entries returns everything logged so far.
func (m *TestLogManager) Entries() []LogEntry {
	return m.sink.Entries()
}

// Warnings returns the entries logged at WARN or above.
func (m *TestLogManager) Warnings() []LogEntry {
	return Warnings(m.sink.Entries())
}

// Reset drops captured entries.
func (m *TestLogManager) Reset() {
	m.sink.Reset()
}
