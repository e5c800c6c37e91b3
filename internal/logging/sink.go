// pattern: Imperative Shell

package logging

import (
	"encoding/json"
	"sync"
	"time"
)

// MemorySink implements zapcore.WriteSyncer and keeps every decoded entry
// in memory. Used by TestLogManager.
type MemorySink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write implements io.Writer. Each call carries one JSON encoded entry from zap.
// Undecodable input is dropped so logging never fails.
func (s *MemorySink) Write(p []byte) (int, error) {
	entry, err := parseEntry(p)
	if err != nil {
		return len(p), nil
	}

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	return len(p), nil
}

// Sync implements zapcore.WriteSyncer.
func (s *MemorySink) Sync() error {
	return nil
}

// Entries returns a copy of the captured entries in write order.
func (s *MemorySink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LogEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Reset drops all captured entries.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()
}

// parseEntry converts JSON log data from zap into a LogEntry.
func parseEntry(data []byte) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return LogEntry{}, err
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     "INFO",
		Fields:    make(map[string]any),
	}

	if msg, ok := raw["msg"].(string); ok {
		entry.Message = msg
		delete(raw, "msg")
	}
	if level, ok := raw["level"].(string); ok {
		entry.Level = ParseLevel(level)
		delete(raw, "level")
	}
	if logger, ok := raw["logger"].(string); ok {
		entry.Scope = logger
		delete(raw, "logger")
	}
	if ts, ok := raw["ts"].(float64); ok {
		sec := int64(ts)
		entry.Timestamp = time.Unix(sec, int64((ts-float64(sec))*1e9))
		delete(raw, "ts")
	}
	delete(raw, "caller")
	delete(raw, "stacktrace")

	for k, v := range raw {
		entry.Fields[k] = v
	}
	return entry, nil
}
