// pattern: Functional Core

package logging

import (
	"strings"
	"time"
)

// LogEntry is a decoded log record, as captured by a MemorySink.
type LogEntry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN, ERROR
	Scope     string // Logger name (e.g. "rootfind")
	Message   string
	Fields    map[string]any
}

// IsWarning reports whether the entry was logged at WARN or above.
func (e LogEntry) IsWarning() bool {
	return e.Level == "WARN" || e.Level == "ERROR"
}

// Contains reports whether the message contains substr.
func (e LogEntry) Contains(substr string) bool {
	return strings.Contains(e.Message, substr)
}

// Warnings filters entries down to those at WARN or above.
func Warnings(entries []LogEntry) []LogEntry {
	var out []LogEntry
	for _, e := range entries {
		if e.IsWarning() {
			out = append(out, e)
		}
	}
	return out
}

// ParseLevel normalizes a log level string to uppercase.
// Returns "INFO" for unknown levels.
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "info":
		return "INFO"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}
