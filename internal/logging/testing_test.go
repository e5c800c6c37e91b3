// pattern: Imperative Shell

package logging

import (
	"testing"
)

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	if logger == nil {
		t.Fatal("NopLogger() returned nil")
	}

	// Should not panic
	logger.Debug("test")
	logger.Info("test")
	logger.Warn("test")
	logger.Error("test")
	logger.With("key", "value").Info("test with fields")
}

func TestNopProvider(t *testing.T) {
	logger := NopProvider{}.For("rootfind")
	if logger.Scope() != "rootfind" {
		t.Errorf("Scope() = %q, want %q", logger.Scope(), "rootfind")
	}
	logger.Warn("dropped")
}

func TestTestLogManager_CapturesEntries(t *testing.T) {
	lm := NewTestLogManager()

	lm.For("rootfind").Info("probing", "dir", "/repo")
	lm.For("rootfind").Warn("fallback used")

	entries := lm.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Message != "probing" || entries[0].Level != "INFO" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Scope != "rootfind" {
		t.Errorf("Scope = %q, want %q", entries[0].Scope, "rootfind")
	}
	if entries[0].Fields["dir"] != "/repo" {
		t.Errorf("Fields[dir] = %v, want /repo", entries[0].Fields["dir"])
	}

	warnings := lm.Warnings()
	if len(warnings) != 1 || !warnings[0].Contains("fallback") {
		t.Errorf("Warnings() = %+v", warnings)
	}

	lm.Reset()
	if len(lm.Entries()) != 0 {
		t.Error("Reset() should drop all entries")
	}
}

func TestMemorySink_IgnoresGarbage(t *testing.T) {
	sink := NewMemorySink()
	n, err := sink.Write([]byte("not json"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len("not json") {
		t.Errorf("Write() = %d, want %d", n, len("not json"))
	}
	if len(sink.Entries()) != 0 {
		t.Error("garbage input should not produce an entry")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"INFO":    "INFO",
		"warning": "WARN",
		"warn":    "WARN",
		"error":   "ERROR",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %q, want %q", in, got, want)
		}
	}
}
