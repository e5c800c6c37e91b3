// pattern: Imperative Shell

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds configuration for the Manager.
type Config struct {
	FilePath   string    // Path to the rotated JSON log file; empty disables file output
	MaxSizeMB  int       // Max size in MB before rotation
	MaxBackups int       // Max number of old log files to keep
	MaxAgeDays int       // Max days to keep old log files
	Level      string    // Minimum log level (debug, info, warn, error)
	Console    io.Writer // Human-readable output (default os.Stderr)
}

// LoggerProvider is an interface for obtaining scoped loggers.
// Both Manager and TestLogManager implement this interface.
type LoggerProvider interface {
	For(scope string) *ScopedLogger
}

// ScopedLogger is a slog logger tagged with the component that owns it.
// The zero value discards everything.
type ScopedLogger struct {
	slog  *slog.Logger
	scope string
}

func (l *ScopedLogger) log(level slog.Level, msg string, args []any) {
	if l.slog != nil {
		l.slog.Log(context.Background(), level, msg, args...)
	}
}

func (l *ScopedLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *ScopedLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *ScopedLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *ScopedLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

// With returns a logger that adds args to every entry.
func (l *ScopedLogger) With(args ...any) *ScopedLogger {
	if l.slog == nil {
		return l
	}
	return &ScopedLogger{slog: l.slog.With(args...), scope: l.scope}
}

// Scope is the name the logger was created with.
func (l *ScopedLogger) Scope() string {
	return l.scope
}

// Manager hands out scoped loggers writing to the console and, optionally,
// a rotated log file.
type Manager struct {
	base    *zap.Logger
	file    *lumberjack.Logger
	level   zapcore.Level
	mu      sync.Mutex
	loggers map[string]*ScopedLogger
}

// NewManager builds the console core and, when cfg.FilePath is set, a JSON
// core rotated by lumberjack. An unparsable level means WARN.
func NewManager(cfg Config) (*Manager, error) {
	level := zapcore.WarnLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level = zapcore.WarnLevel
		}
	}
	console := cfg.Console
	if console == nil {
		console = os.Stderr
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig()), zapcore.AddSync(console), level),
	}
	m := &Manager{level: level, loggers: make(map[string]*ScopedLogger)}

	if cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		m.file = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 10),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 7),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(m.file), level))
	}

	m.base = zap.New(zapcore.NewTee(cores...))
	return m, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// For returns the logger for scope, creating it on first use.
func (m *Manager) For(scope string) *ScopedLogger {
	return cachedLogger(&m.mu, m.loggers, m.base, m.level, scope)
}

// Sync flushes buffered entries.
func (m *Manager) Sync() error {
	return m.base.Sync()
}

// Close flushes and closes the log file.
func (m *Manager) Close() error {
	_ = m.Sync()
	if m.file == nil {
		return nil
	}
	return m.file.Close()
}

func cachedLogger(mu *sync.Mutex, loggers map[string]*ScopedLogger, base *zap.Logger, level zapcore.Level, scope string) *ScopedLogger {
	mu.Lock()
	defer mu.Unlock()
	if logger, ok := loggers[scope]; ok {
		return logger
	}
	logger := &ScopedLogger{
		slog:  slog.New(&zapSlogHandler{zap: base.Named(scope), level: level}),
		scope: scope,
	}
	loggers[scope] = logger
	return logger
}

func consoleEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.TimeKey = ""
	encoderCfg.CallerKey = ""
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return encoderCfg
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.EpochTimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	return encoderCfg
}

// zapSlogHandler forwards slog records to a zap logger. Attributes added
// through With are converted to zap fields once.
type zapSlogHandler struct {
	zap    *zap.Logger
	level  zapcore.Level
	fields []zap.Field
}

func (h *zapSlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zapLevel(level) >= h.level
}

func (h *zapSlogHandler) Handle(_ context.Context, r slog.Record) error {
	ce := h.zap.Check(zapLevel(r.Level), r.Message)
	if ce == nil {
		return nil
	}
	fields := append(make([]zap.Field, 0, len(h.fields)+r.NumAttrs()), h.fields...)
	r.Attrs(func(attr slog.Attr) bool {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
		return true
	})
	ce.Write(fields...)
	return nil
}

func (h *zapSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := append(make([]zap.Field, 0, len(h.fields)+len(attrs)), h.fields...)
	for _, attr := range attrs {
		fields = append(fields, zap.Any(attr.Key, attr.Value.Any()))
	}
	return &zapSlogHandler{zap: h.zap, level: h.level, fields: fields}
}

func (h *zapSlogHandler) WithGroup(name string) slog.Handler {
	return &zapSlogHandler{zap: h.zap.Named(name), level: h.level, fields: h.fields}
}

// zapLevel maps slog levels onto zap's four levels, rounding down.
func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	}
	return zapcore.DebugLevel
}
