// Package logger provides the solver engine's structured event logger:
// one line per event, space-pipe separated, starting with an
// ISO-8601 microsecond UTC timestamp, followed by service=, level=,
// event=, and JSON-encoded key/value fields.
package logger

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "paiban-core"

var (
	once   sync.Once
	logger zerolog.Logger
)

// Config configures the underlying zerolog sink. The wire format
// itself is fixed and bypasses zerolog's own formatters; only
// the sink (stdout/stderr) and level filter are configurable.
type Config struct {
	Level  string
	Output string // stdout/stderr
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{Level: "info", Output: "stdout"}
}

// Init initializes the package-level logger. Safe to call multiple
// times; only the first call takes effect.
func Init(cfg Config) {
	once.Do(func() {
		zerolog.SetGlobalLevel(parseLevel(cfg.Level))
		out := os.Stdout
		if cfg.Output == "stderr" {
			out = os.Stderr
		}
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    true,
			PartsOrder: []string{zerolog.MessageFieldName},
		}).With().Logger()
	})
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func get() *zerolog.Logger {
	Init(DefaultConfig())
	return &logger
}

// Field is a single logged key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field: logger.LogEvent("info", "solve.request.start", logger.F("request_id", id)).
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// LogEvent emits a single structured event line matching the wire
// format: "<ts> | service=<name> | level=<LEVEL> | event=<name> | k=<json> | ...".
func LogEvent(level, event string, fields ...Field) {
	line := FormatLogLine(level, event, fields...)
	l := get()
	switch strings.ToUpper(level) {
	case "WARN", "WARNING":
		l.Warn().Msg(line)
	case "ERROR":
		l.Error().Msg(line)
	default:
		l.Info().Msg(line)
	}
}

// FormatLogLine renders the exact wire format for a log event,
// independent of the zerolog sink — exported so callers needing the
// raw line (proxy forwarding, tests) can assert on it directly.
func FormatLogLine(level, event string, fields ...Field) string {
	parts := []string{
		timestampUTCMicroseconds(),
		fmt.Sprintf("service=%s", serviceName),
		fmt.Sprintf("level=%s", strings.ToUpper(level)),
		fmt.Sprintf("event=%s", event),
	}
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s=%s", f.Key, serializeValue(f.Value)))
	}
	return strings.Join(parts, " | ")
}

func timestampUTCMicroseconds() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
}

func serializeValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case string:
		b, _ := json.Marshal(val)
		return string(b)
	case int, int32, int64, float32, float64:
		return fmt.Sprintf("%v", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%q", fmt.Sprintf("%v", val))
		}
		return string(b)
	}
}

// SolveLogger is the solver engine's domain-specific logger, wrapping
// LogEvent with the fixed solve.request.* event names and fields.
type SolveLogger struct{}

// NewSolveLogger constructs a SolveLogger.
func NewSolveLogger() *SolveLogger {
	return &SolveLogger{}
}

// RequestStart logs solve.request.start.
func (l *SolveLogger) RequestStart(requestID string, employees, shifts int) {
	LogEvent("info", "solve.request.start",
		F("request_id", requestID),
		F("employees", employees),
		F("shifts", shifts),
	)
}

// RequestDone logs solve.request.done.
func (l *SolveLogger) RequestDone(requestID, status string, elapsedMicros int64, objective *int) {
	fields := []Field{
		F("request_id", requestID),
		F("status", status),
		F("elapsed_micros", elapsedMicros),
	}
	if objective != nil {
		fields = append(fields, F("objective", *objective))
	} else {
		fields = append(fields, F("objective", nil))
	}
	LogEvent("info", "solve.request.done", fields...)
}

// RequestRejected logs solve.request.rejected.
func (l *SolveLogger) RequestRejected(requestID, reason string, extra ...Field) {
	fields := append([]Field{F("request_id", requestID), F("reason", reason)}, extra...)
	LogEvent("warn", "solve.request.rejected", fields...)
}
