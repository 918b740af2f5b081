// Package logger emits one JSON object per log line. Sync and webhook log
// fields routinely carry prospect addresses and workspace API credentials,
// so redaction is on by default: credential-bearing fields collapse to
// "[redacted]" and email-bearing fields keep a two-character stub, enough
// to correlate lines without reproducing the address.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is the severity floor for emitted entries.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "INFO"
	}
}

// ParseLevel maps a LOG_LEVEL value to a Level. Unknown values mean INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes structured entries to a single writer. Safe for concurrent
// use; the mutex serializes writes so lines never interleave.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	level     Level
	redactPII bool
}

// New creates a Logger writing to out at the given severity floor, with
// redaction enabled.
func New(out io.Writer, level Level) *Logger {
	return &Logger{out: out, level: level, redactPII: true}
}

var std = &Logger{
	out:       os.Stderr,
	level:     ParseLevel(os.Getenv("LOG_LEVEL")),
	redactPII: true,
}

// SetLevel sets the minimum severity the default logger emits.
func SetLevel(l Level) { std.level = l }

// SetRedactPII toggles field redaction on the default logger.
func SetRedactPII(on bool) { std.redactPII = on }

// Debug emits at DEBUG on the default logger. Fields are alternating
// key/value pairs; a dangling key is dropped.
func Debug(msg string, fields ...interface{}) { std.Debug(msg, fields...) }

// Info emits at INFO on the default logger.
func Info(msg string, fields ...interface{}) { std.Info(msg, fields...) }

// Warn emits at WARN on the default logger.
func Warn(msg string, fields ...interface{}) { std.Warn(msg, fields...) }

// Error emits at ERROR on the default logger.
func Error(msg string, fields ...interface{}) { std.Error(msg, fields...) }

func (l *Logger) Debug(msg string, fields ...interface{}) { l.emit(DEBUG, msg, fields) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.emit(INFO, msg, fields) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.emit(WARN, msg, fields) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.emit(ERROR, msg, fields) }

func (l *Logger) emit(level Level, msg string, fields []interface{}) {
	if level < l.level {
		return
	}

	entry := make(map[string]interface{}, len(fields)/2+3)
	entry["time"] = time.Now().UTC().Format(time.RFC3339)
	entry["level"] = level.String()
	entry["msg"] = msg

	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		entry[key] = l.fieldValue(key, fields[i+1])
	}

	line, err := json.Marshal(entry)
	if err != nil {
		line = []byte(fmt.Sprintf(`{"level":"ERROR","msg":"unmarshalable log entry: %v"}`, err))
	}
	l.mu.Lock()
	l.out.Write(append(line, '\n'))
	l.mu.Unlock()
}

// fieldValue applies redaction to values that can carry an address or a
// credential. Numbers and bools pass through typed so counters stay numeric
// in the output.
func (l *Logger) fieldValue(key string, v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return l.redactString(key, t)
	case error:
		return l.redactString(key, t.Error())
	case fmt.Stringer:
		return l.redactString(key, t.String())
	case bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return t
	default:
		return l.redactString(key, fmt.Sprintf("%v", t))
	}
}

func (l *Logger) redactString(key, val string) string {
	if !l.redactPII {
		return val
	}
	k := strings.ToLower(key)
	if strings.Contains(k, "api_key") || strings.Contains(k, "secret") ||
		strings.Contains(k, "token") || strings.Contains(k, "authorization") {
		return "[redacted]"
	}
	if strings.Contains(k, "email") || strings.Contains(k, "contact") || strings.Contains(k, "lead") {
		return RedactEmail(val)
	}
	// Free-form fields (errors especially) can embed an address anywhere.
	return emailPattern.ReplaceAllStringFunc(val, RedactEmail)
}
