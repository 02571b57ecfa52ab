// Package logger provides leveled logging for the smartcam engine and tools.
// Output is either plain text lines or one JSON object per line.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	// DebugLevel logs per-fetch and per-rebuild detail.
	DebugLevel Level = iota
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel marks recoverable problems such as skipped events.
	WarnLevel
	// ErrorLevel marks failed operations.
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	default:
		return "error"
	}
}

// ParseLevel maps a level name to a Level, defaulting to InfoLevel.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "warn":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger writes leveled messages as text or JSON lines
type Logger struct {
	mu    sync.Mutex
	level Level
	json  bool
	out   io.Writer
	text  *log.Logger
	nowFn func() time.Time
}

// New returns a logger writing to out.
func New(out io.Writer, level Level, format string) *Logger {
	l := &Logger{level: level, nowFn: time.Now}
	l.json = strings.ToLower(format) == "json"
	l.setOutput(out)
	return l
}

func (l *Logger) setOutput(out io.Writer) {
	l.out = out
	l.text = log.New(out, "", log.LstdFlags|log.Lmicroseconds)
}

type jsonLine struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"msg"`
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if l == nil || level < l.level {
		return
	}
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		line, err := json.Marshal(jsonLine{
			Time:    l.nowFn().Format(time.RFC3339Nano),
			Level:   level.String(),
			Message: msg,
		})
		if err != nil {
			return
		}
		_, _ = l.out.Write(append(line, '\n'))
		return
	}
	_ = l.text.Output(3, "["+strings.ToUpper(level.String())+"] "+msg)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(os.Stderr, InfoLevel, "text")
)

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Init replaces the default logger with one at the given level and format ("text" or "json")
func Init(level string, format string) {
	SetDefault(New(os.Stderr, ParseLevel(level), format))
}

// SetDefault replaces the default logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Debug logs a message at DebugLevel
func Debug(format string, args ...interface{}) {
	current().logf(DebugLevel, format, args...)
}

// Info logs a message at InfoLevel
func Info(format string, args ...interface{}) {
	current().logf(InfoLevel, format, args...)
}

// Warn logs a message at WarnLevel
func Warn(format string, args ...interface{}) {
	current().logf(WarnLevel, format, args...)
}

// Error logs a message at ErrorLevel
func Error(format string, args ...interface{}) {
	current().logf(ErrorLevel, format, args...)
}

// Fatal logs a message at ErrorLevel and exits
func Fatal(format string, args ...interface{}) {
	current().logf(ErrorLevel, "FATAL: "+format, args...)
	os.Exit(1)
}
