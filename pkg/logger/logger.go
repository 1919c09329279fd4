package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	charm "github.com/charmbracelet/log"
)

// LogLevel is a log level as written in the configuration file.
type LogLevel string

const (
	LogLevelOff     LogLevel = "Off"
	LogLevelTrace   LogLevel = "Trace"
	LogLevelDebug   LogLevel = "Debug"
	LogLevelInfo    LogLevel = "Info"
	LogLevelWarning LogLevel = "Warning"
)

// TraceLevel is one step more verbose than charm's debug level.
const TraceLevel = charm.DebugLevel - 1

// offLevel is above every level charm emits.
const offLevel = charm.FatalLevel + 1

// ErrInvalidLogLevel is returned for unsupported log level names.
var ErrInvalidLogLevel = errors.New("invalid log level")

// Logger wraps a charm logger and adds the trace level.
type Logger struct {
	*charm.Logger
}

// NewLogger wraps an existing charm logger.
func NewLogger(l *charm.Logger) *Logger {
	return &Logger{Logger: l}
}

// NewWithOutput creates a styled logger writing to w.
func NewWithOutput(w io.Writer) *Logger {
	l := charm.NewWithOptions(w, charm.Options{ReportTimestamp: false})
	l.SetStyles(getLogStyles())
	return NewLogger(l)
}

// Trace logs a message at trace level.
func (l *Logger) Trace(msg interface{}, keyvals ...interface{}) {
	l.Log(TraceLevel, msg, keyvals...)
}

// GetLevelString returns the lower-case name of the current level.
func (l *Logger) GetLevelString() string {
	switch level := l.GetLevel(); level {
	case TraceLevel:
		return "trace"
	case offLevel:
		return "off"
	default:
		return level.String()
	}
}

// ParseLogLevel validates a configured log level. An empty string means Info.
func ParseLogLevel(logLevel string) (LogLevel, error) {
	if logLevel == "" {
		return LogLevelInfo, nil
	}

	switch LogLevel(logLevel) {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelOff:
		return LogLevel(logLevel), nil
	default:
		return "", fmt.Errorf("%w: '%s'. Supported log levels are Trace, Debug, Info, Warning, Off", ErrInvalidLogLevel, logLevel)
	}
}

// CharmLevel maps the configured level onto a charm level.
func (l LogLevel) CharmLevel() charm.Level {
	switch l {
	case LogLevelTrace:
		return TraceLevel
	case LogLevelDebug:
		return charm.DebugLevel
	case LogLevelWarning:
		return charm.WarnLevel
	case LogLevelOff:
		return offLevel
	default:
		return charm.InfoLevel
	}
}

// Configure builds the default logger from the configured level and file.
// The returned closer releases the log file, if one was opened.
func Configure(level string, file string) (io.Closer, error) {
	logLevel, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		out    io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)

	switch strings.TrimSpace(file) {
	case "", "/dev/stderr":
	case "/dev/stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(file, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", file, err)
		}
		out = f
		closer = f
	}

	l := NewWithOutput(out)
	l.SetLevel(logLevel.CharmLevel())
	SetDefault(l)

	return closer, nil
}
