package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	charm "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		hasError bool
	}{
		{"Trace", LogLevelTrace, false},
		{"Debug", LogLevelDebug, false},
		{"Info", LogLevelInfo, false},
		{"Warning", LogLevelWarning, false},
		{"Off", LogLevelOff, false},
		{"", LogLevelInfo, false},
		{"trace", "", true},
		{"Invalid", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLogLevel(tt.input)
			if tt.hasError {
				assert.ErrorIs(t, err, ErrInvalidLogLevel)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestLogLevel_CharmLevel(t *testing.T) {
	assert.Equal(t, TraceLevel, LogLevelTrace.CharmLevel())
	assert.Equal(t, charm.DebugLevel, LogLevelDebug.CharmLevel())
	assert.Equal(t, charm.InfoLevel, LogLevelInfo.CharmLevel())
	assert.Equal(t, charm.WarnLevel, LogLevelWarning.CharmLevel())
	assert.Greater(t, int(LogLevelOff.CharmLevel()), int(charm.FatalLevel))
}

func TestTraceLevel_RelativeToDebug(t *testing.T) {
	assert.Equal(t, charm.DebugLevel-1, TraceLevel)
}

func TestLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf)
	l.SetLevel(TraceLevel)

	l.Trace("test trace message", "file", "group_vars/all.yml")

	assert.Contains(t, buf.String(), "test trace message")
	assert.Contains(t, buf.String(), "group_vars/all.yml")
}

func TestLogger_TraceHiddenAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithOutput(&buf)
	l.SetLevel(charm.DebugLevel)

	l.Trace("should not appear")

	assert.Empty(t, buf.String())
}

func TestLogger_GetLevelString(t *testing.T) {
	l := New()

	l.SetLevel(TraceLevel)
	assert.Equal(t, "trace", l.GetLevelString())

	l.SetLevel(charm.DebugLevel)
	assert.Equal(t, "debug", strings.ToLower(l.GetLevelString()))

	l.SetLevel(LogLevelOff.CharmLevel())
	assert.Equal(t, "off", l.GetLevelString())
}

func TestPackageLevelFunctions(t *testing.T) {
	oldLogger := Default()
	defer SetDefault(oldLogger)

	var buf bytes.Buffer
	testLogger := NewWithOutput(&buf)
	testLogger.SetLevel(TraceLevel)
	SetDefault(testLogger)

	Trace("package level trace")
	Debug("package level debug")
	Info("package level info")
	Warn("package level warn")
	Error("package level error")

	for _, msg := range []string{"trace", "debug", "info", "warn", "error"} {
		assert.Contains(t, buf.String(), "package level "+msg)
	}
}

func TestSetDefault_IgnoresNil(t *testing.T) {
	current := Default()
	SetDefault(nil)
	assert.Same(t, current, Default())
}

func TestConfigure_File(t *testing.T) {
	oldLogger := Default()
	defer SetDefault(oldLogger)

	logFile := filepath.Join(t.TempDir(), "ansible-variables.log")

	closer, err := Configure("Debug", logFile)
	require.NoError(t, err)

	Debug("written to file", "host", "web1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "web1")
}

func TestConfigure_InvalidLevel(t *testing.T) {
	_, err := Configure("Loud", "")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestLogStyles(t *testing.T) {
	styles := getLogStyles()

	assert.NotEqual(t, lipgloss.Style{}, styles.Levels[TraceLevel])
	assert.Contains(t, styles.Levels[TraceLevel].Render(), "TRCE")
	assert.Contains(t, styles.Levels[charm.WarnLevel].Render(), "WARN")
	assert.Contains(t, styles.Keys, "host")
	assert.Contains(t, styles.Keys, "err")
}
