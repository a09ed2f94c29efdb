package lib

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultLogger(t *testing.T) {
	// pre-define expected
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   os.Stdout,
	})
	// execute the function call
	got := NewDefaultLogger()
	// compare got vs expected
	require.Equal(t, expected, got)
}

func TestNewNullLogger(t *testing.T) {
	// pre-define expected
	expected := NewLogger(LoggerConfig{
		Level: DebugLevel,
		Out:   io.Discard,
	})
	// execute the function call
	got := NewNullLogger()
	// compare got vs expected
	require.Equal(t, expected, got)
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name     string
		detail   string
		level    int32
		log      func(l LoggerI)
		expected string
	}{
		{
			name:     "info",
			detail:   "info is written at info level",
			level:    InfoLevel,
			log:      func(l LoggerI) { l.Info("arg1 arg2") },
			expected: colorString(GREEN, "INFO: arg1 arg2"),
		},
		{
			name:     "debug formatted",
			detail:   "debugf is written at debug level",
			level:    DebugLevel,
			log:      func(l LoggerI) { l.Debugf("%s %s", "arg1", "arg2") },
			expected: colorString(BLUE, "DEBUG: arg1 arg2"),
		},
		{
			name:     "warn formatted",
			detail:   "warnf is written at info level",
			level:    InfoLevel,
			log:      func(l LoggerI) { l.Warnf("%s %s", "arg1", "arg2") },
			expected: colorString(YELLOW, "WARN: arg1 arg2"),
		},
		{
			name:     "error",
			detail:   "error is written at error level",
			level:    ErrorLevel,
			log:      func(l LoggerI) { l.Error("arg1 arg2") },
			expected: colorString(RED, "ERROR: arg1 arg2"),
		},
		{
			name:     "debug filtered",
			detail:   "debug is dropped at info level",
			level:    InfoLevel,
			log:      func(l LoggerI) { l.Debug("arg1 arg2") },
			expected: "",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			// create a logger that writes to the buffer
			logger := NewLogger(LoggerConfig{Level: test.level, Out: buf})
			// execute the function call
			test.log(logger)
			// validate the output
			if test.expected == "" {
				require.Empty(t, buf.String())
				return
			}
			require.Contains(t, buf.String(), test.expected)
		})
	}
}

func TestLoggerNamed(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	// create a parent logger
	parent := NewLogger(LoggerConfig{Level: DebugLevel, Out: buf})
	// derive a module logger
	named := parent.Named("signer")
	named.Info("signed")
	// the module tag is written
	require.Contains(t, buf.String(), colorString(GRAY, "[signer]"))
	// the parent is untouched
	buf.Reset()
	parent.Info("plain")
	require.NotContains(t, buf.String(), "[signer]")
}
