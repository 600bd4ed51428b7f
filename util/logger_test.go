package util

import (
	"bytes"
	"strconv"
	"strings"
	"testing"
)

// TestLogger_Verbosity checks which calls print at each -v level.
func TestLogger_Verbosity(t *testing.T) {
	tests := []struct {
		verbosity int
		want      []string
	}{
		{0, []string{"ERR"}},
		{1, []string{"ERR", "WRN", "INF"}},
		{2, []string{"ERR", "WRN", "INF", "DBG"}},
		{3, []string{"ERR", "WRN", "INF", "DBG", "TRC"}},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.verbosity), func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogger(tt.verbosity)
			l.SetOutput(&buf)
			l.SetTimestamps(false)

			l.Error("rcon: giving up")
			l.Warn("rcon: connection lost")
			l.Info("rcon: reconnected")
			l.Verbose("rcon: connecting")
			l.Debug("rcon: sending credential=<redacted>")

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if len(lines) != len(tt.want) {
				t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(tt.want), buf.String())
			}
			for i, level := range tt.want {
				if !strings.Contains(lines[i], level) {
					t.Errorf("line %d %q missing level %q", i, lines[i], level)
				}
			}
		})
	}
}

func TestLogger_Timestamps(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)
	l.SetTimestamps(true)

	l.Info("test")

	output := buf.String()
	// Timestamp format is "HH:MM:SS.mmm"
	if strings.Count(output, ":") < 2 || len(output) < 15 {
		t.Errorf("expected timestamp prefix, got %q", output)
	}
}

func TestLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(1)
	l.SetOutput(&buf)
	l.SetTimestamps(false)

	l.With("conn", "abc123").Info("connected")

	if !strings.Contains(buf.String(), "conn=abc123") {
		t.Errorf("expected conn field, got %q", buf.String())
	}

	buf.Reset()
	l.Info("parent")
	if strings.Contains(buf.String(), "conn=") {
		t.Errorf("parent logger picked up child field: %q", buf.String())
	}
}

func TestLogger_Nil(t *testing.T) {
	var l *Logger
	// None of these may panic.
	l.Info("x")
	l.Warn("x")
	l.Verbose("x")
	l.Debug("x")
	l.Error("x")
	if l.With("k", "v") != nil {
		t.Error("With on nil logger should return nil")
	}
	if l.Level() != LogQuiet {
		t.Error("nil logger should report quiet level")
	}
}
