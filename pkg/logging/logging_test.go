package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LevelDebug,
		"DEBUG":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"bogus":   LevelInfo,
	}
	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestSubsystemAttribute(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Info("OAuth", "configured %d clients", 2)
	Error("Server", errors.New("boom"), "startup failed")

	out := buf.String()
	if !strings.Contains(out, "subsystem=OAuth") {
		t.Errorf("missing subsystem attribute: %s", out)
	}
	if !strings.Contains(out, "configured 2 clients") {
		t.Errorf("missing formatted message: %s", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("missing error attribute: %s", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)

	Debug("Test", "hidden")
	Info("Test", "hidden too")
	Warn("Test", "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info leaked through warn level: %s", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %s", out)
	}
}
