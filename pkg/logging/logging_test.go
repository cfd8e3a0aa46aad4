package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}

	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogLevel_String(t *testing.T) {
	if LevelDebug.String() != "DEBUG" || LevelError.String() != "ERROR" {
		t.Error("Unexpected level strings")
	}
}

func TestLogging_SubsystemAndLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("OAuth", "should be filtered")
	Info("OAuth", "issued token for user %s", "4001")
	Error("HTTP", errors.New("boom"), "request failed")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Error("Debug message logged at info level")
	}
	if !strings.Contains(out, "issued token for user 4001") {
		t.Errorf("Missing info message: %s", out)
	}
	if !strings.Contains(out, "subsystem=OAuth") {
		t.Errorf("Missing subsystem attribute: %s", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("Missing error attribute: %s", out)
	}
}
