package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/felixgeelhaar/hostprep/internal/ports"
)

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelInfo))

	logger.Debug(context.Background(), "hidden")
	logger.Info(context.Background(), "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("info message should be written")
	}
}

func TestConsoleLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithLevel(ports.LevelInfo))

	logger.SetLevel(ports.LevelDebug)
	logger.Debug(context.Background(), "now visible")

	if !strings.Contains(buf.String(), "now visible") {
		t.Error("debug message should pass after SetLevel")
	}
	if logger.Level() != ports.LevelDebug {
		t.Errorf("Level() = %v, want LevelDebug", logger.Level())
	}
}

func TestConsoleLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf))

	logger.Info(context.Background(), "step done", ports.F("step", "pkg:install:curl"), ports.F("code", 0))

	out := buf.String()
	if !strings.Contains(out, "step=pkg:install:curl") {
		t.Errorf("field missing: %q", out)
	}
	if !strings.Contains(out, "code=0") {
		t.Errorf("field missing: %q", out)
	}
}

func TestConsoleLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf), WithJSONFormat(true))

	logger.Error(context.Background(), "step failed", ports.F("step", "sshd:reload"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "step failed" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["level"] != "ERROR" {
		t.Errorf("level = %v", entry["level"])
	}
	if entry["step"] != "sshd:reload" {
		t.Errorf("step = %v", entry["step"])
	}
}

func TestConsoleLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLogger(WithOutput(&buf))

	child := logger.With(ports.F("run_id", "abc"))
	child.Info(context.Background(), "started")

	if !strings.Contains(buf.String(), "run_id=abc") {
		t.Errorf("inherited field missing: %q", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNopLogger()
	// Must be safe to call with no output configured.
	logger.Info(context.Background(), "ignored")
	logger.Error(context.Background(), "ignored")
	if child := logger.With(ports.F("k", "v")); child == nil {
		t.Error("With() should return a logger")
	}
}
