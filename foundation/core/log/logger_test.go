// File: logger_test.go
// Title: Logger Tests
// Description: Tests for logger configuration, context fields and formatters.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-17 v0.2.0: Derived logger tests

package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mdwerror "github.com/msto63/webr/foundation/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func decodeLine(t *testing.T, line string) map[string]interface{} {
	t.Helper()
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return data
}

func TestNew(t *testing.T) {
	logger := New()

	if logger == nil {
		t.Fatal("New() should not return nil")
	}
	if logger.GetLevel() != DefaultLevel() {
		t.Errorf("New() level = %v, want %v", logger.GetLevel(), DefaultLevel())
	}
}

func TestNewWithConfig(t *testing.T) {
	logger, _ := newBufferLogger(LevelError, FormatText)

	if logger.GetLevel() != LevelError {
		t.Errorf("level = %v, want %v", logger.GetLevel(), LevelError)
	}
	if logger.Name() != "test" {
		t.Errorf("name = %v, want test", logger.Name())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatJSON)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown")
	logger.Error("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if got := decodeLine(t, lines[0])["level"]; got != "warn" {
		t.Errorf("level = %v, want warn", got)
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	derived := logger.WithField("endpoint", "/api/execute").WithRequestID("req-42")
	derived.Info("execute finished", Fields{"plots": 2})

	data := decodeLine(t, strings.TrimSpace(buf.String()))
	if data["endpoint"] != "/api/execute" {
		t.Errorf("endpoint = %v", data["endpoint"])
	}
	if data["request_id"] != "req-42" {
		t.Errorf("request_id = %v", data["request_id"])
	}
	if data["plots"] != float64(2) {
		t.Errorf("plots = %v", data["plots"])
	}
	if data["logger"] != "test" {
		t.Errorf("logger = %v", data["logger"])
	}

	buf.Reset()
	logger.Info("parent unchanged")
	if strings.Contains(buf.String(), "endpoint") {
		t.Error("WithField must not modify the parent logger")
	}
}

func TestLogger_DurationField(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	logger.Info("done", Fields{"duration": 1500 * time.Millisecond})

	data := decodeLine(t, strings.TrimSpace(buf.String()))
	if data["duration_ms"] != float64(1500) {
		t.Errorf("duration_ms = %v, want 1500", data["duration_ms"])
	}
	if _, ok := data["duration"]; ok {
		t.Error("duration field should be moved to duration_ms")
	}
}

func TestLogger_LogError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantLevel string
	}{
		{"low severity", mdwerror.New("failed").WithCode(mdwerror.CodeExecutionFailed), "info"},
		{"medium severity", mdwerror.New("timeout").WithCode(mdwerror.CodeServiceTimeout), "warn"},
		{"high severity", mdwerror.New("down").WithCode(mdwerror.CodeNetworkError), "error"},
		{"plain error", errors.New("plain"), "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelTrace, FormatJSON)
			logger.LogError(tt.err)

			data := decodeLine(t, strings.TrimSpace(buf.String()))
			if data["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %v", data["level"], tt.wantLevel)
			}
			if data["error"] != tt.err.Error() {
				t.Errorf("error = %v, want %v", data["error"], tt.err.Error())
			}
		})
	}

	logger, buf := newBufferLogger(LevelTrace, FormatJSON)
	logger.LogError(nil)
	if buf.Len() != 0 {
		t.Error("LogError(nil) should not log")
	}
}

func TestLogger_Nop(t *testing.T) {
	logger := NewNop()
	logger.Error("nothing")
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("nop logger should not enable any level")
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatJSON)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			logger.WithField("n", n).Info("concurrent")
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, line := range lines {
		decodeLine(t, line)
	}
}
