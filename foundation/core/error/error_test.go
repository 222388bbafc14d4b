// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes and severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-17 v0.2.0: Coder interface and exit code tests

package error

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type codedError struct{ code Code }

func (e codedError) Error() string { return "coded: " + string(e.code) }
func (e codedError) Code() Code    { return e.code }

func TestNew(t *testing.T) {
	err := New("test error message")

	if err.Error() != "test error message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "test error message")
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{
			name:    "wrap nil error",
			err:     nil,
			message: "wrapper",
			wantNil: true,
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original"),
			message:  "wrapper",
			wantMsg:  "wrapper: original",
			wantCode: CodeUnknown,
		},
		{
			name:     "wrap coded error inherits code",
			err:      codedError{code: CodeServiceTimeout},
			message:  "execute failed",
			wantMsg:  "execute failed: coded: SERVICE_TIMEOUT",
			wantCode: CodeServiceTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Errorf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if got.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got.Code(), tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match cause with errors.Is")
			}
		})
	}
}

func TestWithCode_SetsSeverity(t *testing.T) {
	err := New("unreachable").WithCode(CodeNetworkError)
	if err.Severity() != SeverityHigh {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityHigh)
	}

	explicit := New("unreachable").WithSeverity(SeverityCritical).WithCode(CodeNetworkError)
	if explicit.Severity() != SeverityCritical {
		t.Errorf("explicit severity overwritten: got %v", explicit.Severity())
	}
}

func TestGetCode_Chain(t *testing.T) {
	inner := codedError{code: CodeInvalidFormat}
	wrapped := fmt.Errorf("decode: %w", inner)

	if got := GetCode(wrapped); got != CodeInvalidFormat {
		t.Errorf("GetCode() = %v, want %v", got, CodeInvalidFormat)
	}
	if !HasCode(wrapped, CodeInvalidFormat) {
		t.Error("HasCode() should find code through fmt wrapping")
	}
	if HasCode(nil, CodeUnknown) {
		t.Error("HasCode(nil) should be false")
	}
	if got := GetCode(errors.New("plain")); got != CodeUnknown {
		t.Errorf("GetCode(plain) = %v, want %v", got, CodeUnknown)
	}
}

func TestGetSeverity(t *testing.T) {
	if got := GetSeverity(codedError{code: CodeExecutionFailed}); got != SeverityLow {
		t.Errorf("GetSeverity() = %v, want %v", got, SeverityLow)
	}
	if got := GetSeverity(New("x").WithSeverity(SeverityCritical)); got != SeverityCritical {
		t.Errorf("GetSeverity() = %v, want %v", got, SeverityCritical)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(errors.New("boom"), "save plot").
		WithCode(CodeStorageError).
		WithOperation("store").
		WithRequestID("req-1").
		WithDetail("name", "plot_1.png")

	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("Marshal() error = %v", jerr)
	}

	var decoded map[string]interface{}
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatalf("Unmarshal() error = %v", jerr)
	}
	if decoded["code"] != string(CodeStorageError) {
		t.Errorf("code = %v, want %v", decoded["code"], CodeStorageError)
	}
	if decoded["cause"] != "boom" {
		t.Errorf("cause = %v, want boom", decoded["cause"])
	}
	if decoded["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", decoded["request_id"])
	}
}

func TestString(t *testing.T) {
	s := New("failed").WithCode(CodeConfigError).WithDetail("b", 2).WithDetail("a", 1).String()
	if !strings.Contains(s, "Details: {a=1, b=2}") {
		t.Errorf("String() details not sorted: %q", s)
	}
	if !strings.Contains(s, "Code: CONFIG_ERROR") {
		t.Errorf("String() missing code: %q", s)
	}
}

func TestCode_Category(t *testing.T) {
	tests := []struct {
		code     Code
		category string
		exit     int
	}{
		{CodeServiceTimeout, "transport", 2},
		{CodeNetworkError, "transport", 2},
		{CodeInvalidFormat, "validation", 3},
		{CodeExecutionFailed, "execution", 4},
		{CodeInvalidConfig, "configuration", 1},
		{CodeStorageError, "storage", 1},
		{CodeUnknown, "generic", 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Category(); got != tt.category {
				t.Errorf("Category() = %v, want %v", got, tt.category)
			}
			if got := tt.code.ExitCode(); got != tt.exit {
				t.Errorf("ExitCode() = %v, want %v", got, tt.exit)
			}
			if !tt.code.IsValid() {
				t.Errorf("IsValid() = false for %v", tt.code)
			}
		})
	}

	if Code("BOGUS").IsValid() {
		t.Error("IsValid() should be false for unknown code")
	}
}

func TestSeverity_String(t *testing.T) {
	tests := map[Severity]string{
		SeverityLow:      "low",
		SeverityMedium:   "medium",
		SeverityHigh:     "high",
		SeverityCritical: "critical",
		Severity(42):     "unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Severity(%d).String() = %v, want %v", s, got, want)
		}
	}
	if !SeverityHigh.ShouldAlert() || SeverityMedium.ShouldAlert() {
		t.Error("ShouldAlert() threshold should be SeverityHigh")
	}
}
