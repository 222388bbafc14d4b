package webr

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	mdwerror "github.com/msto63/webr/foundation/core/error"
)

func TestTransportError_Code(t *testing.T) {
	tests := []struct {
		name string
		err  *TransportError
		code mdwerror.Code
		exit int
	}{
		{"timeout", &TransportError{Kind: KindTimeout}, mdwerror.CodeServiceTimeout, 2},
		{"unreachable", &TransportError{Kind: KindUnreachable}, mdwerror.CodeNetworkError, 2},
		{"canceled", &TransportError{Kind: KindCanceled}, mdwerror.CodeCanceled, 2},
		{"500", &TransportError{Kind: KindStatus, StatusCode: 500}, mdwerror.CodeExternalServiceError, 2},
		{"503", &TransportError{Kind: KindStatus, StatusCode: 503}, mdwerror.CodeServiceUnavailable, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Code(); got != tt.code {
				t.Errorf("Code() = %v, want %v", got, tt.code)
			}
			if got := mdwerror.GetCode(fmt.Errorf("wrapped: %w", tt.err)); got != tt.code {
				t.Errorf("GetCode(wrapped) = %v, want %v", got, tt.code)
			}
			if got := tt.err.Code().ExitCode(); got != tt.exit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.exit)
			}
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	err := &TransportError{Op: "execute", URL: "http://x/api/execute", Kind: KindStatus, StatusCode: 502, Body: []byte(strings.Repeat("b", 300))}

	msg := err.Error()
	if !strings.Contains(msg, "status 502") {
		t.Errorf("Error() = %q, want status", msg)
	}
	if !strings.HasSuffix(msg, "...") {
		t.Errorf("Error() = %q, want truncated body", msg)
	}
}

func TestDecodeError_Code(t *testing.T) {
	missingErr := missing("decode result", "success")
	if got := mdwerror.GetCode(missingErr); got != mdwerror.CodeRequiredField {
		t.Errorf("GetCode(missing) = %v, want REQUIRED_FIELD", got)
	}

	typeErr := wrongType("decode result", "plots", "array")
	if got := mdwerror.GetCode(typeErr); got != mdwerror.CodeInvalidFormat {
		t.Errorf("GetCode(wrongType) = %v, want INVALID_FORMAT", got)
	}
	if mdwerror.GetCode(typeErr).ExitCode() != 3 {
		t.Errorf("decode errors should exit with 3")
	}
}

func TestDecodeError_Error(t *testing.T) {
	tests := []struct {
		err  *DecodeError
		want string
	}{
		{&DecodeError{Op: "decode result", Index: -1, Err: ErrMalformedResponse}, "decode result: malformed response"},
		{&DecodeError{Op: "decode result", Field: "success", Index: -1, Err: ErrMissingField}, "decode result: success: missing required field"},
		{&DecodeError{Op: "decode artifact", Field: "plots", Index: 2, Err: ErrInvalidBase64}, "decode artifact: plots[2]: invalid base64 artifact"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestExecutionError(t *testing.T) {
	err := &ExecutionError{Message: "object 'x' not found"}

	if err.Error() != "R error: object 'x' not found" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, ErrExecutionFailed) {
		t.Error("ExecutionError should match ErrExecutionFailed")
	}
	if err.Code().ExitCode() != 4 {
		t.Errorf("ExitCode() = %d, want 4", err.Code().ExitCode())
	}
}

func TestRequestError_Code(t *testing.T) {
	cfgErr := &RequestError{Field: "base_url", Err: fmt.Errorf("%w: bad", ErrInvalidConfig)}
	if cfgErr.Code() != mdwerror.CodeInvalidConfig {
		t.Errorf("Code() = %v, want INVALID_CONFIG", cfgErr.Code())
	}

	recErr := &RequestError{Field: "data[0].x", Err: ErrInvalidRecord}
	if recErr.Code() != mdwerror.CodeInvalidInput {
		t.Errorf("Code() = %v, want INVALID_INPUT", recErr.Code())
	}
	if recErr.Error() != "data[0].x: record is not JSON-representable" {
		t.Errorf("Error() = %q", recErr.Error())
	}
}
