// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     webr
// Description: Typed error taxonomy of the execution protocol client
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package webr

import (
	"errors"
	"fmt"

	mdwerror "github.com/msto63/webr/foundation/core/error"
)

// Sentinel errors. Match them with errors.Is.
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingField      = errors.New("missing required field")
	ErrWrongType         = errors.New("wrong field type")
	ErrInvalidBase64     = errors.New("invalid base64 artifact")
	ErrInvalidImage      = errors.New("artifact is not a decodable image")
	ErrExecutionFailed   = errors.New("remote execution failed")
	ErrInvalidRecord     = errors.New("record is not JSON-representable")
	ErrInvalidConfig     = errors.New("invalid client configuration")
)

// TransportKind classifies a transport failure
type TransportKind int

const (
	// KindUnreachable covers DNS, connect and read failures
	KindUnreachable TransportKind = iota
	// KindTimeout means the per-call deadline expired
	KindTimeout
	// KindStatus means a response arrived with a non-2xx status
	KindStatus
	// KindCanceled means the caller canceled the context
	KindCanceled
	// KindOversize means the body exceeded the response size limit
	KindOversize
)

// String returns the string representation of the kind
func (k TransportKind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindTimeout:
		return "timeout"
	case KindStatus:
		return "status"
	case KindCanceled:
		return "canceled"
	case KindOversize:
		return "oversize"
	default:
		return "unknown"
	}
}

// TransportError reports that the outcome of a call could not be learned
// because the network exchange failed.
type TransportError struct {
	Op         string
	URL        string
	Kind       TransportKind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("%s %s: request failed with status %d: %s", e.Op, e.URL, e.StatusCode, truncate(e.Body, 256))
	case KindTimeout:
		return fmt.Sprintf("%s %s: timed out: %v", e.Op, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.URL, e.Kind, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the call failed because its deadline expired
func (e *TransportError) Timeout() bool { return e.Kind == KindTimeout }

// Code maps the failure onto the shared error code set
func (e *TransportError) Code() mdwerror.Code {
	switch e.Kind {
	case KindTimeout:
		return mdwerror.CodeServiceTimeout
	case KindCanceled:
		return mdwerror.CodeCanceled
	case KindStatus:
		if e.StatusCode == 503 {
			return mdwerror.CodeServiceUnavailable
		}
		return mdwerror.CodeExternalServiceError
	default:
		return mdwerror.CodeNetworkError
	}
}

// DecodeError reports a response body that does not match the protocol.
// Index is the artifact position for per-artifact failures, -1 otherwise.
type DecodeError struct {
	Op    string
	Field string
	Index int
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Index >= 0:
		return fmt.Sprintf("%s: %s[%d]: %v", e.Op, e.Field, e.Index, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Code maps the failure onto the shared error code set
func (e *DecodeError) Code() mdwerror.Code {
	if errors.Is(e.Err, ErrMissingField) {
		return mdwerror.CodeRequiredField
	}
	return mdwerror.CodeInvalidFormat
}

// ExecutionError is returned by ExecuteOrFail when the remote execution
// reported success=false. The decoded result stays available.
type ExecutionError struct {
	Message string
	Result  *ExecutionResult
}

func (e *ExecutionError) Error() string {
	return "R error: " + e.Message
}

func (e *ExecutionError) Unwrap() error { return ErrExecutionFailed }

// Code maps the failure onto the shared error code set
func (e *ExecutionError) Code() mdwerror.Code { return mdwerror.CodeExecutionFailed }

// RequestError reports a request that could not be built
type RequestError struct {
	Field string
	Err   error
}

func (e *RequestError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *RequestError) Unwrap() error { return e.Err }

// Code maps the failure onto the shared error code set
func (e *RequestError) Code() mdwerror.Code {
	if errors.Is(e.Err, ErrInvalidConfig) {
		return mdwerror.CodeInvalidConfig
	}
	return mdwerror.CodeInvalidInput
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
