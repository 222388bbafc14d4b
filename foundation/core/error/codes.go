// File: codes.go
// Title: Error Codes
// Description: Machine-readable error codes and their categories.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation
// - 2026-10-17 v0.2.0: Client code set, exit code mapping

package error

// Code is a machine-readable error classification
type Code string

const (
	// Generic
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeTimeout      Code = "TIMEOUT"
	CodeCanceled     Code = "CANCELED"

	// Remote service
	CodeServiceUnavailable    Code = "SERVICE_UNAVAILABLE"
	CodeNetworkError          Code = "NETWORK_ERROR"
	CodeServiceTimeout        Code = "SERVICE_TIMEOUT"
	CodeServiceInitialization Code = "SERVICE_INITIALIZATION"
	CodeExternalServiceError  Code = "EXTERNAL_SERVICE_ERROR"

	// Remote execution outcome
	CodeExecutionFailed Code = "EXECUTION_FAILED"

	// Configuration
	CodeConfigError   Code = "CONFIG_ERROR"
	CodeMissingConfig Code = "MISSING_CONFIG"
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// Validation and decoding
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeRequiredField    Code = "REQUIRED_FIELD"
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeValueOutOfRange  Code = "VALUE_OUT_OF_RANGE"

	// Storage
	CodeStorageError Code = "STORAGE_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput, CodeTimeout, CodeCanceled,
		CodeServiceUnavailable, CodeNetworkError, CodeServiceTimeout, CodeServiceInitialization, CodeExternalServiceError,
		CodeExecutionFailed,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig,
		CodeValidationFailed, CodeRequiredField, CodeInvalidFormat, CodeValueOutOfRange,
		CodeStorageError:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeServiceUnavailable, CodeNetworkError, CodeServiceTimeout, CodeServiceInitialization,
		CodeExternalServiceError, CodeTimeout, CodeCanceled:
		return "transport"
	case CodeExecutionFailed:
		return "execution"
	case CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return "configuration"
	case CodeValidationFailed, CodeRequiredField, CodeInvalidFormat, CodeValueOutOfRange:
		return "validation"
	case CodeStorageError:
		return "storage"
	default:
		return "generic"
	}
}

// ExitCode returns the process exit code used by command line tools
func (c Code) ExitCode() int {
	switch c.Category() {
	case "transport":
		return 2
	case "validation":
		return 3
	case "execution":
		return 4
	default:
		return 1
	}
}
