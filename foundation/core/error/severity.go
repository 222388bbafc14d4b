// File: severity.go
// Title: Error Severity
// Description: Severity levels used to choose log levels and alerting.
// Author: msto63
// Version: v0.1.0
// Created: 2025-01-24
// Modified: 2025-01-24
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation

package error

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow indicates a minor error, e.g. invalid user input
	SeverityLow Severity = iota

	// SeverityMedium indicates an error with a workaround, e.g. a service still warming up
	SeverityMedium

	// SeverityHigh indicates a serious error, e.g. the remote service is unreachable
	SeverityHigh

	// SeverityCritical indicates the system is unusable
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ShouldAlert returns true if this severity level should trigger alerts
func (s Severity) ShouldAlert() bool {
	return s >= SeverityHigh
}

// SeverityFromCode determines an appropriate severity for an error code
func SeverityFromCode(code Code) Severity {
	switch code {
	case CodeInvalidInput, CodeValidationFailed, CodeRequiredField, CodeValueOutOfRange,
		CodeExecutionFailed, CodeCanceled:
		return SeverityLow
	case CodeServiceInitialization, CodeServiceTimeout, CodeTimeout, CodeInvalidFormat,
		CodeConfigError, CodeMissingConfig, CodeInvalidConfig:
		return SeverityMedium
	case CodeServiceUnavailable, CodeNetworkError, CodeExternalServiceError, CodeStorageError:
		return SeverityHigh
	case CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
