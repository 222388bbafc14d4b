// Package error provides coded, severity-tagged errors for the WebR client.
//
// Package: error
// Title: Foundation Error Handling
// Description: Structured errors with a machine-readable code, a severity,
//              an operation name and free-form details. Core packages return
//              their own typed errors; this package is used at the boundaries
//              (CLI, logging) where errors are classified and reported.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with contextual errors and codes
// - 2026-10-17 v0.2.0: Reduced code set to client concerns, added execution and storage codes
//
// Usage:
//
//	err := error.Wrap(cause, "execute failed").
//		WithCode(error.CodeServiceTimeout).
//		WithOperation("execute").
//		WithDetail("endpoint", "/api/execute")
//
//	if error.HasCode(err, error.CodeServiceTimeout) {
//		// retry later
//	}
package error
