// Package log provides structured logging for the WebR client.
//
// Package: log
// Title: Foundation Structured Logging
// Description: Structured logger with levels, contextual fields, request IDs
//              and JSON, text, console and logfmt output. Errors from the
//              foundation error package are logged with their code and
//              severity.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-24
// Modified: 2026-10-17
//
// Change History:
// - 2025-01-24 v0.1.0: Initial implementation with structured logging and error integration
// - 2026-10-17 v0.2.0: Dropped async buffering and audit trails
//
// Usage:
//
//	logger := log.NewWithConfig(log.Config{Level: log.LevelInfo, Format: log.FormatJSON, Name: "webr"})
//	logger.WithRequestID("req-123").Info("execute finished", log.Fields{
//		"duration_ms": 1234,
//		"plots":       2,
//	})
package log
