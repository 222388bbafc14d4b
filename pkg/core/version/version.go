// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     version
// Description: Central version management for the client and its components
// Author:      Mike Stoffels
// Created:     2025-12-06
// License:     MIT
// ============================================================================

package version

// Version constants for the WebR client
const (
	// Client release version
	Client = "1.0.0"

	// Component versions
	Protocol = "1.0.0"
	Sink     = "1.0.0"
	Records  = "1.0.0"
	CLI      = "1.0.0"
)

// ComponentVersion returns the version for a given component name
func ComponentVersion(name string) string {
	switch name {
	case "protocol", "webr":
		return Protocol
	case "sink":
		return Sink
	case "records":
		return Records
	case "cli":
		return CLI
	default:
		return Client
	}
}

// UserAgent returns the default HTTP user agent of the client
func UserAgent() string {
	return "webr-go/" + Client
}
