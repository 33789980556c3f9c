// Package errors defines domain-level errors used throughout the application.
// These errors represent business logic failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// Unmapped errors returned from API endpoints will default to HTTP 500 Internal Server Error,
// so new errors added here should also be handled in mapError (internal/daemon/api_server.go).
package errors

import (
	"errors"
)

var (
	// ErrBadRequest indicates that the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")

	// ErrServerNotFound indicates that no metrics or health state is tracked for the named server.
	// Recommended to map to HTTP 404 Not Found.
	ErrServerNotFound = errors.New("server not found")

	// ErrNoProbeResults indicates that a record or aggregation was attempted with neither an
	// MCP nor a REST probe result present, so no server name could be derived.
	// Recommended to map to HTTP 400 Bad Request.
	ErrNoProbeResults = errors.New("no probe results supplied")

	// ErrInvalidTimeWindow indicates that a report was requested over an unrecognized window.
	// Recommended to map to HTTP 400 Bad Request.
	ErrInvalidTimeWindow = errors.New("invalid time window")

	// ErrInvalidConfig indicates that aggregation or retention configuration failed validation.
	// The aggregator recovers by falling back to defaults; this error is surfaced only from
	// explicit validation entry points.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrSnapshotImport indicates that a collector state snapshot could not be restored.
	ErrSnapshotImport = errors.New("snapshot import failed")
)
