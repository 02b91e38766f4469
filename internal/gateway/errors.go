package gateway

import "errors"

var (
	// ErrTransport marks timeouts and unreachable-host failures. Retryable
	// by the caller; the client itself never retries.
	ErrTransport = errors.New("gateway unreachable")

	// ErrAccessDenied marks a signature or credential rejection by the
	// gateway. Not retryable.
	ErrAccessDenied = errors.New("gateway access denied")

	// ErrRejected marks any other gateway-reported failure.
	ErrRejected = errors.New("gateway rejected operation")
)
