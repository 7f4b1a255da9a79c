package payment

import "errors"

var (
	// ErrGatewayUnavailable means the processor could not be reached or
	// answered with a server error. Safe to retry with backoff.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrInvalidRequest means the charge request was malformed (non-positive
	// amount, unknown currency). Not retried.
	ErrInvalidRequest = errors.New("invalid payment request")

	// ErrNotFound means the processor does not know the transaction reference.
	ErrNotFound = errors.New("transaction not found")

	// ErrPendingRetry means the transaction has not reached a terminal status
	// yet, or the request timed out after possibly reaching the processor.
	// Callers retry with backoff; this is never a terminal failure.
	ErrPendingRetry = errors.New("transaction still pending")
)
