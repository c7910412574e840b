// Package errors provides the typed error values returned by uploads.
// Every failure carries a machine-readable code, a human-readable message,
// an HTTP status hint and a retryable flag, so callers can tell policy
// rejections (client-correctable) apart from backend and I/O failures.
package errors
