package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies an upstream API failure. The set is closed so the
// presentation layer can switch exhaustively on kind.
type ErrorKind string

const (
	ErrorUnauthorized ErrorKind = "unauthorized"        // Invalid or expired credentials.
	ErrorRateLimited  ErrorKind = "rate_limited"        // Forbidden due to rate limiting; may carry a reset time.
	ErrorForbidden    ErrorKind = "forbidden"           // Forbidden for permission reasons.
	ErrorNotFound     ErrorKind = "not_found"
	ErrorServer       ErrorKind = "server_error" // Upstream 5xx.
	ErrorNetwork      ErrorKind = "network_unreachable" // Transport-level failure.
	ErrorMalformed    ErrorKind = "malformed_response"  // Response body could not be decoded.
	ErrorUnknown      ErrorKind = "unknown"
)

// APIError is a classified upstream failure.
type APIError struct {
	Kind ErrorKind
	// RateLimitReset is the time the limit resets, when the response metadata
	// made it derivable. Zero otherwise; only meaningful for ErrorRateLimited.
	RateLimitReset time.Time
	Err            error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from an error chain, defaulting to
// ErrorUnknown when no APIError is present.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrorUnknown
}

// RateLimitResetOf returns the reset time carried by a rate-limited error in
// the chain, or the zero time when none is available.
func RateLimitResetOf(err error) time.Time {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Kind == ErrorRateLimited {
		return apiErr.RateLimitReset
	}
	return time.Time{}
}
