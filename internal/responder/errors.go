// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package responder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// ErrorKind classifies a completion request failure. Every failure path
// maps to exactly one kind; callers branch on data, not on provider
// exception types.
type ErrorKind string

const (
	KindTimeout        ErrorKind = "timeout"
	KindAPIError       ErrorKind = "api_error"
	KindConnection     ErrorKind = "connection_error"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindAuthentication ErrorKind = "authentication_error"
	KindPermission     ErrorKind = "permission_error"
	KindRateLimit      ErrorKind = "rate_limit_error"
	KindUnknown        ErrorKind = "unknown"
)

// Retryable reports whether a failure of this kind may succeed on a
// later attempt.
func (k ErrorKind) Retryable() bool {
	return k == KindTimeout || k == KindRateLimit
}

// Sentinel errors for the common failure kinds.
var (
	ErrNotConfigured = errors.New("API key not configured")
	ErrTimeout       = errors.New("request timed out")
	ErrRateLimited   = errors.New("rate limited")
	ErrAuthFailed    = errors.New("authentication failed")
)

// =============================================================================
// REQUEST ERROR
// =============================================================================

// RequestError is the typed failure returned by Client.Fetch. Message is
// always human-readable and safe to surface inline.
type RequestError struct {
	Kind    ErrorKind
	Message string
	Status  int // HTTP status, 0 when the request never completed
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// Notice returns the text recorded in the transcript for this failure.
func (e *RequestError) Notice() string {
	return "Error: " + e.Message
}

// KindOf extracts the error kind from any error returned by this
// package. Unrecognized errors report KindUnknown.
func KindOf(err error) ErrorKind {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind
	}
	return KindUnknown
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// classifyStatus maps an HTTP error status to an error kind.
func classifyStatus(status int) ErrorKind {
	switch {
	case status == 400 || status == 404 || status == 422:
		return KindInvalidRequest
	case status == 401:
		return KindAuthentication
	case status == 403:
		return KindPermission
	case status == 408:
		return KindTimeout
	case status == 429:
		return KindRateLimit
	case status >= 500 && status < 600:
		return KindAPIError
	default:
		return KindUnknown
	}
}

// classifyTransport maps a transport-level error (no HTTP response) to a
// RequestError.
func classifyTransport(err error) *RequestError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Kind: KindTimeout, Message: "request timed out", Err: ErrTimeout}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &RequestError{Kind: KindTimeout, Message: "request timed out", Err: ErrTimeout}
		}
		return &RequestError{
			Kind:    KindConnection,
			Message: "could not reach the completion endpoint",
			Err:     err,
		}
	}

	return &RequestError{Kind: KindUnknown, Message: err.Error(), Err: err}
}
