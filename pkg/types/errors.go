// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failure independently of the provider that raised it.
type ErrorKind string

const (
	KindTimeout         ErrorKind = "timeout"
	KindRateLimit       ErrorKind = "rate_limit"
	KindUnavailable     ErrorKind = "unavailable"
	KindNetwork         ErrorKind = "network"
	KindAuth            ErrorKind = "auth"
	KindInvalidRequest  ErrorKind = "invalid_request"
	KindContentRejected ErrorKind = "content_rejected"
	KindMalformed       ErrorKind = "malformed"
	KindCancelled       ErrorKind = "cancelled"
	KindInternal        ErrorKind = "internal"
)

// Transient reports whether a failure of this kind may succeed on retry.
func (k ErrorKind) Transient() bool {
	switch k {
	case KindTimeout, KindRateLimit, KindUnavailable, KindNetwork:
		return true
	}
	return false
}

// SafeMessage returns a human-readable description of the kind that does not
// carry any provider detail.
func (k ErrorKind) SafeMessage() string {
	switch k {
	case KindTimeout:
		return "the provider timed out"
	case KindRateLimit:
		return "the provider rate limit was exceeded"
	case KindUnavailable:
		return "the provider is temporarily unavailable"
	case KindNetwork:
		return "the provider could not be reached"
	case KindAuth:
		return "the provider rejected the configured credentials"
	case KindInvalidRequest:
		return "the provider rejected the request"
	case KindContentRejected:
		return "the provider refused to generate content for this topic"
	case KindMalformed:
		return "the provider returned an unusable response"
	case KindCancelled:
		return "the request was cancelled"
	}
	return "an unexpected error occurred"
}

// ProviderError is returned by search and completion clients for any failure
// of an external backend.
type ProviderError struct {
	// Provider names the backend, e.g. "tavily" or "gemini".
	Provider string

	// Op is the operation that failed, e.g. "search" or "complete".
	Op string

	// Kind classifies the failure and decides retry eligibility.
	Kind ErrorKind

	// StatusCode is the HTTP status returned by the provider, or 0.
	StatusCode int

	// Err is the underlying cause. It may contain provider response text and
	// must not be shown to end users.
	Err error
}

func (e *ProviderError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Provider, e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Transient reports whether the failed call may be retried.
func (e *ProviderError) Transient() bool { return e.Kind.Transient() }

// NewProviderError builds a ProviderError. A cause that is a context
// cancellation or deadline is reclassified so callers see the real reason.
func NewProviderError(provider, op string, kind ErrorKind, status int, cause error) *ProviderError {
	switch {
	case errors.Is(cause, context.Canceled):
		kind = KindCancelled
	case errors.Is(cause, context.DeadlineExceeded):
		kind = KindTimeout
	}
	return &ProviderError{Provider: provider, Op: op, Kind: kind, StatusCode: status, Err: cause}
}

// KindOf extracts the ErrorKind from err. Context errors map to
// KindCancelled; unknown errors map to KindInternal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCancelled
	}
	return KindInternal
}
