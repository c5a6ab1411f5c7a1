package ebay

import (
	"fmt"
	"net/http"
)

// Kind is the normalized category of an upstream failure.
type Kind string

// Normalized error kinds.
const (
	KindAuthorization      Kind = "authorization"
	KindPermission         Kind = "permission"
	KindValidation         Kind = "validation"
	KindResourceNotFound   Kind = "resource-not-found"
	KindBusinessRule       Kind = "business-rule"
	KindRateLimit          Kind = "rate-limit"
	KindServiceUnavailable Kind = "service-unavailable"
	KindConnection         Kind = "connection-error"
	KindServer             Kind = "server-error"
)

// Retryable reports whether a failure of this kind may succeed if the whole
// operation is attempted again later.
func (k Kind) Retryable() bool {
	switch k {
	case KindRateLimit, KindServiceUnavailable, KindConnection:
		return true
	default:
		return false
	}
}

// UserMessage is the stable operator-facing text for the kind. It never
// depends on upstream message text.
func (k Kind) UserMessage() string {
	switch k {
	case KindAuthorization:
		return "The eBay authorization is no longer valid. Reconnect the account."
	case KindPermission:
		return "The eBay account did not grant permission for this operation."
	case KindValidation:
		return "eBay rejected the request as invalid."
	case KindResourceNotFound:
		return "The requested eBay resource was not found."
	case KindBusinessRule:
		return "eBay refused the request because it violates a marketplace rule."
	case KindRateLimit:
		return "eBay rate limit reached. Try again later."
	case KindServiceUnavailable:
		return "eBay is temporarily unavailable. Try again later."
	case KindConnection:
		return "Could not reach eBay. Check connectivity and try again."
	default:
		return "eBay returned an unexpected error."
	}
}

// defaultStatus is the HTTP status reported for a kind when no better one is known.
func (k Kind) defaultStatus() int {
	switch k {
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindPermission:
		return http.StatusForbidden
	case KindValidation, KindBusinessRule:
		return http.StatusBadRequest
	case KindResourceNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	case KindServiceUnavailable, KindConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a normalized upstream failure. It is derived from a raw failure by
// Classify and is never persisted.
type Error struct {
	Kind       Kind
	HTTPStatus int
	Retryable  bool
	// Message is the raw upstream message, kept for logs.
	Message string
	// UpstreamCode is the eBay error id when one was present, 0 otherwise.
	UpstreamCode int
	// Domain and Category echo the upstream error entry when present.
	Domain   string
	Category string
	// Op names the operation that failed.
	Op string

	cause error
}

func newError(kind Kind, status int, msg string) *Error {
	if status == 0 {
		status = kind.defaultStatus()
	}
	return &Error{
		Kind:       kind,
		HTTPStatus: status,
		Retryable:  kind.Retryable(),
		Message:    msg,
	}
}

// Error implements error.
func (e *Error) Error() string {
	var s string
	if e.Op != "" {
		s = e.Op + ": "
	}
	s += string(e.Kind)
	if e.UpstreamCode != 0 {
		s += fmt.Sprintf(" (eBay error %d)", e.UpstreamCode)
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}

// Unwrap returns the raw failure the error was derived from.
func (e *Error) Unwrap() error {
	return e.cause
}

// UserMessage returns the stable display text for the error's kind.
func (e *Error) UserMessage() string {
	return e.Kind.UserMessage()
}
