// Package errors provides the failure taxonomy for the Basiq SDK.
// Every remote call failure is an *APIError whose Kind lets callers tell an
// authentication problem from a validation problem from a transient one.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a remote call failure.
type Kind int

const (
	// KindUnknown is the zero value; no constructor produces it.
	KindUnknown Kind = iota
	// KindNetwork means the request never produced an HTTP response.
	KindNetwork
	// KindAuthentication covers 401 and 403 responses.
	KindAuthentication
	// KindValidation covers 400, 409 and 422 responses.
	KindValidation
	// KindNotFound covers 404 responses.
	KindNotFound
	// KindRateLimited covers 429 responses.
	KindRateLimited
	// KindServer covers 5xx responses.
	KindServer
	// KindUnexpected covers any other status and undecodable bodies.
	KindUnexpected
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindNetwork:
		return "Network"
	case KindAuthentication:
		return "Authentication"
	case KindValidation:
		return "Validation"
	case KindNotFound:
		return "NotFound"
	case KindRateLimited:
		return "RateLimited"
	case KindServer:
		return "Server"
	case KindUnexpected:
		return "Unexpected"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// Detail is a single entry of Basiq's error envelope.
type Detail struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Source *struct {
		Parameter string `json:"parameter,omitempty"`
		Pointer   string `json:"pointer,omitempty"`
	} `json:"source,omitempty"`
}

// APIError is returned by every SDK operation whose remote call failed.
type APIError struct {
	Operation     string
	Kind          Kind
	StatusCode    int      // 0 for network errors
	Body          string   // raw response body
	CorrelationID string   // Basiq correlationId when present
	Details       []Detail // parsed error envelope, may be empty
	Underlying    error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "basiq %s: [%s]", e.Operation, e.Kind)
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " HTTP %d", e.StatusCode)
	}
	if len(e.Details) > 0 {
		d := e.Details[0]
		fmt.Fprintf(&b, " %s", d.Code)
		if d.Detail != "" {
			fmt.Fprintf(&b, ": %s", d.Detail)
		} else if d.Title != "" {
			fmt.Fprintf(&b, ": %s", d.Title)
		}
	} else if e.Underlying != nil {
		fmt.Fprintf(&b, ": %v", e.Underlying)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain compatibility.
func (e *APIError) Unwrap() error {
	return e.Underlying
}

// Retryable reports whether repeating the same request could succeed.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimited, KindServer:
		return true
	case KindUnexpected:
		return e.StatusCode == 408
	default:
		return false
	}
}

// As extracts an *APIError from err's chain.
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsKind reports whether err is an *APIError of kind k.
func IsKind(err error, k Kind) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Kind == k
}

// IsRetryable reports whether err is an *APIError that may be retried.
func IsRetryable(err error) bool {
	apiErr, ok := As(err)
	return ok && apiErr.Retryable()
}
