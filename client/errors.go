package client

import (
	"context"
	"errors"

	sdkerrors "github.com/jdenly/basiq-api/client/internal/errors"
)

// ErrNoAccessToken is returned by bearer operations when the client holds no
// token. Call Authenticate or SetToken first.
var ErrNoAccessToken = errors.New("basiq: no access token; call Authenticate first")

// APIError describes a failed remote call: transport failure or non-success
// status. Inspect Kind, StatusCode and Details to tell failures apart.
type APIError = sdkerrors.APIError

// ErrorKind classifies an APIError.
type ErrorKind = sdkerrors.Kind

// Error kinds re-exported so callers compare against a single symbol.
const (
	KindUnknown        = sdkerrors.KindUnknown
	KindNetwork        = sdkerrors.KindNetwork
	KindAuthentication = sdkerrors.KindAuthentication
	KindValidation     = sdkerrors.KindValidation
	KindNotFound       = sdkerrors.KindNotFound
	KindRateLimited    = sdkerrors.KindRateLimited
	KindServer         = sdkerrors.KindServer
	KindUnexpected     = sdkerrors.KindUnexpected
)

// AsAPIError extracts an *APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) { return sdkerrors.As(err) }

// IsAuthentication reports whether err is a 401/403 from the API.
func IsAuthentication(err error) bool { return sdkerrors.IsKind(err, KindAuthentication) }

// IsValidation reports whether the API rejected the request's content.
func IsValidation(err error) bool { return sdkerrors.IsKind(err, KindValidation) }

// IsNotFound reports whether the API returned 404.
func IsNotFound(err error) bool { return sdkerrors.IsKind(err, KindNotFound) }

// IsNetwork reports whether the request failed before a response arrived.
func IsNetwork(err error) bool { return sdkerrors.IsKind(err, KindNetwork) }

// IsRetryable reports whether repeating the request could succeed.
func IsRetryable(err error) bool { return sdkerrors.IsRetryable(err) }

// outcomeFor labels err for metrics.
func outcomeFor(err error) string {
	if err == nil {
		return "success"
	}
	if errors.Is(err, ErrNoAccessToken) {
		return "no_token"
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	if apiErr, ok := sdkerrors.As(err); ok {
		return apiErr.Kind.String()
	}
	return "error"
}
