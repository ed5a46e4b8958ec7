package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// errorEnvelope is the body Basiq returns for failed requests.
type errorEnvelope struct {
	Type          string   `json:"type"`
	CorrelationID string   `json:"correlationId"`
	Data          []Detail `json:"data"`
}

// KindForStatus maps an HTTP status code to a failure kind.
func KindForStatus(statusCode int) Kind {
	switch {
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return KindAuthentication
	case statusCode == http.StatusBadRequest,
		statusCode == http.StatusConflict,
		statusCode == http.StatusUnprocessableEntity:
		return KindValidation
	case statusCode == http.StatusNotFound:
		return KindNotFound
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimited
	case statusCode >= 500 && statusCode < 600:
		return KindServer
	default:
		return KindUnexpected
	}
}

// NewHTTPError builds an *APIError for a non-success response. The body is
// parsed best-effort as Basiq's error envelope.
func NewHTTPError(operation string, statusCode int, body []byte) *APIError {
	e := &APIError{
		Operation:  operation,
		Kind:       KindForStatus(statusCode),
		StatusCode: statusCode,
		Body:       string(body),
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		e.CorrelationID = env.CorrelationID
		for _, d := range env.Data {
			if d.Type == "" || d.Type == "error" {
				e.Details = append(e.Details, d)
			}
		}
	}
	return e
}

// NewNetworkError wraps a transport-level failure.
func NewNetworkError(operation string, err error) *APIError {
	return &APIError{
		Operation:  operation,
		Kind:       KindNetwork,
		Underlying: fmt.Errorf("network error: %w", err),
	}
}

// NewDecodeError wraps a failure to decode a success response.
func NewDecodeError(operation string, statusCode int, body []byte, err error) *APIError {
	return &APIError{
		Operation:  operation,
		Kind:       KindUnexpected,
		StatusCode: statusCode,
		Body:       string(body),
		Underlying: fmt.Errorf("decode response: %w", err),
	}
}
