package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError represents a structured error response from the social graph API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("socialgraph: %d %s: %s (request_id=%s)", e.StatusCode, e.Code, e.Message, e.RequestID)
	}
	return fmt.Sprintf("socialgraph: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func statusOf(err error) int {
	var e *APIError
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}

// IsNotFound returns true if the error is a 404 not found.
func IsNotFound(err error) bool {
	return statusOf(err) == 404
}

// IsConflict returns true if the error is a 409: a duplicate relationship or
// one refused by policy (see IsNotAllowed).
func IsConflict(err error) bool {
	return statusOf(err) == 409
}

// IsNotAllowed returns true if the server refused a relationship or status change.
func IsNotAllowed(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.Code == "not_allowed"
}

// IsValidation returns true if the server rejected the request as invalid.
func IsValidation(err error) bool {
	return statusOf(err) == 400
}

// parseAPIError attempts to decode a JSON error body; falls back to raw text.
func parseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "unknown"
		apiErr.Message = string(body)
	}
	return apiErr
}
