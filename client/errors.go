package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNotAuthenticated is returned by operations that require a session when
// none is present.
var ErrNotAuthenticated = errors.New("not authenticated")

// genericErrorMessage is shown when the backend provides no usable message.
const genericErrorMessage = "Something went wrong. Please try again."

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// newAPIError builds an APIError from a response body. The backend emits
// either an {code,message} envelope, an {error} object, or a plain string;
// all three shapes are tolerated.
func newAPIError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    extractMessage(body),
	}
}

func extractMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return ""
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
		return ""
	}

	var plain string
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain
	}

	// Not JSON at all; treat the raw body as the message.
	return trimmed
}

// errorMessage turns any error into the string shown in the UI: the backend
// message when one was provided, else the generic fallback.
func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return genericErrorMessage
}
