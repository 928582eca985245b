package genai

import (
	"fmt"
	"net/http"
	"strings"
)

// APIError is a failure reported by the Gemini API, either as an HTTP error
// body or as the error of a finished long-running operation.
type APIError struct {
	StatusCode int
	Code       int
	Status     string
	Message    string
	Reasons    []string
}

func (e *APIError) Error() string {
	var b strings.Builder
	b.WriteString("gemini")
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " status %d", e.StatusCode)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " %s", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	return b.String()
}

// CredentialFailure reports whether the API rejected the key itself or the
// key's project cannot see the requested resource. A NOT_FOUND on an operation
// the caller just created means the key belongs to a project without access
// to the video model.
func (e *APIError) CredentialFailure() bool {
	if e == nil {
		return false
	}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	switch strings.ToUpper(e.Status) {
	case "UNAUTHENTICATED", "PERMISSION_DENIED", "NOT_FOUND":
		return true
	}
	// google.rpc.Code values for the same conditions.
	switch e.Code {
	case 5, 7, 16:
		if e.StatusCode == 0 {
			return true
		}
	}
	for _, reason := range e.Reasons {
		switch strings.ToUpper(reason) {
		case "API_KEY_INVALID", "API_KEY_SERVICE_BLOCKED", "SERVICE_DISABLED":
			return true
		}
	}
	return false
}

type errorDetail struct {
	Reason string `json:"reason,omitempty"`
}

type errorStatus struct {
	Code    int           `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
	Status  string        `json:"status,omitempty"`
	Details []errorDetail `json:"details,omitempty"`
}

type errorResponse struct {
	Error errorStatus `json:"error"`
}

func (s errorStatus) toAPIError(statusCode int) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Code:       s.Code,
		Status:     s.Status,
		Message:    strings.TrimSpace(s.Message),
	}
	for _, d := range s.Details {
		if d.Reason != "" {
			apiErr.Reasons = append(apiErr.Reasons, d.Reason)
		}
	}
	return apiErr
}
