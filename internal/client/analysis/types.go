package analysis

import (
	"encoding/json"
	"fmt"
)

// AnalyzePath is the fixed endpoint the client posts to.
const AnalyzePath = "/api/tasks/analyze/"

type AnalyzeRequest struct {
	Tasks []json.RawMessage `json:"tasks"`
}

// AnalyzeResponse keeps both candidate lists raw so a present-but-null
// field can be told apart from a present list.
type AnalyzeResponse struct {
	Sorted json.RawMessage `json:"sorted"`
	Tasks  json.RawMessage `json:"tasks"`
}

// ErrorResponse is the body of a non-2xx answer.
type ErrorResponse struct {
	Errors json.RawMessage `json:"errors"`
	Error  *string         `json:"error"`
}

// FieldErrors is a structured, per-field rejection from the service.
type FieldErrors struct {
	StatusCode int
	Errors     json.RawMessage
}

func (e *FieldErrors) Error() string {
	return string(e.Errors)
}

// ServiceError is a plain-message rejection from the service.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// TransportError means no usable response arrived.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
