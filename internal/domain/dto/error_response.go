package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by the API.
//
// Fields:
//   - Message: short, user-facing description of the failure.
//   - ErrorDetails: optional detail from the underlying error.
//   - Timestamp: when the error response was produced.
type ErrorResponse struct {
	Message      string    `json:"message" example:"failed to process query"`
	ErrorDetails string    `json:"error,omitempty" example:"connection refused"`
	Timestamp    time.Time `json:"timestamp"`
}

// Error implements the error interface so an ErrorResponse can be
// propagated through gin's error handling.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a message and an optional
// inner error. The inner error is flattened into ErrorDetails; internals
// beyond its message never reach the client.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
