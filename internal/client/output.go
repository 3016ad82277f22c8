package client

import (
	"encoding/json"
	"io"
	"time"
)

// Response is the JSON output envelope for all CLI command outputs. It
// provides a consistent structure with a success flag, optional data payload,
// optional error information, and a timestamp. Data and Error are mutually
// exclusive.
type Response struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Error     *Error    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Error is the structured error information in a CLI response: a
// machine-readable code, a human-readable message and optional context.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WriteSuccess writes a success envelope around data to w in JSON format.
func WriteSuccess(w io.Writer, data any) error {
	response := Response{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	}
	return json.NewEncoder(w).Encode(response)
}

// WriteError writes an error envelope to w in JSON format. code should be a
// machine-readable error code (e.g. "NOT_FOUND"), message the human-readable
// description, and details optional extra context.
func WriteError(w io.Writer, code, message string, details any) error {
	response := Response{
		Success: false,
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
		Timestamp: time.Now(),
	}
	return json.NewEncoder(w).Encode(response)
}
