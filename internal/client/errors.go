package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers match with errors.Is.
var (
	// ErrUnauthorized is returned when the service rejects a request for a
	// missing or mismatched seed or API key.
	ErrUnauthorized = errors.New("unauthorized: seed or API key rejected")

	// ErrAuth is returned when an API key cannot be obtained or installed.
	ErrAuth = errors.New("authentication failed")
)

// InvalidArgumentsError reports a caller mistake detected before any network
// I/O.
type InvalidArgumentsError struct {
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return "invalid arguments: " + e.Reason
}

// FileNotFoundError reports a submission path that does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s", e.Path)
}

// FileUnreadableError reports a submission path that exists but cannot be
// read.
type FileUnreadableError struct {
	Path string
	Err  error
}

func (e *FileUnreadableError) Error() string {
	return fmt.Sprintf("cannot read file %s: %v", e.Path, e.Err)
}

func (e *FileUnreadableError) Unwrap() error {
	return e.Err
}

// ServiceUnreachableError reports a transport-level failure: the request
// never produced an HTTP response. Wraps the underlying error so callers can
// distinguish timeouts from connection refusals with errors.Is.
type ServiceUnreachableError struct {
	URL string
	Err error
}

func (e *ServiceUnreachableError) Error() string {
	return fmt.Sprintf("service unreachable: %s: %v", e.URL, e.Err)
}

func (e *ServiceUnreachableError) Unwrap() error {
	return e.Err
}

// ServiceError reports a non-2xx HTTP response, or a 2xx response whose body
// carries a service-level error message. Body holds the raw response body,
// truncated for diagnostics.
type ServiceError struct {
	Status int
	Body   string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error: HTTP %d: %s", e.Status, e.Body)
}

// MalformedResponseError reports a 2xx response whose body does not match the
// documented shape of the endpoint.
type MalformedResponseError struct {
	Endpoint string
	Reason   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s: %s", e.Endpoint, e.Reason)
}

// TaskNotFoundError reports a status query for a task id the service does not
// know, or one whose seed has expired.
type TaskNotFoundError struct {
	TaskID string
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("task %s not found", e.TaskID)
}
