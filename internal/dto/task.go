// Package dto defines the data transfer objects exchanged with the Pandora
// REST API. All types mirror the service's JSON wire format; the client
// performs no transformation beyond parsing.
package dto

// Task states reported by the service. The remote task lifecycle is
// waiting -> running -> finished/error; the client only observes it.
const (
	StateWaiting  = "waiting"
	StateRunning  = "running"
	StateFinished = "finished"
	StateError    = "error"
)

// IsTerminalState returns true if the given task state will no longer change.
func IsTerminalState(state string) bool {
	return state == StateFinished || state == StateError
}

// SubmissionResult identifies a newly submitted analysis task. The Seed acts
// as a capability token and must accompany every status query for the task.
type SubmissionResult struct {
	TaskID string `json:"taskId"`
	Seed   string `json:"seed"`

	// Link is an optional browser URL for the analysis result, resolved
	// against the instance base URL by the client.
	Link string `json:"link,omitempty"`
}

// TaskStatus is a point-in-time snapshot of one task's progress. Each query
// returns a fresh snapshot; nothing is cached client-side.
type TaskStatus struct {
	// TaskID is filled in by the client from the request; the service
	// response body does not repeat it.
	TaskID string `json:"taskId"`

	State string `json:"state"`

	// Workers maps worker name to that worker's individual report. Only
	// present when the query requested details.
	Workers map[string]WorkerReport `json:"workers,omitempty"`
}

// WorkerReport is one analysis module's result for a task. Details is an
// opaque payload owned by the worker; the client never interprets it.
type WorkerReport struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// RedisStatus is the body of the /redis_up liveness probe.
type RedisStatus struct {
	Up bool `json:"up"`
}
