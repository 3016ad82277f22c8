package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/pandora-analysis/gopandora/internal/dto"
)

const (
	// DefaultPollInterval is the default time to wait between status checks
	// when waiting for an analysis to finish.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxWait is the default maximum time to wait for an analysis to
	// reach a terminal state before giving up.
	DefaultMaxWait = 10 * time.Minute
)

// Error messages for polling outcomes.
const (
	errMsgAnalysisFailed = "analysis finished in error state"
	errMsgPollingTimeout = "polling timeout exceeded"
)

// progressStatusPolling marks JSON progress lines emitted between polls.
const progressStatusPolling = "polling"

// TaskPollerConfig configures a TaskPoller. Zero values use
// DefaultPollInterval and DefaultMaxWait.
type TaskPollerConfig struct {
	// Interval is the duration to wait between consecutive status polls.
	Interval time.Duration

	// MaxWait is the maximum total duration to wait for a terminal state.
	MaxWait time.Duration
}

// TaskPoller waits for an analysis task to reach a terminal state. The
// Client itself never polls; TaskPoller is an ordinary caller built on the
// public TaskStatus operation, issuing successive queries with the seed
// returned at submission time.
type TaskPoller struct {
	client   *Client
	interval time.Duration
	maxWait  time.Duration
}

// NewTaskPoller creates a TaskPoller with the given client and configuration.
// If config is nil or has zero values, defaults are used.
//
// Returns an error if client is nil.
func NewTaskPoller(client *Client, config *TaskPollerConfig) (*TaskPoller, error) {
	if client == nil {
		return nil, errors.New("client cannot be nil")
	}

	interval := DefaultPollInterval
	maxWait := DefaultMaxWait

	if config != nil {
		if config.Interval > 0 {
			interval = config.Interval
		}
		if config.MaxWait > 0 {
			maxWait = config.MaxWait
		}
	}

	return &TaskPoller{
		client:   client,
		interval: interval,
		maxWait:  maxWait,
	}, nil
}

// WaitForCompletion polls the task until its state is terminal (finished or
// error), the context is cancelled, or the maximum wait time is exceeded.
//
// Progress updates are written as JSON lines to progressWriter:
//
//	{"status":"polling","task_id":"...","current_state":"running","elapsed":"4s","poll_count":2}
//
// Returns the last observed status. The error is non-nil when the task ended
// in the error state, the wait timed out, the context was cancelled, or a
// status query failed with anything other than a transient transport error.
func (p *TaskPoller) WaitForCompletion(ctx context.Context, taskID, seed string, progressWriter io.Writer) (*dto.TaskStatus, error) {
	startTime := time.Now()
	pollCount := 0
	var last *dto.TaskStatus

	for {
		status, err := p.client.TaskStatus(ctx, taskID, seed, false)
		if err != nil {
			// A transient transport failure is retried until the
			// deadline; anything the service said on the record
			// (not found, unauthorized, malformed) is final.
			var unreachable *ServiceUnreachableError
			if !errors.As(err, &unreachable) {
				return last, err
			}
		} else {
			last = status
			if dto.IsTerminalState(status.State) {
				if status.State == dto.StateError {
					return status, errors.New(errMsgAnalysisFailed)
				}
				return status, nil
			}
		}

		pollCount++
		elapsed := time.Since(startTime)

		progress := map[string]any{
			"status":     progressStatusPolling,
			"task_id":    taskID,
			"elapsed":    elapsed.Truncate(time.Millisecond).String(),
			"poll_count": pollCount,
		}
		if last != nil {
			progress["current_state"] = last.State
		}
		_ = json.NewEncoder(progressWriter).Encode(progress)

		if elapsed >= p.maxWait {
			return last, errors.New(errMsgPollingTimeout)
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(p.interval):
		}
	}
}
