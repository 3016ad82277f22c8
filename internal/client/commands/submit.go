package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
	"github.com/pandora-analysis/gopandora/internal/dto"
	"github.com/pandora-analysis/gopandora/internal/ledger"
)

// submitResult is the envelope payload of a submission: the service's
// response plus, with --wait, the final task status.
type submitResult struct {
	Submission *dto.SubmissionResult `json:"submission"`
	Status     *dto.TaskStatus       `json:"status,omitempty"`
}

// runSubmit submits the file selected by -f/--file and records the returned
// task id and seed in the local ledger. With --wait it then polls the task
// until a terminal state, streaming progress lines to stderr.
func runSubmit(ctx context.Context, cmd *cobra.Command, c *client.Client, inv Invocation) error {
	opts := client.SubmitOptions{
		Filename:        inv.Filename,
		ValiditySeconds: inv.Validity,
		Password:        inv.Password,
	}

	submission, err := c.SubmitFile(ctx, inv.FilePath, opts)
	if err != nil {
		return writeOperationError(cmd, err)
	}

	recordSubmission(ctx, cmd, inv, submission)

	result := submitResult{Submission: submission}
	if inv.Wait {
		status, err := waitForTask(cmd, c, submission)
		result.Status = status
		if err != nil {
			_ = client.WriteError(cmd.OutOrStdout(), classifyError(err), err.Error(), result)
			return errOperationFailed
		}
	}

	return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), result))
}

// recordSubmission stores the submission in the local ledger. Best effort: a
// ledger failure must never fail a submission that the service accepted, so
// problems only produce a warning on stderr.
func recordSubmission(ctx context.Context, cmd *cobra.Command, inv Invocation, submission *dto.SubmissionResult) {
	l, err := openLedgerFromFlags(cmd)
	if err != nil {
		cmd.PrintErrln("warning: cannot open submission ledger:", err.Error())
		return
	}
	defer l.Close()

	filename := inv.Filename
	if filename == "" {
		filename = inv.FilePath
	}
	err = l.Record(ctx, ledger.Submission{
		TaskID:   submission.TaskID,
		Seed:     submission.Seed,
		Filename: filename,
		Link:     submission.Link,
	})
	if err != nil {
		cmd.PrintErrln("warning: cannot record submission:", err.Error())
	}
}

// waitForTask polls the freshly submitted task until it reaches a terminal
// state. Polling runs under its own deadline: the request timeout bounds
// each round trip, --max-wait bounds the whole wait.
func waitForTask(cmd *cobra.Command, c *client.Client, submission *dto.SubmissionResult) (*dto.TaskStatus, error) {
	interval, _ := cmd.Flags().GetDuration(flagPollInterval)
	maxWait, _ := cmd.Flags().GetDuration(flagMaxWait)

	poller, err := client.NewTaskPoller(c, &client.TaskPollerConfig{
		Interval: interval,
		MaxWait:  maxWait,
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), maxWait+interval)
	defer cancel()

	return poller.WaitForCompletion(ctx, submission.TaskID, submission.Seed, cmd.ErrOrStderr())
}
