package commands

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// Error codes used in JSON error envelopes.
const (
	errCodeInvalidConfig     = "INVALID_CONFIG"
	errCodeInvalidArgument   = "INVALID_ARGUMENT"
	errCodeFileError         = "FILE_ERROR"
	errCodeConnectionError   = "CONNECTION_ERROR"
	errCodeTimeoutError      = "TIMEOUT_ERROR"
	errCodeServiceError      = "SERVICE_ERROR"
	errCodeMalformedResponse = "MALFORMED_RESPONSE"
	errCodeNotFound          = "NOT_FOUND"
	errCodeUnauthorized      = "UNAUTHORIZED"
	errCodeAuthError         = "AUTH_ERROR"
	errCodeLedgerError       = "LEDGER_ERROR"
	errCodeAPIError          = "API_ERROR"
)

// errOperationFailed signals a failed operation whose details were already
// written as a JSON envelope; it only drives the non-zero exit code.
var errOperationFailed = errors.New("operation failed")

// classifyError maps the client error taxonomy onto envelope error codes.
// Classification is by type, never by message sniffing.
func classifyError(err error) string {
	var (
		invalidArgs *client.InvalidArgumentsError
		notFoundF   *client.FileNotFoundError
		unreadable  *client.FileUnreadableError
		unreachable *client.ServiceUnreachableError
		svcErr      *client.ServiceError
		malformed   *client.MalformedResponseError
		taskMissing *client.TaskNotFoundError
	)

	switch {
	case errors.As(err, &invalidArgs):
		return errCodeInvalidArgument
	case errors.As(err, &notFoundF), errors.As(err, &unreadable):
		return errCodeFileError
	case errors.As(err, &taskMissing):
		return errCodeNotFound
	case errors.Is(err, client.ErrUnauthorized):
		return errCodeUnauthorized
	case errors.Is(err, client.ErrAuth):
		return errCodeAuthError
	case errors.As(err, &unreachable):
		if errors.Is(err, context.DeadlineExceeded) {
			return errCodeTimeoutError
		}
		return errCodeConnectionError
	case errors.As(err, &malformed):
		return errCodeMalformedResponse
	case errors.As(err, &svcErr):
		return errCodeServiceError
	case errors.Is(err, context.DeadlineExceeded):
		return errCodeTimeoutError
	default:
		return errCodeAPIError
	}
}

// errorDetails extracts structured context worth keeping in the envelope,
// currently the HTTP status and raw body of service errors.
func errorDetails(err error) any {
	var svcErr *client.ServiceError
	if errors.As(err, &svcErr) {
		return map[string]any{
			"status": svcErr.Status,
			"body":   svcErr.Body,
		}
	}
	return nil
}

// writeOperationError renders err as a JSON error envelope and returns the
// sentinel driving the process exit code.
func writeOperationError(cmd *cobra.Command, err error) error {
	_ = client.WriteError(cmd.OutOrStdout(), classifyError(err), err.Error(), errorDetails(err))
	return errOperationFailed
}

// wrapWrite converts an envelope encoding failure into the exit-code
// sentinel; the success payload was the last thing left to do.
func wrapWrite(err error) error {
	if err != nil {
		return errOperationFailed
	}
	return nil
}

// createClientFromFlags resolves settings (flags, environment, config file)
// and builds a validated client. On failure it writes an error envelope to
// out and returns false. The returned settings carry the resolved request
// timeout for the caller's context.
func createClientFromFlags(cmd *cobra.Command, out io.Writer) (*client.Client, *Settings, bool) {
	settings, err := loadSettings(cmd)
	if err != nil {
		_ = client.WriteError(out, errCodeInvalidConfig, err.Error(), nil)
		return nil, nil, false
	}

	cfg := &client.Config{
		BaseURL: settings.URL,
		Timeout: settings.Timeout,
		APIKey:  settings.APIKey,
	}
	c, err := client.NewClient(cfg)
	if err != nil {
		_ = client.WriteError(out, errCodeInvalidConfig, err.Error(), nil)
		return nil, nil, false
	}

	return c, settings, true
}
