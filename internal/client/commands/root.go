// Package commands provides the cobra command surface of the pandora CLI.
// The root command implements the classic flat invocation contract
//
//	pandora [--url URL] (--redis_up | -f FILE | --task_id ID [--seed SEED] [--details] | --worker_name NAME [--details] | --all_workers [--details])
//
// where exactly one operation selector must be chosen, plus subcommands for
// the authenticated endpoints (token, search, stats) and local state (tasks,
// config).
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
	"github.com/pandora-analysis/gopandora/internal/dto"
	"github.com/pandora-analysis/gopandora/internal/ledger"
)

// cliVersion is the current version of the CLI.
const cliVersion = "1.0.0"

// Flag names for persistent global flags.
const (
	flagURL       = "url"
	flagTimeout   = "timeout"
	flagConfig    = "config"
	flagAPIKey    = "apikey"
	flagLedger    = "ledger"
	flagTelemetry = "telemetry"
)

// Flag names for the root operation selectors and their parameters. The
// spelling matches the historical CLI so existing scripts keep working.
const (
	flagRedisUp      = "redis_up"
	flagFile         = "file"
	flagTaskID       = "task_id"
	flagSeed         = "seed"
	flagWorkerName   = "worker_name"
	flagAllWorkers   = "all_workers"
	flagDetails      = "details"
	flagValidity     = "validity"
	flagFilename     = "filename"
	flagPassword     = "password"
	flagWait         = "wait"
	flagPollInterval = "poll-interval"
	flagMaxWait      = "max-wait"
)

// NewRootCmd creates and returns the root command for the pandora CLI.
// Persistent flags (url, timeout, config, apikey, ledger, telemetry) are
// inherited by all subcommands. Errors are rendered as JSON envelopes on
// stdout once an operation is underway; selector mistakes are reported as
// usage errors before any network call.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "pandora",
		Short:         "Client for the Pandora file-analysis service",
		Version:       cliVersion,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	cmd.PersistentFlags().String(flagURL, "", "Pandora instance URL (default "+client.DefaultBaseURL+")")
	cmd.PersistentFlags().Duration(flagTimeout, client.DefaultTimeout, "Request timeout")
	cmd.PersistentFlags().String(flagConfig, "", "Config file (default ./pandora.yaml or <user config dir>/pandora/pandora.yaml)")
	cmd.PersistentFlags().String(flagAPIKey, "", "API key for authenticated endpoints")
	cmd.PersistentFlags().String(flagLedger, "", "Path to the local submission ledger database")
	cmd.PersistentFlags().Bool(flagTelemetry, false, "Print request telemetry to stderr after the command")

	cmd.Flags().Bool(flagRedisUp, false, "Check if the instance's redis backend is up")
	cmd.Flags().StringP(flagFile, "f", "", "Path to the file to submit")
	cmd.Flags().String(flagTaskID, "", "Id of the task to get the status of")
	cmd.Flags().String(flagSeed, "", "Seed of the task (defaults to the recorded seed from the local ledger)")
	cmd.Flags().String(flagWorkerName, "", "Name of the worker to get the status of")
	cmd.Flags().Bool(flagAllWorkers, false, "Get the status of every worker")
	cmd.Flags().Bool(flagDetails, false, "Include full per-worker payloads")
	cmd.Flags().Int(flagValidity, 3600, "Seed validity in seconds (0 means the seed never expires)")
	cmd.Flags().String(flagFilename, "", "Override the filename reported to the service")
	cmd.Flags().String(flagPassword, "", "Password for protected archives")
	cmd.Flags().Bool(flagWait, false, "After submitting, poll until the analysis reaches a terminal state")
	cmd.Flags().Duration(flagPollInterval, client.DefaultPollInterval, "Interval between status polls with --wait")
	cmd.Flags().Duration(flagMaxWait, client.DefaultMaxWait, "Maximum total time to poll with --wait")

	cmd.AddCommand(NewTokenCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewWorkersCmd())
	cmd.AddCommand(NewTasksCmd())
	cmd.AddCommand(NewConfigCmd())

	return cmd
}

// Invocation is the resolved root-command invocation: the selected operation
// and its parameters, validated once before anything else happens.
type Invocation struct {
	RedisUp    bool
	FilePath   string
	TaskID     string
	Seed       string
	WorkerName string
	AllWorkers bool
	Details    bool

	Validity int
	Filename string
	Password string
	Wait     bool
}

// parseInvocation reads the root operation flags into an Invocation.
func parseInvocation(cmd *cobra.Command) Invocation {
	inv := Invocation{}
	inv.RedisUp, _ = cmd.Flags().GetBool(flagRedisUp)
	inv.FilePath, _ = cmd.Flags().GetString(flagFile)
	inv.TaskID, _ = cmd.Flags().GetString(flagTaskID)
	inv.Seed, _ = cmd.Flags().GetString(flagSeed)
	inv.WorkerName, _ = cmd.Flags().GetString(flagWorkerName)
	inv.AllWorkers, _ = cmd.Flags().GetBool(flagAllWorkers)
	inv.Details, _ = cmd.Flags().GetBool(flagDetails)
	inv.Validity, _ = cmd.Flags().GetInt(flagValidity)
	inv.Filename, _ = cmd.Flags().GetString(flagFilename)
	inv.Password, _ = cmd.Flags().GetString(flagPassword)
	inv.Wait, _ = cmd.Flags().GetBool(flagWait)
	return inv
}

// Validate enforces the operation-selection contract: exactly one of
// {--redis_up, --file, --task_id, worker selection} must be chosen, and
// --worker_name / --all_workers are mutually exclusive. Returns nil when a
// single operation is unambiguously selected.
func (inv Invocation) Validate() error {
	if inv.WorkerName != "" && inv.AllWorkers {
		return errors.New("--worker_name and --all_workers are mutually exclusive")
	}

	selectors := 0
	if inv.RedisUp {
		selectors++
	}
	if inv.FilePath != "" {
		selectors++
	}
	if inv.TaskID != "" {
		selectors++
	}
	if inv.WorkerName != "" || inv.AllWorkers {
		selectors++
	}

	switch selectors {
	case 0:
		return errors.New("one of --redis_up, --file, --task_id, --worker_name or --all_workers is required")
	case 1:
		return nil
	default:
		return errors.New("--redis_up, --file, --task_id and worker selection flags are mutually exclusive")
	}
}

// runRoot validates the invocation and dispatches exactly one client
// operation. Selector mistakes surface as usage errors before any network
// call; operation failures are rendered as JSON error envelopes.
func runRoot(cmd *cobra.Command, _ []string) error {
	inv := parseInvocation(cmd)
	if err := inv.Validate(); err != nil {
		cmd.PrintErrln("Error:", err.Error())
		return err
	}

	// Selection is valid; from here on failures are operation failures and
	// cobra's usage text would only be noise.
	cmd.SilenceUsage = true

	tel := setupTelemetry(cmd)

	c, settings, ok := createClientFromFlags(cmd, cmd.OutOrStdout())
	if !ok {
		return errOperationFailed
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
	defer cancel()

	var err error
	switch {
	case inv.RedisUp:
		err = runRedisUp(ctx, cmd, c)
	case inv.FilePath != "":
		err = runSubmit(ctx, cmd, c, inv)
	case inv.TaskID != "":
		err = runTaskStatus(ctx, cmd, c, inv)
	default:
		err = runWorkerStatus(ctx, cmd, c, inv)
	}

	tel.dump(cmd)
	return err
}

// runRedisUp performs the liveness probe against the queue/store backend.
func runRedisUp(ctx context.Context, cmd *cobra.Command, c *client.Client) error {
	up, err := c.RedisUp(ctx)
	if err != nil {
		return writeOperationError(cmd, err)
	}
	return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), dto.RedisStatus{Up: up}))
}

// runTaskStatus queries one task's state. When no seed is given, the local
// ledger is consulted for the seed recorded at submission time; an
// authenticated session can query without one.
func runTaskStatus(ctx context.Context, cmd *cobra.Command, c *client.Client, inv Invocation) error {
	if _, err := uuid.Parse(inv.TaskID); err != nil {
		return writeOperationError(cmd, &client.InvalidArgumentsError{
			Reason: fmt.Sprintf("task id %q is not a valid UUID", inv.TaskID),
		})
	}

	seed := inv.Seed
	if seed == "" {
		if l, lerr := openLedgerFromFlags(cmd); lerr == nil {
			if recorded, serr := l.Seed(ctx, inv.TaskID); serr == nil {
				seed = recorded
			}
			l.Close()
		}
	}

	status, err := c.TaskStatus(ctx, inv.TaskID, seed, inv.Details)
	if err != nil {
		return writeOperationError(cmd, err)
	}
	return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), status))
}

// runWorkerStatus queries worker health, either one named worker or all of
// them. The mutual-exclusivity of the selection flags was already checked;
// the client re-validates before going on the wire.
func runWorkerStatus(ctx context.Context, cmd *cobra.Command, c *client.Client, inv Invocation) error {
	reports, err := c.WorkerStatus(ctx, inv.WorkerName, inv.AllWorkers, inv.Details)
	if err != nil {
		return writeOperationError(cmd, err)
	}
	return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), reports))
}

// openLedgerFromFlags opens the submission ledger at the configured path or
// the default location under the user config directory.
func openLedgerFromFlags(cmd *cobra.Command) (*ledger.Ledger, error) {
	path, _ := cmd.Flags().GetString(flagLedger)
	if path == "" {
		defaultPath, err := ledger.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}
	return ledger.Open(path)
}
