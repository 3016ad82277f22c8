package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// NewWorkersCmd creates the workers command, which lists the analysis
// workers enabled on the instance. For per-worker health use the root
// --all_workers flag; for per-worker statistics use stats --workers.
func NewWorkersCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "workers",
		Short:        "List the enabled analysis workers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, settings, ok := createClientFromFlags(cmd, cmd.OutOrStdout())
			if !ok {
				return errOperationFailed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			workers, err := c.EnabledWorkers(ctx)
			if err != nil {
				return writeOperationError(cmd, err)
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), map[string][]string{"workers": workers}))
		},
	}
}
