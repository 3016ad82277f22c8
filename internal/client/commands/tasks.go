package commands

import (
	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
	"github.com/pandora-analysis/gopandora/internal/ledger"
)

// NewTasksCmd creates the tasks command, which lists the submissions
// recorded in the local ledger, newest first. The listing is purely local;
// no network call is made.
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "tasks",
		Short:        "List recorded submissions from the local ledger",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			l, err := openLedgerFromFlags(cmd)
			if err != nil {
				_ = client.WriteError(cmd.OutOrStdout(), errCodeLedgerError, err.Error(), nil)
				return errOperationFailed
			}
			defer l.Close()

			subs, err := l.List(cmd.Context(), limit)
			if err != nil {
				_ = client.WriteError(cmd.OutOrStdout(), errCodeLedgerError, err.Error(), nil)
				return errOperationFailed
			}
			if subs == nil {
				subs = []ledger.Submission{}
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), subs))
		},
	}

	cmd.Flags().IntP("limit", "l", 20, "Maximum number of submissions to list (0 means all)")

	return cmd
}
