package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// NewSearchCmd creates the search command, which looks a hash or a filename
// up in the instance's tasks. Requires an API key with admin rights.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "search <hash-or-filename>",
		Short:        "Search a hash or a filename in the tasks",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			limitDays, _ := cmd.Flags().GetInt("limit-days")

			c, settings, ok := createClientFromFlags(cmd, cmd.OutOrStdout())
			if !ok {
				return errOperationFailed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			result, err := c.Search(ctx, args[0], limitDays)
			if err != nil {
				return writeOperationError(cmd, err)
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), result))
		},
	}

	cmd.Flags().Int("limit-days", 3, "Restrict the search to tasks submitted in the last N days")

	return cmd
}
