package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
	"github.com/pandora-analysis/gopandora/internal/dto"
)

// NewStatsCmd creates the stats command, which fetches submission statistics
// for an interval. Requires an API key with admin rights.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "stats",
		Short:        "Get platform statistics for an interval",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			interval, _ := cmd.Flags().GetString("interval")
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			week, _ := cmd.Flags().GetInt("week")
			day, _ := cmd.Flags().GetInt("day")
			submitOnly, _ := cmd.Flags().GetBool("submit")
			perWorker, _ := cmd.Flags().GetBool("workers")

			if submitOnly && perWorker {
				return writeOperationError(cmd, &client.InvalidArgumentsError{
					Reason: "--submit and --workers are mutually exclusive",
				})
			}

			query := dto.StatsQuery{
				Interval: interval,
				Year:     year,
				Month:    month,
				Week:     week,
				Day:      day,
			}

			c, settings, ok := createClientFromFlags(cmd, cmd.OutOrStdout())
			if !ok {
				return errOperationFailed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			var result map[string]any
			var err error
			switch {
			case submitOnly:
				result, err = c.SubmitStats(ctx, query)
			case perWorker:
				result, err = c.WorkersStats(ctx, query)
			default:
				result, err = c.Stats(ctx, query)
			}
			if err != nil {
				return writeOperationError(cmd, err)
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), result))
		},
	}

	cmd.Flags().String("interval", dto.IntervalYear, "Interval to report on (year, month, week, day)")
	cmd.Flags().Int("year", 0, "Year to report on (defaults to the current one)")
	cmd.Flags().Int("month", 0, "Month to report on")
	cmd.Flags().Int("week", 0, "ISO week to report on")
	cmd.Flags().Int("day", 0, "Day of month to report on")
	cmd.Flags().Bool("submit", false, "Report submission counts only")
	cmd.Flags().Bool("workers", false, "Report per-worker statistics instead")

	return cmd
}
