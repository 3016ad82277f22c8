package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// NewTokenCmd creates the token command, which fetches the API key for a
// user. The key can then be passed to other commands via --apikey, the
// PANDORA_APIKEY environment variable or the config file.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Fetch the API key for a user",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			if username == "" || password == "" {
				return writeOperationError(cmd, &client.InvalidArgumentsError{
					Reason: "--username and --password are required",
				})
			}

			c, settings, ok := createClientFromFlags(cmd, cmd.OutOrStdout())
			if !ok {
				return errOperationFailed
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), settings.Timeout)
			defer cancel()

			authkey, err := c.GetAPIKey(ctx, username, password)
			if err != nil {
				return writeOperationError(cmd, err)
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), map[string]string{"authkey": authkey}))
		},
	}

	cmd.Flags().String("username", "", "Username to fetch the API key for")
	cmd.Flags().String("password", "", "Password of the user")

	return cmd
}
