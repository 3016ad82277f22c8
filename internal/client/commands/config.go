package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// configFile is the YAML shape of the CLI config file. Keys line up with
// the settings resolved by loadSettings.
type configFile struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
	APIKey  string `yaml:"apikey,omitempty"`
}

// NewConfigCmd creates the config command group.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the CLI configuration file",
	}

	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

// newConfigInitCmd creates the config init command, which writes a config
// file pre-filled with the defaults so users have something to edit.
func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write a default config file",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("path")
			if path == "" {
				dir, err := os.UserConfigDir()
				if err != nil {
					_ = client.WriteError(cmd.OutOrStdout(), errCodeInvalidConfig, "cannot locate user config directory: "+err.Error(), nil)
					return errOperationFailed
				}
				path = filepath.Join(dir, "pandora", configFileName+".yaml")
			}

			force, _ := cmd.Flags().GetBool("force")
			if !force {
				if _, err := os.Stat(path); err == nil {
					_ = client.WriteError(cmd.OutOrStdout(), errCodeInvalidConfig,
						fmt.Sprintf("config file %s already exists (use --force to overwrite)", path), nil)
					return errOperationFailed
				}
			}

			defaults := configFile{
				URL:     client.DefaultBaseURL,
				Timeout: client.DefaultTimeout.String(),
			}
			data, err := yaml.Marshal(defaults)
			if err != nil {
				_ = client.WriteError(cmd.OutOrStdout(), errCodeInvalidConfig, err.Error(), nil)
				return errOperationFailed
			}

			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				_ = client.WriteError(cmd.OutOrStdout(), errCodeInvalidConfig, err.Error(), nil)
				return errOperationFailed
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				_ = client.WriteError(cmd.OutOrStdout(), errCodeInvalidConfig, err.Error(), nil)
				return errOperationFailed
			}

			return wrapWrite(client.WriteSuccess(cmd.OutOrStdout(), map[string]string{"path": path}))
		},
	}

	cmd.Flags().String("path", "", "Where to write the config file (default <user config dir>/pandora/pandora.yaml)")
	cmd.Flags().Bool("force", false, "Overwrite an existing config file")

	return cmd
}
