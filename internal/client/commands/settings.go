package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pandora-analysis/gopandora/internal/client"
)

// Settings keys shared between flags, environment variables and the config
// file.
const (
	settingURL     = "url"
	settingTimeout = "timeout"
	settingAPIKey  = "apikey"
)

// envPrefix is the prefix of the CLI's environment variables (PANDORA_URL,
// PANDORA_TIMEOUT, PANDORA_APIKEY).
const envPrefix = "PANDORA"

// configFileName is the config file base name searched in the working
// directory and under <user config dir>/pandora/.
const configFileName = "pandora"

// Settings is the merged CLI configuration. Precedence, highest first:
// flags, environment variables, config file, built-in defaults.
type Settings struct {
	URL     string
	Timeout time.Duration
	APIKey  string
}

// loadSettings resolves the CLI settings for one invocation. A config file
// named explicitly via --config must exist and parse; a discovered one only
// has to parse.
func loadSettings(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()

	v.SetDefault(settingURL, client.DefaultBaseURL)
	v.SetDefault(settingTimeout, client.DefaultTimeout)
	v.SetDefault(settingAPIKey, "")

	cfgFile, _ := cmd.Flags().GetString(flagConfig)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "pandora"))
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for setting, flag := range map[string]string{
		settingURL:     flagURL,
		settingTimeout: flagTimeout,
		settingAPIKey:  flagAPIKey,
	} {
		if err := v.BindPFlag(setting, cmd.Flags().Lookup(flag)); err != nil {
			return nil, fmt.Errorf("cannot bind --%s: %w", flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("cannot read config file: %w", err)
		}
	}

	settings := &Settings{
		URL:     v.GetString(settingURL),
		Timeout: v.GetDuration(settingTimeout),
		APIKey:  v.GetString(settingAPIKey),
	}
	if settings.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %v", settings.Timeout)
	}
	return settings, nil
}
