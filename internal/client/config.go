package client

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Default configuration values.
const (
	// DefaultBaseURL is the public Pandora instance queried when no URL is
	// configured.
	DefaultBaseURL = "https://pandora.circl.lu/"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	// EnvBaseURL is the environment variable name for the instance URL.
	EnvBaseURL = "PANDORA_URL"

	// EnvTimeout is the environment variable name for the request timeout.
	EnvTimeout = "PANDORA_TIMEOUT"

	// EnvAPIKey is the environment variable name for the API key.
	EnvAPIKey = "PANDORA_APIKEY"
)

// Supported URL schemes.
const (
	schemeHTTP  = "http://"
	schemeHTTPS = "https://"
)

// Config holds the client configuration for one Pandora instance.
type Config struct {
	// BaseURL is the root URL of the instance (e.g. "https://pandora.circl.lu/").
	// A missing scheme defaults to http:// and a trailing slash is added, the
	// same normalization the instance's own tooling applies.
	BaseURL string

	// Timeout is the maximum duration for a single HTTP round trip.
	// Must be a positive duration.
	Timeout time.Duration

	// UserAgent overrides the User-Agent header sent with every request.
	// Empty means the library default.
	UserAgent string

	// APIKey, when set, is sent as the Authorization header on every
	// request, enabling the authenticated endpoints.
	APIKey string
}

// DefaultConfig returns a Config pointing at the public instance with the
// default timeout.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// LoadConfig loads configuration from environment variables, falling back to
// defaults.
//
// Environment variables:
//   - PANDORA_URL: instance URL (optional, defaults to https://pandora.circl.lu/)
//   - PANDORA_TIMEOUT: request timeout as a duration string (optional, defaults to 30s)
//   - PANDORA_APIKEY: API key for authenticated endpoints (optional)
//
// Returns an error if the timeout variable is set but not a positive duration.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if baseURL := os.Getenv(EnvBaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.APIKey = os.Getenv(EnvAPIKey)

	if timeoutStr, ok := os.LookupEnv(EnvTimeout); ok {
		if timeoutStr == "" {
			return nil, fmt.Errorf("environment variable %s is set but empty: timeout cannot be empty", EnvTimeout)
		}

		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout duration in %s: %w", EnvTimeout, err)
		}

		if timeout <= 0 {
			return nil, fmt.Errorf("invalid timeout value in %s: timeout must be positive, got %v", EnvTimeout, timeout)
		}

		cfg.Timeout = timeout
	}

	return &cfg, nil
}

// Normalize applies the URL normalization rules: anything without an http or
// https scheme gets http:// prepended, the scheme is lowercased, and a
// trailing slash is appended so relative endpoint paths resolve under the
// instance root.
func (c *Config) Normalize() {
	if c.BaseURL == "" {
		return
	}
	u, err := url.Parse(c.BaseURL)
	switch {
	case err != nil,
		!strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https"):
		c.BaseURL = schemeHTTP + c.BaseURL
	case u.Scheme != strings.ToLower(u.Scheme):
		u.Scheme = strings.ToLower(u.Scheme)
		c.BaseURL = u.String()
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
}

// Validate validates the configuration and returns an error if any field is
// invalid.
//
// Validation rules:
//   - BaseURL must not be empty
//   - BaseURL must start with http:// or https://
//   - Timeout must be positive (greater than zero)
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("invalid configuration: instance URL cannot be empty")
	}

	if !strings.HasPrefix(c.BaseURL, schemeHTTP) && !strings.HasPrefix(c.BaseURL, schemeHTTPS) {
		return fmt.Errorf("invalid configuration: instance URL must have http:// or https:// scheme, got %q", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid configuration: timeout must be positive, got %v", c.Timeout)
	}

	return nil
}
