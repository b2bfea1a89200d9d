package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"ttx/internal/models"
)

//go:embed config.example.toml
var exampleConf []byte

// Production API roots. Overridden wholesale when local mode is enabled.
const (
	togglBaseURL    = "https://api.track.toggl.com/api/v9"
	clockifyBaseURL = "https://api.clockify.me/api/v1"
)

// Inter-request delays that keep steady-state traffic under each tool's
// published rate limit.
const (
	togglDelay    = 250 * time.Millisecond
	clockifyDelay = 125 * time.Millisecond
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Local       LocalConfig       `toml:"local"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains tool-specific credentials.
type CredentialsConfig struct {
	Toggl    TogglConfig    `toml:"toggl"`
	Clockify ClockifyConfig `toml:"clockify"`
}

// TogglConfig contains Toggl Track API credentials.
type TogglConfig struct {
	APIKey string `toml:"api_key"`
	Email  string `toml:"email"`
}

// ClockifyConfig contains Clockify API credentials. UserID is required for
// the user-scoped time entry listing endpoint.
type ClockifyConfig struct {
	APIKey string `toml:"api_key"`
	UserID string `toml:"user_id"`
}

// LocalConfig redirects both tools to local development hosts. When enabled,
// inter-request delays are zeroed as well.
type LocalConfig struct {
	Enabled     bool   `toml:"enabled"`
	TogglURL    string `toml:"toggl_url"`
	ClockifyURL string `toml:"clockify_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BaseURL returns the API root for the given tool, honoring local mode.
func (c *Config) BaseURL(tool models.ToolName) string {
	if c.Local.Enabled {
		if tool == models.ToolToggl {
			return c.Local.TogglURL
		}
		return c.Local.ClockifyURL
	}
	if tool == models.ToolToggl {
		return togglBaseURL
	}
	return clockifyBaseURL
}

// Delay returns the mandatory pause between consecutive requests to the given
// tool. Zero in local mode.
func (c *Config) Delay(tool models.ToolName) time.Duration {
	if c.Local.Enabled {
		return 0
	}
	if tool == models.ToolToggl {
		return togglDelay
	}
	return clockifyDelay
}

// ToolCredentials returns the credential material for the given tool.
func (c *Config) ToolCredentials(tool models.ToolName) models.Credentials {
	if tool == models.ToolToggl {
		return models.Credentials{
			APIKey: c.Credentials.Toggl.APIKey,
			Email:  c.Credentials.Toggl.Email,
		}
	}
	return models.Credentials{
		APIKey: c.Credentials.Clockify.APIKey,
		UserID: c.Credentials.Clockify.UserID,
	}
}

// Validate checks that the credentials needed for remote operation are set.
func (c *Config) Validate() error {
	if c.Credentials.Toggl.APIKey == "" {
		return fmt.Errorf("%w: toggl api_key", ErrMissingCredentials)
	}
	if c.Credentials.Clockify.APIKey == "" {
		return fmt.Errorf("%w: clockify api_key", ErrMissingCredentials)
	}
	return nil
}
