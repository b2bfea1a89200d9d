package shared

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ttx/internal/models"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./ttx.db" {
			t.Errorf("expected database path ./ttx.db, got %s", config.Database.Path)
		}

		if config.Local.Enabled {
			t.Error("local mode should default to disabled")
		}

		if config.Credentials.Toggl.APIKey != "your_toggl_api_key" {
			t.Errorf("unexpected toggl api_key placeholder: %s", config.Credentials.Toggl.APIKey)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"
max_open_conns = 20
max_idle_conns = 10

[credentials.toggl]
api_key = "toggl_key"
email = "me@example.com"

[credentials.clockify]
api_key = "clockify_key"
user_id = "u1"

[local]
enabled = true
toggl_url = "http://127.0.0.1:8001"
clockify_url = "http://127.0.0.1:8002"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected custom database path, got %s", config.Database.Path)
		}

		if config.Credentials.Clockify.UserID != "u1" {
			t.Errorf("expected clockify user_id u1, got %s", config.Credentials.Clockify.UserID)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("config with both keys should validate: %v", err)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/does/not/exist.toml"); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("BaseURL", func(t *testing.T) {
		config := DefaultConfig()

		if url := config.BaseURL(models.ToolToggl); url != "https://api.track.toggl.com/api/v9" {
			t.Errorf("unexpected toggl base URL: %s", url)
		}
		if url := config.BaseURL(models.ToolClockify); url != "https://api.clockify.me/api/v1" {
			t.Errorf("unexpected clockify base URL: %s", url)
		}

		config.Local.Enabled = true
		config.Local.TogglURL = "http://127.0.0.1:8001"

		if url := config.BaseURL(models.ToolToggl); url != "http://127.0.0.1:8001" {
			t.Errorf("local mode should redirect toggl base URL, got %s", url)
		}
	})

	t.Run("Delay", func(t *testing.T) {
		config := DefaultConfig()

		if d := config.Delay(models.ToolToggl); d != 250*time.Millisecond {
			t.Errorf("expected 250ms toggl delay, got %v", d)
		}
		if d := config.Delay(models.ToolClockify); d != 125*time.Millisecond {
			t.Errorf("expected 125ms clockify delay, got %v", d)
		}

		config.Local.Enabled = true
		if d := config.Delay(models.ToolToggl); d != 0 {
			t.Errorf("local mode should zero delays, got %v", d)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := &Config{}
		if err := config.Validate(); err == nil {
			t.Error("empty config should fail validation")
		}
	})
}
