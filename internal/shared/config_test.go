package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./cinemania.db" {
			t.Errorf("expected database path ./cinemania.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}

		if config.Credentials.TMDB.BaseURL != "https://api.themoviedb.org/3" {
			t.Errorf("unexpected tmdb base URL %s", config.Credentials.TMDB.BaseURL)
		}

		if config.Session.PollInterval.Duration != 2*time.Second {
			t.Errorf("expected poll interval 2s, got %v", config.Session.PollInterval)
		}

		if len(config.Build.Pages) != 3 {
			t.Errorf("expected 3 build pages, got %d", len(config.Build.Pages))
		}
		if config.Build.Pages["library"] != "my-library.html" {
			t.Errorf("expected library page my-library.html, got %s", config.Build.Pages["library"])
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[server]
port = 8080

[credentials.tmdb]
access_token = "token"

[session]
poll_interval = "500ms"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
		if config.Server.Host != "127.0.0.1" {
			t.Errorf("expected default host, got %s", config.Server.Host)
		}
		if !config.Credentials.TMDB.HasCredentials() {
			t.Error("expected tmdb credentials to be present")
		}
		if config.Session.PollInterval.Duration != 500*time.Millisecond {
			t.Errorf("expected 500ms poll interval, got %v", config.Session.PollInterval)
		}
	})

	t.Run("LoadConfig rejects bad durations", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[session]\npoll_interval = \"soon\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("SaveConfig round trips", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "saved", "config.toml")
		config := DefaultConfig()
		config.Server.Port = 4242
		config.Session.PollInterval = Duration{5 * time.Second}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}
		if loaded.Server.Port != 4242 {
			t.Errorf("expected port 4242, got %d", loaded.Server.Port)
		}
		if loaded.Session.PollInterval.Duration != 5*time.Second {
			t.Errorf("expected 5s poll interval, got %v", loaded.Session.PollInterval)
		}
	})

	t.Run("LoadConfigOrDefault without file", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected default config, got port %d", config.Server.Port)
		}
	})
}
