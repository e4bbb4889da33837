package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// saveEnv saves current environment variables for restoration
func saveEnv(t *testing.T, keys []string) map[string]string {
	t.Helper()
	saved := make(map[string]string)
	for _, key := range keys {
		saved[key] = os.Getenv(key)
	}
	return saved
}

// restoreEnv restores previously saved environment variables
func restoreEnv(t *testing.T, saved map[string]string) {
	t.Helper()
	for key, val := range saved {
		if val == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, val)
		}
	}
}

// clearEnv clears environment variables
func clearEnv(t *testing.T, keys []string) {
	t.Helper()
	for _, key := range keys {
		os.Unsetenv(key)
	}
}

var allEnvKeys = []string{
	"API_KEY",
	"ALPHA_VANTAGE_BASE_URL",
	"FETCH_TIMEOUT_SECONDS",
	"CORS_ALLOWED_ORIGINS",
	"HTTP_ADDR",
	"WINDOW_WIDTH",
	"WINDOW_HEIGHT",
	"APP_ENV",
	"LOG_LEVEL",
}

func TestLoad_MissingAPIKey(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	cfg, err := Load()
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if cfg != nil {
		t.Error("expected nil config when API_KEY is missing")
	}
}

func TestLoad_WhitespaceAPIKey(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("API_KEY", "   ")

	if _, err := Load(); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey for blank key, got %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("API_KEY", "demo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.AlphaVantage.APIKey != "demo" {
		t.Errorf("expected APIKey='demo', got %s", cfg.AlphaVantage.APIKey)
	}
	if cfg.AlphaVantage.BaseURL != "https://www.alphavantage.co" {
		t.Errorf("expected default BaseURL, got %s", cfg.AlphaVantage.BaseURL)
	}
	if cfg.Fetch.TimeoutSeconds != 30 {
		t.Errorf("expected TimeoutSeconds=30, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.HTTP.CORSAllowedOrigins != "*" {
		t.Errorf("expected CORSAllowedOrigins='*', got %s", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected Addr=':8080', got %s", cfg.HTTP.Addr)
	}
	if cfg.Window.Width != 1400 || cfg.Window.Height != 900 {
		t.Errorf("expected window 1400x900, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if cfg.Log.Production {
		t.Error("expected development logging by default")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected Level='info', got %s", cfg.Log.Level)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("API_KEY", "custom-key")
	os.Setenv("ALPHA_VANTAGE_BASE_URL", "http://localhost:9999/")
	os.Setenv("FETCH_TIMEOUT_SECONDS", "5")
	os.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	os.Setenv("HTTP_ADDR", ":9090")
	os.Setenv("WINDOW_WIDTH", "1024")
	os.Setenv("WINDOW_HEIGHT", "768")
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with custom values failed: %v", err)
	}

	if cfg.AlphaVantage.BaseURL != "http://localhost:9999" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.AlphaVantage.BaseURL)
	}
	if cfg.Fetch.TimeoutSeconds != 5 {
		t.Errorf("expected TimeoutSeconds=5, got %d", cfg.Fetch.TimeoutSeconds)
	}
	if cfg.HTTP.CORSAllowedOrigins != "http://localhost:3000" {
		t.Errorf("expected custom CORS origin, got %s", cfg.HTTP.CORSAllowedOrigins)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("expected Addr=':9090', got %s", cfg.HTTP.Addr)
	}
	if cfg.Window.Width != 1024 || cfg.Window.Height != 768 {
		t.Errorf("expected window 1024x768, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Log.Production {
		t.Error("expected production logging")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected Level='debug', got %s", cfg.Log.Level)
	}
}

func TestLoad_InvalidIntegers(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantMsg string
	}{
		{"non-numeric width", "WINDOW_WIDTH", "wide", "WINDOW_WIDTH must be an integer"},
		{"non-numeric timeout", "FETCH_TIMEOUT_SECONDS", "30s", "FETCH_TIMEOUT_SECONDS must be an integer"},
		{"negative timeout", "FETCH_TIMEOUT_SECONDS", "-3", "FETCH_TIMEOUT_SECONDS must be positive"},
		{"zero timeout", "FETCH_TIMEOUT_SECONDS", "0", "FETCH_TIMEOUT_SECONDS must be positive"},
		{"zero height", "WINDOW_HEIGHT", "0", "window size must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := saveEnv(t, allEnvKeys)
			defer restoreEnv(t, saved)
			clearEnv(t, allEnvKeys)

			os.Setenv("API_KEY", "demo")
			os.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q, got config %+v", tt.key, tt.value, cfg)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	os.Setenv("API_KEY", "demo")
	os.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown LOG_LEVEL")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid test config", func(c *Config) {}, false},
		{"empty api key", func(c *Config) { c.AlphaVantage.APIKey = "" }, true},
		{"empty base url", func(c *Config) { c.AlphaVantage.BaseURL = "" }, true},
		{"zero timeout", func(c *Config) { c.Fetch.TimeoutSeconds = 0 }, true},
		{"zero window height", func(c *Config) { c.Window.Height = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	saved := saveEnv(t, allEnvKeys)
	defer restoreEnv(t, saved)
	clearEnv(t, allEnvKeys)

	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadEnvFile(filepath.Join(t.TempDir(), "nope.env")); err != nil {
			t.Errorf("expected nil error for missing file, got %v", err)
		}
	})

	t.Run("populates environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("API_KEY=from-file\nLOG_LEVEL=warn\n"), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile() failed: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() failed: %v", err)
		}
		if cfg.AlphaVantage.APIKey != "from-file" {
			t.Errorf("expected APIKey='from-file', got %s", cfg.AlphaVantage.APIKey)
		}
		if cfg.Log.Level != "warn" {
			t.Errorf("expected Level='warn', got %s", cfg.Log.Level)
		}
	})

	t.Run("does not override existing variables", func(t *testing.T) {
		os.Setenv("API_KEY", "from-env")
		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("API_KEY=from-file\n"), 0o600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		if err := LoadEnvFile(path); err != nil {
			t.Fatalf("LoadEnvFile() failed: %v", err)
		}
		if got := os.Getenv("API_KEY"); got != "from-env" {
			t.Errorf("expected API_KEY to stay 'from-env', got %s", got)
		}
	})
}
