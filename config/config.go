package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned by Load when API_KEY is absent or empty
var ErrMissingAPIKey = errors.New("API_KEY not found in environment or .env file")

// Config holds all application configuration
type Config struct {
	// Market data provider
	AlphaVantage AlphaVantageConfig

	// Fetch behaviour
	Fetch FetchConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Desktop window
	Window WindowConfig

	// Logging
	Log LogConfig
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey  string
	BaseURL string
}

// FetchConfig holds settings for the daily time-series fetch
type FetchConfig struct {
	TimeoutSeconds int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	CORSAllowedOrigins string
	Addr               string // listen address for cmd/web-server
}

// WindowConfig holds the desktop window size
type WindowConfig struct {
	Width  int
	Height int
}

// LogConfig holds logger settings
type LogConfig struct {
	Production bool
	Level      string
}

// LoadEnvFile loads .env-style files into the process environment.
// Files that do not exist are skipped; existing variables are not overridden.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	apiKey := strings.TrimSpace(os.Getenv("API_KEY"))
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var parseErrs []error
	envInt := func(key string, defaultValue int) int {
		v, err := getEnvInt(key, defaultValue)
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		return v
	}

	cfg := &Config{
		AlphaVantage: AlphaVantageConfig{
			APIKey:  apiKey,
			BaseURL: strings.TrimRight(getEnvString("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co"), "/"),
		},
		Fetch: FetchConfig{
			TimeoutSeconds: envInt("FETCH_TIMEOUT_SECONDS", 30),
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			Addr:               getEnvString("HTTP_ADDR", ":8080"),
		},
		Window: WindowConfig{
			Width:  envInt("WINDOW_WIDTH", 1400),
			Height: envInt("WINDOW_HEIGHT", 900),
		},
		Log: LogConfig{
			Production: getEnvString("APP_ENV", "development") == "production",
			Level:      strings.ToLower(getEnvString("LOG_LEVEL", "info")),
		},
	}

	if err := errors.Join(parseErrs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AlphaVantage.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.AlphaVantage.BaseURL == "" {
		return fmt.Errorf("ALPHA_VANTAGE_BASE_URL must not be empty")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be positive, got %d", c.Fetch.TimeoutSeconds)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.Log.Level)
	}

	return nil
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// getEnvInt returns defaultValue when key is unset. Range checks belong to Validate.
func getEnvInt(key string, defaultValue int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue, fmt.Errorf("%s must be an integer, got %q", key, val)
	}
	return parsed, nil
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		AlphaVantage: AlphaVantageConfig{
			APIKey:  "test-api-key",
			BaseURL: "https://www.alphavantage.co",
		},
		Fetch: FetchConfig{
			TimeoutSeconds: 30,
		},
		HTTP: HTTPConfig{
			CORSAllowedOrigins: "*",
			Addr:               ":8080",
		},
		Window: WindowConfig{
			Width:  1400,
			Height: 900,
		},
		Log: LogConfig{
			Production: false,
			Level:      "info",
		},
	}
}
