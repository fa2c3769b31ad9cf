/*
Package config loads the service configuration from the process environment.
A local .env file is read first when present, so development setups can keep
their secrets out of the shell profile.
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration handed to every constructor.
type Config struct {
	Port      int
	AppEnv    string
	JWTSecret string

	Database    DatabaseConfig
	Gemini      GeminiConfig
	OpenWeather OpenWeatherConfig

	// EnvCacheSize and EnvCacheTTL bound the environment snapshot cache.
	EnvCacheSize int
	EnvCacheTTL  time.Duration

	// Per-stage budgets for the external collaborators.
	ProfileTimeout     time.Duration
	EnvironmentTimeout time.Duration
	GenerationTimeout  time.Duration
}

// DatabaseConfig holds the Postgres connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	Username string
	Password string
	Schema   string
}

// ConnString renders the pgx connection URL.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&search_path=%s",
		d.Username, d.Password, d.Host, d.Port, d.Name, d.Schema)
}

// GeminiConfig configures the generative text provider client.
type GeminiConfig struct {
	APIKey            string
	Model             string
	BaseURL           string
	MaxRetries        int
	RequestsPerSecond float64
	// StructuredOutput asks Gemini for schema-constrained JSON on structured intents.
	StructuredOutput bool
}

// OpenWeatherConfig configures the environment data provider client.
type OpenWeatherConfig struct {
	APIKey  string
	BaseURL string
}

const (
	defaultPort           = 8080
	defaultGeminiModel    = "gemini-2.5-flash"
	defaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	defaultWeatherBaseURL = "https://api.openweathermap.org"
)

// Load reads .env (if any) and the environment into a Config validated for the API server.
func Load() (*Config, error) {
	cfg := read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadProviders is Load for tools that only talk to the outbound providers
// and need neither the database nor the session secret.
func LoadProviders() (*Config, error) {
	cfg := read()
	if err := cfg.ValidateProviders(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func read() *Config {
	// Missing .env is normal in containers.
	_ = godotenv.Load()

	return &Config{
		Port:      envInt("PORT", defaultPort),
		AppEnv:    envString("APP_ENV", "development"),
		JWTSecret: os.Getenv("SESSION_SECRET"),
		Database: DatabaseConfig{
			Host:     os.Getenv("BLUEPRINT_DB_HOST"),
			Port:     envString("BLUEPRINT_DB_PORT", "5432"),
			Name:     os.Getenv("BLUEPRINT_DB_DATABASE"),
			Username: os.Getenv("BLUEPRINT_DB_USERNAME"),
			Password: os.Getenv("BLUEPRINT_DB_PASSWORD"),
			Schema:   envString("BLUEPRINT_DB_SCHEMA", "public"),
		},
		Gemini: GeminiConfig{
			APIKey:            os.Getenv("GEMINI_API_KEY"),
			Model:             envString("GEMINI_MODEL", defaultGeminiModel),
			BaseURL:           envString("GEMINI_BASE_URL", defaultGeminiBaseURL),
			MaxRetries:        envInt("GEMINI_MAX_RETRIES", 3),
			RequestsPerSecond: envFloat("GEMINI_REQUESTS_PER_SECOND", 5),
			StructuredOutput:  envBool("GEMINI_STRUCTURED_OUTPUT", true),
		},
		OpenWeather: OpenWeatherConfig{
			APIKey:  os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL: envString("OPENWEATHER_BASE_URL", defaultWeatherBaseURL),
		},
		EnvCacheSize:       envInt("ENV_CACHE_SIZE", 512),
		EnvCacheTTL:        envDuration("ENV_CACHE_TTL", 10*time.Minute),
		ProfileTimeout:     envDuration("PROFILE_TIMEOUT", 3*time.Second),
		EnvironmentTimeout: envDuration("ENVIRONMENT_TIMEOUT", 5*time.Second),
		GenerationTimeout:  envDuration("GENERATION_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the settings every server deployment needs.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("SESSION_SECRET must be set"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	return errors.Join(append(errs, c.ValidateProviders())...)
}

// ValidateProviders checks the provider credentials, pacing and timeouts.
func (c *Config) ValidateProviders() error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY must be set"))
	}
	if c.OpenWeather.APIKey == "" {
		errs = append(errs, errors.New("OPENWEATHER_API_KEY must be set"))
	}
	if c.Gemini.RequestsPerSecond <= 0 {
		errs = append(errs, errors.New("GEMINI_REQUESTS_PER_SECOND must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"ENV_CACHE_TTL":       c.EnvCacheTTL,
		"PROFILE_TIMEOUT":     c.ProfileTimeout,
		"ENVIRONMENT_TIMEOUT": c.EnvironmentTimeout,
		"GENERATION_TIMEOUT":  c.GenerationTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v == 0 {
		return fallback
	}
	return v
}

func envFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v == 0 {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
