package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENWEATHER_API_KEY", "weather-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GENERATION_TIMEOUT", "")
	t.Setenv("GEMINI_STRUCTURED_OUTPUT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.True(t, cfg.Gemini.StructuredOutput)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 30*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 3, cfg.Gemini.MaxRetries)
	assert.Equal(t, 10*time.Minute, cfg.EnvCacheTTL)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GENERATION_TIMEOUT", "12s")
	t.Setenv("OPENWEATHER_BASE_URL", "http://weather.local")
	t.Setenv("GEMINI_STRUCTURED_OUTPUT", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Gemini.StructuredOutput)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 12*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, "http://weather.local", cfg.OpenWeather.BaseURL)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENWEATHER_API_KEY", "weather-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.NotContains(t, err.Error(), "OPENWEATHER_API_KEY")
}

func TestLoadProviders_SkipsServerSettings(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("PORT", "0")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("OPENWEATHER_API_KEY", "weather-key")

	cfg, err := LoadProviders()
	require.NoError(t, err)
	assert.Equal(t, "gemini-key", cfg.Gemini.APIKey)

	_, err = Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestValidate_NonPositiveTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("PROFILE_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROFILE_TIMEOUT")
}

func TestDatabaseConfig_ConnString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", Name: "walk", Username: "u", Password: "p", Schema: "public"}
	assert.Equal(t, "postgres://u:p@db:5432/walk?sslmode=disable&search_path=public", d.ConnString())
}
