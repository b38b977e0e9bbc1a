package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/visiona/review-classifier/infrastructure/config"
)

type sampleConfig struct {
	Port    int           `env:"SAMPLE_PORT"    yaml:"port"`
	URL     string        `env:"SAMPLE_URL"     yaml:"url"`
	Timeout time.Duration `env:"SAMPLE_TIMEOUT" yaml:"timeout"`
	Nested  struct {
		Enabled bool     `env:"SAMPLE_ENABLED" yaml:"enabled"`
		Tags    []string `env:"SAMPLE_TAGS"    yaml:"tags"`
	} `yaml:"nested"`
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_YAMLThenEnvOverride(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SAMPLE_URL", "http://mock:11434/api/generate")
	t.Setenv("SAMPLE_TIMEOUT", "250ms")
	t.Setenv("SAMPLE_TAGS", "a, b ,c")

	path := writeConfig(t, "port: 9000\nurl: http://yaml\nnested:\n  enabled: true\n")

	cfg, err := config.Load[sampleConfig](path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "http://mock:11434/api/generate", cfg.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Nested.Tags)
}

func TestLoad_MissingFileUsesEnvOnly(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SAMPLE_PORT", "8123")

	cfg, err := config.Load[sampleConfig](filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Port)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	path := writeConfig(t, "port: [not-an-int\n")
	_, err := config.Load[sampleConfig](path)
	require.Error(t, err)
}

func TestLoadWithDefaults_EnvBeatsDefaults(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SAMPLE_PORT", "7000")

	path := writeConfig(t, "url: http://yaml\n")
	cfg, err := config.LoadWithDefaults(path, func(c *sampleConfig) {
		c.Port = 1
		if c.Timeout == 0 {
			c.Timeout = 5 * time.Second
		}
	})
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestValidators(t *testing.T) {
	t.Parallel()

	require.Error(t, config.ValidatePort("service.port", 0))
	require.NoError(t, config.ValidatePort("service.port", 8077))
	require.Error(t, config.ValidateRequired("llm.ollama_url", "  "))
	require.Error(t, config.ValidatePositiveDuration("llm.timeout", 0))
	require.NoError(t, config.ValidateOneOf("llm.provider", "ollama", "ollama", "anthropic", "none"))

	err := config.ValidateOneOf("llm.provider", "openai", "ollama", "none")
	var vErr *config.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "llm.provider", vErr.Field)
}

func TestLoad_InvalidEnvValues(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("SAMPLE_TIMEOUT", "five seconds")
	t.Setenv("SAMPLE_ENABLED", "maybe")

	_, err := config.Load[sampleConfig](filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAMPLE_TIMEOUT")
	assert.Contains(t, err.Error(), "SAMPLE_ENABLED")
}

func TestLoad_BoolSpellings(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))

	for raw, want := range map[string]bool{"on": true, "YES": true, "0": false, "off": false} {
		t.Setenv("SAMPLE_ENABLED", raw)

		cfg, err := config.Load[sampleConfig](filepath.Join(t.TempDir(), "nope.yml"))
		require.NoError(t, err, raw)
		assert.Equal(t, want, cfg.Nested.Enabled, raw)
	}
}
