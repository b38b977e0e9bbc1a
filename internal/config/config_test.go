package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visiona/review-classifier/internal/config"
	"github.com/visiona/review-classifier/internal/llm"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	for _, key := range []string{
		"REVIEW_CLASSIFIER_PORT", "DATABASE_ENABLED", "REDIS_EVENTS_ENABLED", "REDIS_ADDRESS",
		"REVIEW_LLM_PROVIDER", "OLLAMA_API_URL", "OLLAMA_MODEL", "ANTHROPIC_API_KEY",
		"REVIEW_LLM_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, "review-classifier", cfg.Service.Name)
	assert.Equal(t, 8077, cfg.Service.Port)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "reviews:moderation", cfg.Redis.Stream)
	assert.Equal(t, llm.ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, llm.DefaultOllamaURL, cfg.LLM.OllamaURL)
	assert.Equal(t, llm.DefaultOllamaModel, cfg.LLM.OllamaModel)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OLLAMA_API_URL", "http://mock:11434/api/generate")
	t.Setenv("REVIEW_LLM_TIMEOUT", "750ms")
	t.Setenv("DATABASE_ENABLED", "true")

	path := filepath.Join(t.TempDir(), "config.yml")
	body := "service:\n  port: 9100\nllm:\n  provider: none\n  ollama_model: mistral\nredis:\n  enabled: true\n  stream: mod\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Service.Port)
	assert.Equal(t, llm.ProviderNone, cfg.LLM.Provider)
	assert.Equal(t, "mistral", cfg.LLM.OllamaModel)
	assert.Equal(t, "http://mock:11434/api/generate", cfg.LLM.OllamaURL)
	assert.Equal(t, 750*time.Millisecond, cfg.LLM.Timeout)
	assert.True(t, cfg.Database.Enabled)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "mod", cfg.Redis.Stream)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ProviderCaseInsensitive(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REVIEW_LLM_PROVIDER", " Anthropic ")
	t.Setenv("ANTHROPIC_API_KEY", "k")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)

	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	require.NoError(t, cfg.Validate())

	t.Setenv("ANTHROPIC_API_KEY", "")
	cfg, err = config.Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	require.ErrorContains(t, cfg.Validate(), "llm.anthropic_api_key")
}

func TestValidate(t *testing.T) {
	isolateEnv(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"unknown provider", func(c *config.Config) { c.LLM.Provider = "gpt" }, "llm.provider"},
		{"zero timeout", func(c *config.Config) { c.LLM.Timeout = 0 }, "llm.timeout"},
		{"bad port", func(c *config.Config) { c.Service.Port = 70000 }, "service.port"},
		{"anthropic without key", func(c *config.Config) { c.LLM.Provider = llm.ProviderAnthropic }, "llm.anthropic_api_key"},
		{"redis without address", func(c *config.Config) {
			c.Redis.Enabled = true
			c.Redis.Address = ""
		}, "redis.address"},
		{"bad log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yml"))
			require.NoError(t, err)
			tt.mutate(cfg)

			err = cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMConfig_Generator(t *testing.T) {
	t.Parallel()

	l := config.LLMConfig{Provider: "ollama", OllamaURL: "u", OllamaModel: "m", Timeout: time.Second}
	g := l.Generator()
	assert.Equal(t, "ollama", g.Provider)
	assert.Equal(t, "u", g.OllamaURL)
	assert.Equal(t, "m", g.OllamaModel)
	assert.Equal(t, time.Second, g.Timeout)
}
