// Package config holds the review classifier service configuration.
package config

import (
	"errors"
	"strings"
	"time"

	infraconfig "github.com/visiona/review-classifier/infrastructure/config"
	infralogger "github.com/visiona/review-classifier/infrastructure/logger"
	"github.com/visiona/review-classifier/internal/llm"
)

// Default configuration values.
const (
	defaultServiceName    = "review-classifier"
	defaultServiceVersion = "1.0.0"
	defaultServicePort    = 8077
	defaultDBHost         = "localhost"
	defaultDBPort         = 5432
	defaultDBUser         = "postgres"
	defaultDBName         = "reviews"
	defaultDBSSLMode      = "disable"
	defaultDBMaxConns     = 25
	defaultDBMaxIdleConns = 5
	defaultRedisAddress   = "localhost:6379"
	defaultRedisStream    = "reviews:moderation"
	defaultLLMTimeout     = 5 * time.Second
)

// Config holds all configuration for the review classifier service.
type Config struct {
	Service  ServiceConfig      `yaml:"service"`
	Database DatabaseConfig     `yaml:"database"`
	Redis    RedisConfig        `yaml:"redis"`
	LLM      LLMConfig          `yaml:"llm"`
	Logging  infralogger.Config `yaml:"logging"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Port        int      `env:"REVIEW_CLASSIFIER_PORT" yaml:"port"`
	Debug       bool     `env:"APP_DEBUG"              yaml:"debug"`
	CORSOrigins []string `env:"CORS_ORIGINS"           yaml:"cors_origins"`
}

// DatabaseConfig holds database configuration. When Enabled is false reviews
// are kept in memory.
type DatabaseConfig struct {
	Enabled         bool          `env:"DATABASE_ENABLED"  yaml:"enabled"`
	Host            string        `env:"POSTGRES_HOST"     yaml:"host"`
	Port            int           `env:"POSTGRES_PORT"     yaml:"port"`
	User            string        `env:"POSTGRES_USER"     yaml:"user"`
	Password        string        `env:"POSTGRES_PASSWORD" yaml:"password"` //nolint:gosec // connection config
	Database        string        `env:"POSTGRES_DB"       yaml:"database"`
	SSLMode         string        `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// RedisConfig holds the moderation event stream configuration.
type RedisConfig struct {
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"`
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"` //nolint:gosec // connection config
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Stream   string `env:"REDIS_STREAM"         yaml:"stream"`
}

// LLMConfig selects and configures the remote classifier backend.
type LLMConfig struct {
	Provider         string        `env:"REVIEW_LLM_PROVIDER" yaml:"provider"`
	OllamaURL        string        `env:"OLLAMA_API_URL"      yaml:"ollama_url"`
	OllamaModel      string        `env:"OLLAMA_MODEL"        yaml:"ollama_model"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"   yaml:"anthropic_api_key"` //nolint:gosec // api key config
	AnthropicModel   string        `env:"ANTHROPIC_MODEL"     yaml:"anthropic_model"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL"  yaml:"anthropic_base_url"`
	Timeout          time.Duration `env:"REVIEW_LLM_TIMEOUT"  yaml:"timeout"`
}

// Generator returns the llm package configuration for this section.
func (l LLMConfig) Generator() llm.Config {
	return llm.Config{
		Provider:         l.Provider,
		OllamaURL:        l.OllamaURL,
		OllamaModel:      l.OllamaModel,
		AnthropicAPIKey:  l.AnthropicAPIKey,
		AnthropicModel:   l.AnthropicModel,
		AnthropicBaseURL: l.AnthropicBaseURL,
		Timeout:          l.Timeout,
	}
}

// Load loads configuration from the specified path. The provider name is
// matched case-insensitively.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadWithDefaults[Config](path, setDefaults)
	if err != nil {
		return nil, err
	}
	cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(cfg.LLM.Provider))
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = llm.ProviderOllama
	}
	return cfg, nil
}

// Validate reports every invalid field.
func (c *Config) Validate() error {
	errs := []error{
		infraconfig.ValidatePort("service.port", c.Service.Port),
		infraconfig.ValidateOneOf("llm.provider", c.LLM.Provider, llm.Providers()...),
		infraconfig.ValidatePositiveDuration("llm.timeout", c.LLM.Timeout),
		infraconfig.ValidateLogLevel(c.Logging.Level),
	}
	if c.LLM.Provider == llm.ProviderAnthropic {
		errs = append(errs, infraconfig.ValidateRequired("llm.anthropic_api_key", c.LLM.AnthropicAPIKey))
	}
	if c.Database.Enabled {
		errs = append(errs,
			infraconfig.ValidateRequired("database.host", c.Database.Host),
			infraconfig.ValidatePort("database.port", c.Database.Port),
		)
	}
	if c.Redis.Enabled {
		errs = append(errs, infraconfig.ValidateRequired("redis.address", c.Redis.Address))
	}
	return errors.Join(errs...)
}

func setDefaults(cfg *Config) {
	setServiceDefaults(&cfg.Service)
	setDatabaseDefaults(&cfg.Database)
	setRedisDefaults(&cfg.Redis)
	setLLMDefaults(&cfg.LLM)
	cfg.Logging.SetDefaults()
}

func setServiceDefaults(s *ServiceConfig) {
	if s.Name == "" {
		s.Name = defaultServiceName
	}
	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
	if s.Port == 0 {
		s.Port = defaultServicePort
	}
}

func setDatabaseDefaults(d *DatabaseConfig) {
	if d.Host == "" {
		d.Host = defaultDBHost
	}
	if d.Port == 0 {
		d.Port = defaultDBPort
	}
	if d.User == "" {
		d.User = defaultDBUser
	}
	if d.Database == "" {
		d.Database = defaultDBName
	}
	if d.SSLMode == "" {
		d.SSLMode = defaultDBSSLMode
	}
	if d.MaxConnections == 0 {
		d.MaxConnections = defaultDBMaxConns
	}
	if d.MaxIdleConns == 0 {
		d.MaxIdleConns = defaultDBMaxIdleConns
	}
	if d.ConnMaxLifetime == 0 {
		d.ConnMaxLifetime = time.Hour
	}
}

func setRedisDefaults(r *RedisConfig) {
	if r.Address == "" {
		r.Address = defaultRedisAddress
	}
	if r.Stream == "" {
		r.Stream = defaultRedisStream
	}
}

func setLLMDefaults(l *LLMConfig) {
	if l.Provider == "" {
		l.Provider = llm.ProviderOllama
	}
	if l.OllamaURL == "" {
		l.OllamaURL = llm.DefaultOllamaURL
	}
	if l.OllamaModel == "" {
		l.OllamaModel = llm.DefaultOllamaModel
	}
	if l.AnthropicModel == "" {
		l.AnthropicModel = llm.DefaultAnthropicModel
	}
	if l.Timeout == 0 {
		l.Timeout = defaultLLMTimeout
	}
}
