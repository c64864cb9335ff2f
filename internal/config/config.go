package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	LLMProvider     string `env:"LLM_PROVIDER" envDefault:"openai"`
	ModelName       string `env:"MODEL_NAME" envDefault:"gpt-5-mini"`
	ReasoningEffort string `env:"REASONING_EFFORT" envDefault:"minimal"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	RedisURL string        `env:"REDIS_URL" envDefault:"localhost:6379"`
	DataDir  string        `env:"DATA_DIR" envDefault:"./data"`
	SceneTTL time.Duration `env:"SCENE_TTL" envDefault:"1h"`

	GenerationAttempts int    `env:"GENERATION_ATTEMPTS" envDefault:"3"`
	ContentRating      string `env:"CONTENT_RATING" envDefault:"PG13"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalises LLMProvider to lower case.
func (c *Config) Validate() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when using the openai provider")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when using the anthropic provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider %q (supported: %s, %s)", c.LLMProvider, ProviderOpenAI, ProviderAnthropic)
	}

	if c.GenerationAttempts < 1 {
		return fmt.Errorf("GENERATION_ATTEMPTS must be at least 1, got %d", c.GenerationAttempts)
	}
	if c.SceneTTL <= 0 {
		return fmt.Errorf("SCENE_TTL must be positive, got %s", c.SceneTTL)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
