// Package config loads application configuration. Precedence, lowest to
// highest: built-in defaults, an optional YAML file, environment
// variables. A .env file is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sipsyai/agentflow/internal/core/cost"
)

// Config holds all settings for the flow engine and its server.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Runtime RuntimeConfig `yaml:"runtime"`
	Output  OutputConfig  `yaml:"output"`
	App     AppConfig     `yaml:"app"`
	Cost    CostConfig    `yaml:"cost"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StorageConfig selects the flow repository backend.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // memory, sqlite, postgres
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

// RuntimeConfig configures the agent execution runtime.
type RuntimeConfig struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	DefaultModel string  `yaml:"default_model"`
	Temperature  float64 `yaml:"temperature"`
}

// OutputConfig configures delivery sinks.
type OutputConfig struct {
	FileDir   string `yaml:"file_dir"`
	SMTPAddr  string `yaml:"smtp_addr"`
	EmailFrom string `yaml:"email_from"`
}

type AppConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // text or json
}

// CostConfig optionally overrides the built-in model rate table.
type CostConfig struct {
	Rates    map[string]cost.ModelRate `yaml:"rates"`
	Fallback *cost.ModelRate           `yaml:"fallback"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 300 * time.Second,
		},
		Storage: StorageConfig{
			Driver:     "memory",
			SQLitePath: "agentflow.db",
		},
		Runtime: RuntimeConfig{
			DefaultModel: "claude-3-5-haiku",
			Temperature:  0.7,
		},
		Output: OutputConfig{
			FileDir: "outputs",
		},
		App: AppConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Load builds the effective configuration. path may be empty; a missing
// file at an explicit path is an error, a missing .env never is.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	c.Server.Port = getEnvAsInt("AGENTFLOW_PORT", c.Server.Port)
	c.Server.RequestTimeout = getEnvAsDuration("AGENTFLOW_REQUEST_TIMEOUT", c.Server.RequestTimeout)

	c.Storage.Driver = getEnvWithDefault("AGENTFLOW_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.SQLitePath = getEnvWithDefault("AGENTFLOW_SQLITE_PATH", c.Storage.SQLitePath)
	c.Storage.PostgresDSN = getEnvWithDefault("AGENTFLOW_POSTGRES_DSN", c.Storage.PostgresDSN)

	c.Runtime.APIKey = getEnvWithDefault("AGENTFLOW_API_KEY", c.Runtime.APIKey)
	c.Runtime.BaseURL = getEnvWithDefault("AGENTFLOW_BASE_URL", c.Runtime.BaseURL)
	c.Runtime.DefaultModel = getEnvWithDefault("AGENTFLOW_DEFAULT_MODEL", c.Runtime.DefaultModel)
	c.Runtime.Temperature = getEnvAsFloat("AGENTFLOW_TEMPERATURE", c.Runtime.Temperature)

	c.Output.FileDir = getEnvWithDefault("AGENTFLOW_OUTPUT_DIR", c.Output.FileDir)
	c.Output.SMTPAddr = getEnvWithDefault("AGENTFLOW_SMTP_ADDR", c.Output.SMTPAddr)
	c.Output.EmailFrom = getEnvWithDefault("AGENTFLOW_EMAIL_FROM", c.Output.EmailFrom)

	c.App.LogLevel = getEnvWithDefault("AGENTFLOW_LOG_LEVEL", c.App.LogLevel)
	c.App.LogFormat = getEnvWithDefault("AGENTFLOW_LOG_FORMAT", c.App.LogFormat)
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("AGENTFLOW_POSTGRES_DSN is required for the postgres driver")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	return nil
}

// RateTable merges the configured rate overrides over the defaults.
func (c *Config) RateTable() cost.RateTable {
	table := cost.DefaultRates()
	for model, rate := range c.Cost.Rates {
		table.Rates[model] = rate
	}
	if c.Cost.Fallback != nil {
		table.Fallback = *c.Cost.Fallback
	}
	return table
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr := os.Getenv(key); valueStr != "" {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}
