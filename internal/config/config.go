// Package config loads and validates the gateway configuration.
//
// DESIGN: Server and default sampling parameters come from a YAML file with
// ${VAR:-default} env expansion. The two Cortensor credentials (API key and
// base URL) are required and read from the process environment; missing
// credentials fail fast with a *ConfigError before any request is served.
//
// FILES:
//   - config.go: Root Config struct, Load(), Validate(), env expansion
//   - errors.go: ConfigError type and helpers
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables holding the required Cortensor credentials.
const (
	EnvAPIKey  = "CORTENSOR_API_KEY"
	EnvBaseURL = "CORTENSOR_BASE_URL"
)

// Config is the root configuration for the gateway.
type Config struct {
	Server    ServerConfig    `yaml:"server"`     // HTTP server settings
	Cortensor CortensorConfig `yaml:"cortensor"`  // Downstream completion endpoint
	Defaults  Defaults        `yaml:"defaults"`   // Sampling parameter defaults
	WebSearch WebSearchConfig `yaml:"web_search"` // Search augmentation settings
	Logging   LoggingConfig   `yaml:"logging"`    // zerolog settings
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // Port to listen on
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Max time to read request
	WriteTimeout time.Duration `yaml:"write_timeout"` // Max time to write response
}

// CortensorConfig contains downstream endpoint settings. APIKey and BaseURL
// are normally populated from the environment (EnvAPIKey, EnvBaseURL).
type CortensorConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	SessionID      int64         `yaml:"session_id"`       // Default completion session
	QuerySessionID int64         `yaml:"query_session_id"` // Session for search query generation
	RequestTimeout time.Duration `yaml:"request_timeout"`  // HTTP timeout for completion calls
}

// Defaults holds the global sampling parameter defaults. Per-call model
// config overrides these; the inbound request's own temperature/max_tokens
// fields are the last fallback for those two parameters.
type Defaults struct {
	Temperature      float64 `yaml:"temperature"`
	MaxTokens        int     `yaml:"max_tokens"`
	TopP             float64 `yaml:"top_p"`
	TopK             int     `yaml:"top_k"`
	PresencePenalty  float64 `yaml:"presence_penalty"`
	FrequencyPenalty float64 `yaml:"frequency_penalty"`
	Timeout          int     `yaml:"timeout"`         // Downstream completion timeout, seconds
	PromptType       int     `yaml:"prompt_type"`     // Cortensor prompt_type field
	PromptTemplate   string  `yaml:"prompt_template"` // Cortensor prompt_template field
	ClientReference  string  `yaml:"client_reference"`
}

// WebSearchConfig contains search augmentation settings.
//
// TokenBudget is a character-based estimate ceiling (chars/4), NOT a real
// tokenizer count. Downstream thresholds were tuned against this heuristic;
// do not replace it with an exact tokenizer.
type WebSearchConfig struct {
	Mode            string `yaml:"mode"`             // prompt, force, disable
	MaxResults      int    `yaml:"max_results"`      // Results requested from provider
	TokenBudget     int    `yaml:"token_budget"`     // Total prompt ceiling, estimated tokens
	HeaderReserve   int    `yaml:"header_reserve"`   // Reserved for search section headers
	IncludeDateTime bool   `yaml:"include_datetime"` // Append current date/time block to prompts
}

// LoggingConfig contains zerolog settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console, auto (console on TTY)
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// expandEnvWithDefaults expands environment variables with support for
// default values. Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// Load reads configuration from a YAML file.
// An empty path yields the built-in defaults plus environment credentials.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := defaultConfig()
		cfg.applyEnv()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes.
// Supports ${VAR:-default} env var expansion, env credential overrides,
// and validation.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := expandEnvWithDefaults(string(data))

	cfg := defaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns the built-in defaults applied before YAML overlay.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 10 * time.Minute,
		},
		Cortensor: CortensorConfig{
			SessionID:      -1,
			QuerySessionID: -1,
			RequestTimeout: 5 * time.Minute,
		},
		Defaults: Defaults{
			Temperature:     0.7,
			MaxTokens:       1024,
			TopP:            0.95,
			TopK:            40,
			Timeout:         300,
			PromptType:      1,
			ClientReference: "openai-gateway",
		},
		WebSearch: WebSearchConfig{
			Mode:          "prompt",
			MaxResults:    5,
			TokenBudget:   3000,
			HeaderReserve: 100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
			Output: "stdout",
		},
	}
}

// applyEnv overlays the required credentials from the process environment.
// Environment values win over YAML values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Cortensor.APIKey = v
	}
	if v := os.Getenv(EnvBaseURL); v != "" {
		c.Cortensor.BaseURL = v
	}
}

// Validate checks if the configuration is valid. Credential failures are
// *ConfigError so callers can map them to a client-correctable status.
func (c *Config) Validate() error {
	if c.Cortensor.APIKey == "" {
		return &ConfigError{Message: fmt.Sprintf("%s is required", EnvAPIKey)}
	}
	if c.Cortensor.BaseURL == "" {
		return &ConfigError{Message: fmt.Sprintf("%s is required", EnvBaseURL)}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout is required")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout is required")
	}

	switch c.WebSearch.Mode {
	case "prompt", "force", "disable":
	default:
		return fmt.Errorf("invalid web_search.mode: %q (must be prompt, force or disable)", c.WebSearch.Mode)
	}
	if c.WebSearch.TokenBudget <= 0 {
		return fmt.Errorf("web_search.token_budget must be positive")
	}
	if c.WebSearch.HeaderReserve < 0 {
		return fmt.Errorf("web_search.header_reserve must not be negative")
	}
	if c.WebSearch.MaxResults <= 0 {
		return fmt.Errorf("web_search.max_results must be positive")
	}

	if c.Defaults.MaxTokens <= 0 {
		return fmt.Errorf("defaults.max_tokens must be positive")
	}
	if c.Defaults.Timeout <= 0 {
		return fmt.Errorf("defaults.timeout must be positive")
	}

	return nil
}
