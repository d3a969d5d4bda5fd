package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	Host        string `json:"host"`
	Port        int    `json:"port"`
	Environment string `json:"environment"`
	APIPrefix   string `json:"api_prefix"`
	LogLevel    string `json:"log_level"`

	// CORS
	CORSOrigins []string `json:"cors_origins"`

	// Rate Limiting (turn endpoint only)
	RateLimitPerMinute int `json:"rate_limit_per_minute"`

	// Security
	EnablePIIDetection bool     `json:"enable_pii_detection"`
	PIIKeywords        []string `json:"pii_keywords"`
	EnableAuditLogging bool     `json:"enable_audit_logging"`

	// AI / LLM
	AnthropicAPIKey  string `json:"anthropic_api_key"`
	AnthropicBaseURL string `json:"anthropic_base_url"` // override for a compatible proxy
	Model            string `json:"model"`
	MaxTokens        int    `json:"max_tokens"`
	AgentTimeout     int    `json:"agent_timeout"` // seconds per turn

	// Orchestration
	Prompt              string `json:"prompt"`
	SeedTranscript      string `json:"seed_transcript"`
	ExecuteAllToolCalls bool   `json:"execute_all_tool_calls"`

	// Integrations
	EnableMCP     bool   `json:"enable_mcp"`     // mount the MCP tool server under the API prefix
	EnableTracing bool   `json:"enable_tracing"` // export spans over OTLP/HTTP (OTEL_* env)
	ServiceName   string `json:"service_name"`
}

// Load reads the config file named by ROSTER_CONFIG, if any.
func Load() (*Config, error) {
	return LoadFrom(getEnv("ROSTER_CONFIG", ""))
}

// LoadFrom applies defaults, then the JSON file at path (skipped when
// empty), then environment overrides, and validates the result.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{
		Host:               DefaultHost,
		Port:               DefaultPort,
		Environment:        DefaultEnvironment,
		APIPrefix:          DefaultAPIPrefix,
		LogLevel:           DefaultLogLevel,
		CORSOrigins:        DefaultCORSOrigins,
		RateLimitPerMinute: DefaultRateLimitPerMinute,
		EnablePIIDetection: true,
		PIIKeywords:        DefaultPIIKeywords,
		EnableAuditLogging: true,
		Model:              DefaultModel,
		MaxTokens:          DefaultMaxTokens,
		AgentTimeout:       DefaultAgentTimeout,
		Prompt:             DefaultPrompt,
		EnableMCP:          true,
		ServiceName:        DefaultServiceName,
	}

	if path != "" {
		if err := loadJSON(path, cfg); err != nil {
			return nil, err
		}
	}

	// Environment overrides
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if c.AgentTimeout <= 0 {
		errs = append(errs, fmt.Errorf("agent_timeout must be positive, got %d", c.AgentTimeout))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("rate_limit_per_minute must not be negative, got %d", c.RateLimitPerMinute))
	}
	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		errs = append(errs, fmt.Errorf("api_prefix %q must start with /", c.APIPrefix))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TurnTimeout bounds a single conversation turn.
func (c *Config) TurnTimeout() time.Duration {
	return time.Duration(c.AgentTimeout) * time.Second
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func loadJSON(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := getEnv("ROSTER_HOST", ""); v != "" {
		cfg.Host = v
	}
	if v := getEnv("ROSTER_PORT", ""); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := getEnv("ROSTER_ENV", ""); v != "" {
		cfg.Environment = v
	}
	if v := getEnv("ROSTER_LOG_LEVEL", ""); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv("ROSTER_CORS_ORIGINS", ""); v != "" {
		cfg.CORSOrigins = strings.Split(v, ",")
	}
	if v := getEnv("ROSTER_RATE_LIMIT_PER_MINUTE", ""); v != "" {
		if r, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitPerMinute = r
		}
	}
	if v := getEnv("ANTHROPIC_API_KEY", ""); v != "" {
		cfg.AnthropicAPIKey = v
	}
	if v := getEnv("ANTHROPIC_BASE_URL", ""); v != "" {
		cfg.AnthropicBaseURL = v
	}
	if v := getEnv("ROSTER_MODEL", ""); v != "" {
		cfg.Model = v
	}
	if v := getEnv("ROSTER_MAX_TOKENS", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := getEnv("ROSTER_AGENT_TIMEOUT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AgentTimeout = n
		}
	}
	if v := getEnv("ROSTER_PROMPT", ""); v != "" {
		cfg.Prompt = v
	}
	if v := getEnv("ROSTER_SEED_TRANSCRIPT", ""); v != "" {
		cfg.SeedTranscript = v
	}
	if v := getEnv("ROSTER_EXECUTE_ALL_TOOL_CALLS", ""); v != "" {
		cfg.ExecuteAllToolCalls = v == "true" || v == "1"
	}
	if v := getEnv("ROSTER_AUDIT_LOGGING", ""); v != "" {
		cfg.EnableAuditLogging = v == "true" || v == "1"
	}
	if v := getEnv("ROSTER_PII_DETECTION", ""); v != "" {
		cfg.EnablePIIDetection = v == "true" || v == "1"
	}
	if v := getEnv("ROSTER_MCP", ""); v != "" {
		cfg.EnableMCP = v == "true" || v == "1"
	}
	if v := getEnv("ROSTER_TRACING", ""); v != "" {
		cfg.EnableTracing = v == "true" || v == "1"
	}
	if v := getEnv("OTEL_SERVICE_NAME", ""); v != "" {
		cfg.ServiceName = v
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}
