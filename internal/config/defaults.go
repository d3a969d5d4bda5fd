package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"

	DefaultRateLimitPerMinute = 30

	DefaultModel     = "claude-sonnet-4-6"
	DefaultMaxTokens = 4096

	DefaultAgentTimeout    = 120 // seconds
	DefaultShutdownTimeout = 15 * time.Second

	DefaultPrompt = "default_prompt"

	DefaultCORSMaxAge = 300

	DefaultServiceName = "roster"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

var DefaultPIIKeywords = []string{
	"ssn", "social security", "credit card", "password",
	"date of birth", "passport number", "bank account",
}
