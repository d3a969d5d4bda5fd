package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cortexai/roster/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ROSTER_CONFIG", "")
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != config.DefaultPort || cfg.Model != config.DefaultModel || cfg.Prompt != config.DefaultPrompt {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.ExecuteAllToolCalls {
		t.Error("only the first tool call should execute by default")
	}
	if cfg.TurnTimeout() != time.Duration(config.DefaultAgentTimeout)*time.Second {
		t.Errorf("TurnTimeout = %v", cfg.TurnTimeout())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.json")
	body := `{"port": 9100, "model": "file-model", "execute_all_tool_calls": true, "environment": "production"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROSTER_CONFIG", path)
	t.Setenv("ROSTER_MODEL", "env-model")
	t.Setenv("ROSTER_AGENT_TIMEOUT", "30")
	t.Setenv("ROSTER_CORS_ORIGINS", "https://a.test,https://b.test")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("port = %d, want value from file", cfg.Port)
	}
	if cfg.Model != "env-model" {
		t.Errorf("model = %q, env should win over file", cfg.Model)
	}
	if !cfg.ExecuteAllToolCalls || cfg.IsDevelopment() {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.AgentTimeout != 30 {
		t.Errorf("agent timeout = %d", cfg.AgentTimeout)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("cors origins = %v", cfg.CORSOrigins)
	}
	if cfg.Addr() != "0.0.0.0:9100" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROSTER_CONFIG", path)
	if _, err := config.Load(); err == nil {
		t.Fatal("expected parse error")
	}

	t.Setenv("ROSTER_CONFIG", filepath.Join(t.TempDir(), "missing.json"))
	if _, err := config.Load(); err == nil {
		t.Fatal("expected read error")
	}
}

func TestValidate(t *testing.T) {
	cfg := &config.Config{Port: 0, MaxTokens: -1, AgentTimeout: 0, APIPrefix: "api"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"port", "max_tokens", "agent_timeout", "api_prefix"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}

	ok := &config.Config{Port: 8000, MaxTokens: 1, AgentTimeout: 1, APIPrefix: "/api/v1"}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestIntegrationOverrides(t *testing.T) {
	t.Setenv("ROSTER_CONFIG", "")
	t.Setenv("ROSTER_MCP", "false")
	t.Setenv("ROSTER_TRACING", "1")
	t.Setenv("OTEL_SERVICE_NAME", "roster-staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.EnableMCP || !cfg.EnableTracing || cfg.ServiceName != "roster-staging" {
		t.Errorf("integration settings = mcp:%v tracing:%v service:%q", cfg.EnableMCP, cfg.EnableTracing, cfg.ServiceName)
	}
}
