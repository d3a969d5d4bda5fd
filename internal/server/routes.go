package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/config"
	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/handler"
	"github.com/cortexai/roster/internal/middleware"
	"github.com/cortexai/roster/internal/prompts"
	"github.com/cortexai/roster/internal/security"
	"github.com/cortexai/roster/internal/tools"
	"github.com/cortexai/roster/internal/toolserver"
)

func (s *Server) setupRoutes(ctx context.Context, o options) (http.Handler, error) {
	cfg := s.cfg

	// ─── Security ───────────────────────────────────────────────────────────────
	var piiDetector *security.PIIDetector
	if cfg.EnablePIIDetection {
		piiDetector = security.NewPIIDetector(cfg.PIIKeywords)
	}
	promptVal := security.NewPromptValidator()
	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)

	// ─── Orchestration ──────────────────────────────────────────────────────────
	systemPrompt, ok := prompts.Lookup(prompts.Name(cfg.Prompt))
	if !ok {
		log.Warn().Str("prompt", cfg.Prompt).Msg("unknown prompt, using fallback")
		systemPrompt = prompts.Fallback
	}

	sessions, err := handler.NewSessionManager(systemPrompt, o.seed)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(tools.DefaultCatalog(), dispatch.WithAudit(auditLogger))

	var turnAgent *agent.Agent
	if o.model != nil {
		turnAgent = agent.New(o.model, dispatcher, agent.WithExecuteAllToolCalls(cfg.ExecuteAllToolCalls))
	}

	log.Info().
		Bool("model_enabled", turnAgent != nil).
		Bool("seeded", o.seed != nil).
		Bool("execute_all_tool_calls", cfg.ExecuteAllToolCalls).
		Bool("audit_logging", cfg.EnableAuditLogging).
		Bool("pii_detection", cfg.EnablePIIDetection).
		Bool("mcp", cfg.EnableMCP).
		Int("rate_limit_per_minute", cfg.RateLimitPerMinute).
		Str("prompt", cfg.Prompt).
		Msg("service configuration")

	// ─── Handlers ────────────────────────────────────────────────────────────────
	healthH := handler.NewHealthHandler(sessions, turnAgent != nil)
	toolsH := handler.NewToolsHandler(dispatcher, sessions)
	peopleH := handler.NewPeopleHandler(sessions)
	sessionH := handler.NewSessionHandler(sessions)
	turnsH := handler.NewTurnsHandler(turnAgent, sessions, promptVal, piiDetector, auditLogger, cfg.AgentTimeout)

	// ─── Router ──────────────────────────────────────────────────────────────────
	r := chi.NewRouter()

	// RealIP first so logging and rate limiting see the client address.
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)
	r.Use(middleware.SecurityHeaders)
	corsCfg := middleware.DefaultCORSConfig(cfg.CORSOrigins)
	corsCfg.MaxAge = config.DefaultCORSMaxAge
	r.Use(middleware.CORS(corsCfg))

	r.Get("/health", healthH.Health)
	r.Get("/", healthH.Health)

	api := func(path string) string { return cfg.APIPrefix + path }
	r.Group(func(r chi.Router) {
		r.Get(api("/tools"), toolsH.List)
		r.Post(api("/tools/{name}"), toolsH.Call)

		r.Get(api("/people"), peopleH.List)
		r.Get(api("/people/{name}"), peopleH.Get)

		r.Get(api("/session"), sessionH.Get)
		r.Delete(api("/session"), sessionH.Reset)

		// Each turn is a paid model call.
		r.With(middleware.RateLimit(ctx, cfg.RateLimitPerMinute)).Post(api("/turns"), turnsH.Turn)

		if cfg.EnableMCP {
			mcpSrv := toolserver.New(dispatcher, sessions)
			r.Handle(api("/mcp"), mcp.NewStreamableHTTPHandler(
				func(*http.Request) *mcp.Server { return mcpSrv },
				&mcp.StreamableHTTPOptions{Stateless: true},
			))
		}
	})

	return r, nil
}
