// Package server wires configuration, the model and the handlers into an
// HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cortexai/roster/internal/config"
	"github.com/cortexai/roster/internal/handler"
	"github.com/cortexai/roster/internal/ingest"
	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/store"
)

type Server struct {
	cfg  *config.Config
	http *http.Server
}

type options struct {
	model llm.Model
	seed  handler.SeedFunc
}

type Option func(*options)

// WithModel replaces the Anthropic model built from the config.
func WithModel(m llm.Model) Option {
	return func(o *options) { o.model = m }
}

// WithSeed replaces the transcript seed built from the config.
func WithSeed(fn handler.SeedFunc) Option {
	return func(o *options) { o.seed = fn }
}

// New builds the server. ctx bounds background work such as the rate
// limiter's janitor.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if o.model == nil && cfg.AnthropicAPIKey != "" {
		o.model = llm.NewAnthropicModel(llm.AnthropicConfig{
			APIKey:    cfg.AnthropicAPIKey,
			BaseURL:   cfg.AnthropicBaseURL,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		})
	}
	if o.model == nil {
		log.Warn().Msg("ANTHROPIC_API_KEY not set - turns disabled")
	}

	if o.seed == nil && cfg.SeedTranscript != "" {
		path := cfg.SeedTranscript
		transcripts := ingest.NewCache(ingest.DefaultCacheTTL, ingest.DefaultRules())
		o.seed = func() (*store.Context, error) {
			return transcripts.Seed(path)
		}
	}

	s := &Server{cfg: cfg}
	router, err := s.setupRoutes(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("setup routes: %w", err)
	}

	s.http = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.TurnTimeout() + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is done, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.http.Addr).Msg("listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("graceful shutdown initiated")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
