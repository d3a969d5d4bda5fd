// Command roster runs the person-record assistant as an HTTP server, an
// interactive chat, or a one-shot transcript seeder.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/cortexai/roster/internal/agent"
	"github.com/cortexai/roster/internal/config"
	"github.com/cortexai/roster/internal/dispatch"
	"github.com/cortexai/roster/internal/handler"
	"github.com/cortexai/roster/internal/ingest"
	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/prompts"
	"github.com/cortexai/roster/internal/security"
	"github.com/cortexai/roster/internal/server"
	"github.com/cortexai/roster/internal/store"
	"github.com/cortexai/roster/internal/tools"
	"github.com/cortexai/roster/internal/toolserver"
)

const usage = `roster - person records managed through a language model

Commands:
  serve    Start the HTTP API
  chat     Talk to the assistant on stdin
  mcp      Serve the person tools over MCP on stdin/stdout
  seed     Print the people extracted from a transcript

Flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("roster failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	flags := flag.NewFlagSet("roster", flag.ContinueOnError)
	configPath := flags.String("config", os.Getenv("ROSTER_CONFIG"), "path to a JSON config file")
	envFile := flags.String("env-file", ".env", "dotenv file loaded before the config, if present")
	transcript := flags.String("transcript", "", "transcript to seed the store from (overrides config)")
	flags.Usage = func() {
		fmt.Fprint(flags.Output(), usage)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		return err
	}

	// Variables already set in the environment win over the file.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", *envFile, err)
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		return err
	}
	if *transcript != "" {
		cfg.SeedTranscript = *transcript
	}
	setupLogging(cfg)

	shutdownTracing, err := initTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown")
		}
	}()

	switch cmd := flags.Arg(0); cmd {
	case "serve":
		return runServe(ctx, cfg)
	case "chat":
		model, err := newModel(cfg)
		if err != nil {
			return err
		}
		return runChat(ctx, cfg, model, stdin, stdout)
	case "mcp":
		return runMCP(ctx, cfg)
	case "seed":
		return runSeed(cfg, stdout)
	case "":
		flags.Usage()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	} else {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

func newModel(cfg *config.Config) (llm.Model, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is not set")
	}
	return llm.NewAnthropicModel(llm.AnthropicConfig{
		APIKey:    cfg.AnthropicAPIKey,
		BaseURL:   cfg.AnthropicBaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	}), nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	g, gctx := errgroup.WithContext(ctx)

	srv, err := server.New(gctx, cfg)
	if err != nil {
		return err
	}
	g.Go(func() error {
		return srv.Run(gctx)
	})
	return g.Wait()
}

// runMCP serves the tool catalog on stdio. Logs go to stderr so they never
// interleave with protocol frames.
func runMCP(ctx context.Context, cfg *config.Config) error {
	transcripts := ingest.NewCache(ingest.DefaultCacheTTL, ingest.DefaultRules())
	sessions, err := handler.NewSessionManager("", func() (*store.Context, error) {
		if cfg.SeedTranscript == "" {
			return store.New(nil), nil
		}
		return transcripts.Seed(cfg.SeedTranscript)
	})
	if err != nil {
		return err
	}
	dispatcher := dispatch.New(tools.DefaultCatalog(),
		dispatch.WithAudit(security.NewAuditLogger(cfg.EnableAuditLogging)))
	return toolserver.New(dispatcher, sessions).Run(ctx, &mcp.StdioTransport{})
}

// seedStore builds the initial store from the configured transcript, or an
// empty one.
func seedStore(cfg *config.Config) (*store.Context, error) {
	if cfg.SeedTranscript == "" {
		return store.New(nil), nil
	}
	return ingest.Seed(cfg.SeedTranscript, ingest.DefaultRules())
}

func runSeed(cfg *config.Config, stdout io.Writer) error {
	if cfg.SeedTranscript == "" {
		return errors.New("seed needs -transcript or ROSTER_SEED_TRANSCRIPT")
	}
	st, err := seedStore(cfg)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(st.People().Views())
}

// runChat threads one session through every line read from stdin.
func runChat(ctx context.Context, cfg *config.Config, model llm.Model, stdin io.Reader, stdout io.Writer) error {
	st, err := seedStore(cfg)
	if err != nil {
		return err
	}

	auditLogger := security.NewAuditLogger(cfg.EnableAuditLogging)
	dispatcher := dispatch.New(tools.DefaultCatalog(), dispatch.WithAudit(auditLogger))
	a := agent.New(model, dispatcher, agent.WithExecuteAllToolCalls(cfg.ExecuteAllToolCalls))
	session := agent.NewSession(prompts.Get(prompts.Name(cfg.Prompt)), st)
	validator := security.NewPromptValidator()
	var piiDetector *security.PIIDetector
	if cfg.EnablePIIDetection {
		piiDetector = security.NewPIIDetector(cfg.PIIKeywords)
	}

	// The reader is not joined: a blocked read must not hold up shutdown.
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(stdin)
		defer func() {
			readErr <- scanner.Err()
			close(lines)
		}()
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(stdout, "Session %s with %d people (Ctrl-C to quit)\n", session.ID, st.People().Len())
	for {
		fmt.Fprint(stdout, "you> ")
		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(stdout)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(stdout)
				return <-readErr
			}
			line = strings.TrimSpace(l)
		}
		if line == "" {
			continue
		}
		if found, kw := piiDetector.Detect(line); found {
			auditLogger.LogTurn(session.ID, line, nil, true, true, 0, "pii detected: "+kw)
			fmt.Fprintf(stdout, "rejected: message contains sensitive data (%s)\n", kw)
			continue
		}
		if vr := validator.Validate(line); !vr.Valid {
			auditLogger.LogTurn(session.ID, line, nil, false, false, 0, vr.Message)
			fmt.Fprintf(stdout, "rejected: %s\n", vr.Message)
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, cfg.TurnTimeout())
		start := time.Now()
		res, err := a.Turn(turnCtx, session, line)
		execMs := time.Since(start).Milliseconds()
		cancel()
		if err != nil {
			auditLogger.LogTurn(session.ID, line, nil, true, false, execMs, err.Error())
			var aerr *agent.Error
			if errors.As(err, &aerr) && aerr.Kind == agent.PreconditionErrorKind {
				return err
			}
			fmt.Fprintf(stdout, "error: %v\n", err)
			continue
		}
		auditLogger.LogTurn(session.ID, line, res.ToolsUsed, true, false, execMs, "")
		if len(res.ToolsUsed) > 0 {
			fmt.Fprintf(stdout, "[%s]\n", strings.Join(res.ToolsUsed, ", "))
		}
		fmt.Fprintf(stdout, "assistant> %s\n", res.Answer)
	}
}
