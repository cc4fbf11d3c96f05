// mcpbusd runs the message bus daemon: a host with the memory and tool
// servers behind a single JSON-RPC endpoint.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"golang.org/x/sync/errgroup"

	"github.com/tunglt-picon/mcpbus/pkg/auth"
	"github.com/tunglt-picon/mcpbus/pkg/config"
	"github.com/tunglt-picon/mcpbus/pkg/host"
	"github.com/tunglt-picon/mcpbus/pkg/logging"
	"github.com/tunglt-picon/mcpbus/pkg/memory"
	"github.com/tunglt-picon/mcpbus/pkg/observability"
	"github.com/tunglt-picon/mcpbus/pkg/server"
	"github.com/tunglt-picon/mcpbus/pkg/summarize"
	"github.com/tunglt-picon/mcpbus/pkg/tools"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to TOML config file")
	stdio := flag.Bool("stdio", false, "serve JSON-RPC over stdin/stdout instead of HTTP")
	flag.Parse()

	if err := run(*configPath, *stdio); err != nil {
		fmt.Fprintf(os.Stderr, "mcpbusd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, stdio bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	logger := newLogger(cfg.Logging)
	logger.Info("starting mcpbusd", logging.String("version", version), logging.String("listen", cfg.Server.Listen))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics(observability.MetricsConfig{})
	}

	if cfg.Tracing.Enabled {
		tracing, err := observability.NewTracingProvider(observability.TracingConfig{
			ServiceName:    "mcpbusd",
			ServiceVersion: version,
			Environment:    cfg.Tracing.Environment,
			ExporterType:   observability.ExporterType(cfg.Tracing.Exporter),
			Endpoint:       cfg.Tracing.Endpoint,
			Headers:        cfg.Tracing.Headers,
			Insecure:       cfg.Tracing.Insecure,
			SampleRate:     cfg.Tracing.SampleRate,
		})
		if err != nil {
			return fmt.Errorf("initializing tracing: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				logger.Warn("tracing shutdown failed", logging.ErrorField(err))
			}
		}()
	}

	bus, err := buildBus(cfg, logger, metrics)
	if err != nil {
		return err
	}

	if stdio {
		return server.ServeStdio(ctx, bus, os.Stdin, os.Stdout, logger)
	}

	var verifier auth.TokenVerifier
	if cfg.Server.AuthToken != "" {
		verifier = auth.NewStaticTokenVerifier(cfg.Server.AuthToken)
	}

	mux := http.NewServeMux()
	mux.Handle("/jsonrpc", auth.Middleware(server.NewHTTPHandler(bus, logger), verifier, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"status":"ok","version":%q}`, version)
	})
	mux.HandleFunc("/capabilities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(bus.Capabilities()); err != nil {
			logger.Error("failed to write capabilities", logging.ErrorField(err))
		}
	})
	if metrics != nil {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", logging.String("addr", cfg.Server.Listen))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newLogger(cfg config.LoggingConfig) logging.Logger {
	var formatter logging.Formatter
	if cfg.Format == "json" {
		formatter = logging.NewJSONFormatter()
	} else {
		formatter = logging.NewTextFormatter()
	}
	logger := logging.New(os.Stderr, formatter)
	logger.SetLevel(logging.ParseLevel(cfg.Level))
	return logger
}

// buildBus assembles the host with the memory and tool servers. The tool
// server always carries the built-in summarize_conversation tool; it runs
// against a live backend only when a summarizer provider is configured.
func buildBus(cfg *config.Config, logger logging.Logger, metrics *observability.Metrics) (*host.Host, error) {
	bus := host.New(host.WithLogger(logger))

	serverOptions := []server.Option{server.WithLogger(logger)}
	var memoryOptions []server.MemoryOption
	var toolOptions []server.ToolOption
	if metrics != nil {
		serverOptions = append(serverOptions, server.WithMetrics(metrics))
		memoryOptions = append(memoryOptions, server.WithConversationCount(metrics.SetConversations))
		toolOptions = append(toolOptions, server.WithToolMetrics(metrics))
	}

	store := memory.NewStore(memory.WithRecentWindow(cfg.Memory.RecentWindow))
	memoryServer := server.NewMemoryServer(store, serverOptions, memoryOptions...)
	memoryClient, err := bus.RegisterServer(memoryServer.Server)
	if err != nil {
		return nil, fmt.Errorf("registering memory server: %w", err)
	}

	registry := tools.NewRegistry()
	if err := registerEchoTool(registry); err != nil {
		return nil, err
	}
	if summarizer := newSummarizer(cfg.Summarizer); summarizer != nil {
		compactor := summarize.NewCompactor(memoryClient, summarizer,
			summarize.WithLanguage(cfg.Summarizer.Language),
			summarize.WithLogger(logger),
		)
		if err := registerSummarizeTool(registry, compactor); err != nil {
			return nil, err
		}
	}

	toolServer := server.NewToolServer(registry, serverOptions, toolOptions...)
	if _, err := bus.RegisterServer(toolServer.Server); err != nil {
		return nil, fmt.Errorf("registering tool server: %w", err)
	}

	return bus, nil
}

func newSummarizer(cfg config.SummarizerConfig) summarize.Summarizer {
	switch cfg.Provider {
	case "openai":
		return summarize.NewOpenAISummarizer(func(o *summarize.OpenAIOptions) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
		})
	case "anthropic":
		return summarize.NewAnthropicSummarizer(func(o *summarize.AnthropicOptions) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
		})
	default:
		return nil
	}
}

type echoArgs struct {
	Text string `json:"text" jsonschema_description:"Text to echo back"`
}

func registerEchoTool(registry *tools.Registry) error {
	return registry.Register(tools.Definition{
		Name:        "echo",
		Description: "Echoes its input back, useful for bus connectivity checks",
		InputSchema: tools.GenerateSchema[echoArgs](),
		Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
			var args echoArgs
			if err := json.Unmarshal(arguments, &args); err != nil {
				return "", err
			}
			return args.Text, nil
		},
	})
}

type summarizeArgs struct {
	ConversationID string `json:"conversationId" jsonschema_description:"Conversation to compress"`
}

func registerSummarizeTool(registry *tools.Registry, compactor *summarize.Compactor) error {
	return registry.Register(tools.Definition{
		Name:        "summarize_conversation",
		Description: "Summarizes and discards messages that left the recent window",
		InputSchema: tools.GenerateSchema[summarizeArgs](),
		Handler: func(ctx context.Context, arguments json.RawMessage) (string, error) {
			var args summarizeArgs
			if err := json.Unmarshal(arguments, &args); err != nil {
				return "", err
			}
			if args.ConversationID == "" {
				return "", fmt.Errorf("conversationId is required")
			}
			ran, err := compactor.Compress(ctx, args.ConversationID)
			if err != nil {
				return "", err
			}
			if !ran {
				return "nothing to compress", nil
			}
			return "conversation compressed", nil
		},
	})
}
