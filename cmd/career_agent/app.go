package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/career-extractor/internal/config"
	"github.com/jonathan/career-extractor/internal/db"
	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/logger"
	"github.com/jonathan/career-extractor/internal/observability"
	"github.com/jonathan/career-extractor/internal/pipeline"
)

// app bundles what every command needs
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

// loadApp reads configuration and applies the persistent flags on top of it
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("debug") {
		cfg.Log.Debug = logDebug
	}
	if cmd.Flags().Changed("json") {
		cfg.Log.JSON = logJSON
	}
	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return &app{cfg: cfg, logger: log}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func (a *app) openStore(ctx context.Context) (observability.Store, func(), error) {
	store, closeStore, err := db.Open(ctx, a.cfg.StoreOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s store: %w", a.cfg.Store.Kind, err)
	}
	a.logger.Debug("store opened", zap.String("kind", a.cfg.Store.Kind))
	return store, closeStore, nil
}

// newClient builds the completion client with rate limiting and the optional
// Redis cache in front of it.
func (a *app) newClient(ctx context.Context) (llm.Client, error) {
	settings := a.cfg.LLMSettings()
	if a.cfg.LLM.APIKey == "" && settings.Provider != llm.ProviderVertex {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable or llm.api_key config is required")
	}
	client, err := llm.NewClient(ctx, settings, a.cfg.LLM.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	client = llm.NewRateLimitedClient(client, a.cfg.RateLimit.RequestsPerSecond, a.cfg.RateLimit.Burst)
	return llm.NewCachedClient(ctx, client, a.cfg.Cache.RedisURL, a.cfg.Cache.TTL, a.logger), nil
}

func (a *app) newOrchestrator(store observability.Store, registry llm.Registry, sinks ...observability.ProgressSink) *pipeline.Orchestrator {
	return pipeline.New(store, registry,
		pipeline.WithLogger(a.logger),
		pipeline.WithRetryConfig(a.cfg.RetrySettings()),
		pipeline.WithProgress(sinks...),
	)
}

// pipelineDefaults are the per-session settings taken from configuration
func (a *app) pipelineDefaults() pipeline.Config {
	return pipeline.Config{
		Version:             a.cfg.Pipeline.Version,
		MaxConcurrentPasses: a.cfg.Pipeline.MaxConcurrentPasses,
	}
}
