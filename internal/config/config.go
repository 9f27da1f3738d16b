// Package config loads application configuration from an optional file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/jonathan/career-extractor/internal/db"
	"github.com/jonathan/career-extractor/internal/llm"
	"github.com/jonathan/career-extractor/internal/retry"
)

// EnvPrefix prefixes every environment override, e.g. CAREER_STORE_KIND
const EnvPrefix = "CAREER"

// DefaultConfigName is looked up in the working directory when no file is given
const DefaultConfigName = "career_agent"

// Config is the full application configuration
type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Store     StoreConfig     `mapstructure:"store"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	S3        S3Config        `mapstructure:"s3"`
	Log       LogConfig       `mapstructure:"log"`
}

// LLMConfig selects the completion provider and models
type LLMConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=gemini genai vertex"`
	APIKey   string `mapstructure:"api_key"`
	// Models overrides the model name per tier (lite, standard, advanced)
	Models      map[string]string `mapstructure:"models"`
	Temperature float32           `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Project     string            `mapstructure:"project" validate:"required_if=Provider vertex"`
	Location    string            `mapstructure:"location" validate:"required_if=Provider vertex"`
}

// StoreConfig selects where sessions are recorded
type StoreConfig struct {
	Kind        string `mapstructure:"kind" validate:"oneof=memory postgres sqlite"`
	DatabaseURL string `mapstructure:"database_url" validate:"required_if=Kind postgres"`
	SQLitePath  string `mapstructure:"sqlite_path" validate:"required_if=Kind sqlite"`
	// Migrate creates missing tables when the store is opened
	Migrate bool `mapstructure:"migrate"`
}

// CacheConfig enables the Redis completion cache when RedisURL is set
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// RateLimitConfig throttles completion calls; zero disables the limiter
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// RetryConfig bounds each extraction pass
type RetryConfig struct {
	MaxAttempts   int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	MinConfidence float64       `mapstructure:"min_confidence" validate:"gte=0,lte=100"`
	BackoffBase   time.Duration `mapstructure:"backoff_base" validate:"gte=0"`
	CallTimeout   time.Duration `mapstructure:"call_timeout" validate:"gte=0"`
}

// PipelineConfig holds orchestrator settings
type PipelineConfig struct {
	MaxConcurrentPasses int    `mapstructure:"max_concurrent_passes" validate:"gte=1,lte=4"`
	Version             string `mapstructure:"version"`
}

// WorkerConfig configures the queue consumer
type WorkerConfig struct {
	AMQPURL        string `mapstructure:"amqp_url"`
	JobQueue       string `mapstructure:"job_queue" validate:"required"`
	StatusExchange string `mapstructure:"status_exchange" validate:"required"`
	Consumers      int    `mapstructure:"consumers" validate:"gte=1,lte=64"`
	Prefetch       int    `mapstructure:"prefetch" validate:"gte=0"`
}

// S3Config locates résumé text objects for queued jobs
type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key" validate:"required_with=AccessKeyID"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
}

// LogConfig selects the log encoding and level
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// Default returns the configuration used when nothing overrides it
func Default() Config {
	rc := retry.DefaultConfig()
	return Config{
		LLM: LLMConfig{
			Provider:    string(llm.ProviderGemini),
			Temperature: llm.DefaultTemperature,
		},
		Store: StoreConfig{
			Kind:       db.StoreMemory,
			SQLitePath: "data/career.db",
		},
		Cache:     CacheConfig{TTL: 24 * time.Hour},
		RateLimit: RateLimitConfig{RequestsPerSecond: 2, Burst: 4},
		Retry: RetryConfig{
			MaxAttempts:   rc.MaxAttempts,
			MinConfidence: rc.MinConfidence,
			BackoffBase:   rc.BackoffBase,
			CallTimeout:   rc.CallTimeout,
		},
		Pipeline: PipelineConfig{MaxConcurrentPasses: 1},
		Worker: WorkerConfig{
			JobQueue:       "extraction_jobs",
			StatusExchange: "extraction_updates",
			Consumers:      3,
			Prefetch:       1,
		},
		S3: S3Config{Region: "auto"},
	}
}

// Load reads configuration. path may be empty, in which case
// career_agent.{yaml,json} in the working directory is used if present.
// Environment variables override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envAliases {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultConfigName)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envAliases are unprefixed variables accepted alongside CAREER_*
var envAliases = map[string][]string{
	"llm.api_key":        {"CAREER_LLM_API_KEY", "GEMINI_API_KEY"},
	"store.database_url": {"CAREER_STORE_DATABASE_URL", "DATABASE_URL"},
	"cache.redis_url":    {"CAREER_CACHE_REDIS_URL", "REDIS_URL"},
	"worker.amqp_url":    {"CAREER_WORKER_AMQP_URL", "RABBITMQ_URL"},
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.models", map[string]string{})
	v.SetDefault("llm.temperature", d.LLM.Temperature)
	v.SetDefault("llm.project", d.LLM.Project)
	v.SetDefault("llm.location", d.LLM.Location)

	v.SetDefault("store.kind", d.Store.Kind)
	v.SetDefault("store.database_url", d.Store.DatabaseURL)
	v.SetDefault("store.sqlite_path", d.Store.SQLitePath)
	v.SetDefault("store.migrate", d.Store.Migrate)

	v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	v.SetDefault("cache.ttl", d.Cache.TTL)

	v.SetDefault("rate_limit.requests_per_second", d.RateLimit.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", d.RateLimit.Burst)

	v.SetDefault("retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.min_confidence", d.Retry.MinConfidence)
	v.SetDefault("retry.backoff_base", d.Retry.BackoffBase)
	v.SetDefault("retry.call_timeout", d.Retry.CallTimeout)

	v.SetDefault("pipeline.max_concurrent_passes", d.Pipeline.MaxConcurrentPasses)
	v.SetDefault("pipeline.version", d.Pipeline.Version)

	v.SetDefault("worker.amqp_url", d.Worker.AMQPURL)
	v.SetDefault("worker.job_queue", d.Worker.JobQueue)
	v.SetDefault("worker.status_exchange", d.Worker.StatusExchange)
	v.SetDefault("worker.consumers", d.Worker.Consumers)
	v.SetDefault("worker.prefetch", d.Worker.Prefetch)

	v.SetDefault("s3.bucket", d.S3.Bucket)
	v.SetDefault("s3.region", d.S3.Region)
	v.SetDefault("s3.endpoint", d.S3.Endpoint)
	v.SetDefault("s3.access_key_id", d.S3.AccessKeyID)
	v.SetDefault("s3.secret_access_key", d.S3.SecretAccessKey)
	v.SetDefault("s3.use_path_style", d.S3.UsePathStyle)

	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
}

// Validate checks enumerations, ranges and required combinations
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for tier := range c.LLM.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}
	return nil
}

// LLMSettings converts the provider section into an llm.Config
func (c *Config) LLMSettings() *llm.Config {
	out := llm.DefaultConfig().WithProvider(llm.Provider(c.LLM.Provider))
	for tier, model := range c.LLM.Models {
		if model = strings.TrimSpace(model); model != "" {
			out = out.WithModel(llm.ModelTier(tier), model)
		}
	}
	out.Temperature = c.LLM.Temperature
	out.Project = c.LLM.Project
	out.Location = c.LLM.Location
	return out
}

// RetrySettings converts the retry section into executor bounds
func (c *Config) RetrySettings() retry.Config {
	return retry.Config{
		MaxAttempts:   c.Retry.MaxAttempts,
		MinConfidence: c.Retry.MinConfidence,
		BackoffBase:   c.Retry.BackoffBase,
		CallTimeout:   c.Retry.CallTimeout,
	}
}

// StoreOptions converts the store section for db.Open
func (c *Config) StoreOptions() db.Options {
	return db.Options{
		Kind:        c.Store.Kind,
		DatabaseURL: c.Store.DatabaseURL,
		SQLitePath:  c.Store.SQLitePath,
		Migrate:     c.Store.Migrate,
	}
}
