// Package app wires configuration into adapters and services. It is shared
// by the API server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/adapters/ollama"
	"github.com/ewilliams-labs/moodqueue/internal/adapters/openai"
	"github.com/ewilliams-labs/moodqueue/internal/adapters/rediscache"
	"github.com/ewilliams-labs/moodqueue/internal/adapters/sqlite"
	"github.com/ewilliams-labs/moodqueue/internal/adapters/youtube"
	"github.com/ewilliams-labs/moodqueue/internal/config"
	"github.com/ewilliams-labs/moodqueue/internal/core/fallback"
	"github.com/ewilliams-labs/moodqueue/internal/core/ports"
	"github.com/ewilliams-labs/moodqueue/internal/core/services"
	"github.com/ewilliams-labs/moodqueue/internal/core/suggest"
	"github.com/ewilliams-labs/moodqueue/internal/player"
)

// App holds the wired object graph.
type App struct {
	Config       *config.Config
	Orchestrator *services.Orchestrator
	Repository   ports.QueueRepository

	log     *zap.Logger
	closers []func() error
}

// New builds every dependency described by cfg. Close releases them.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a := &App{Config: cfg, log: log}

	yt := youtube.NewClient(youtube.Options{
		BaseURL:     cfg.YouTube.BaseURL,
		APIKey:      cfg.YouTube.APIKey,
		Timeout:     cfg.YouTube.Timeout,
		RPS:         cfg.YouTube.RPS,
		Burst:       cfg.YouTube.Burst,
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     cfg.Retry.Backoff,
	}, log)

	resolver, err := a.resolver(ctx, yt)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	repo, err := a.repository()
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Repository = repo

	gen, err := NewTextGenerator(cfg, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	strategy, err := NewStrategy(cfg.Builder, gen, yt, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	builder := services.NewQueueBuilder(strategy, resolver, fallback.Default(), services.BuilderConfig{
		ResolveTimeout: cfg.Builder.ResolveTimeout,
		Concurrency:    cfg.Builder.Concurrency,
		LowConfidence:  cfg.Builder.LowConfidence,
	}, log)
	a.Orchestrator = services.NewOrchestrator(builder, repo, yt, log)

	log.Info("app wired",
		zap.String("llm", cfg.LLM.Provider),
		zap.String("strategy", cfg.Builder.Strategy),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("cache", cfg.Cache.RedisAddr != ""),
	)
	return a, nil
}

// NewTextGenerator returns the configured language model client.
func NewTextGenerator(cfg *config.Config, log *zap.Logger) (ports.TextGenerator, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Options{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff:     cfg.Retry.Backoff,
		}, log), nil
	case config.ProviderOllama:
		return ollama.NewClient(ollama.Options{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, log), nil
	}
	return nil, fmt.Errorf("app: unknown llm provider %q", cfg.LLM.Provider)
}

// NewStrategy returns the suggestion strategy named by cfg.Strategy.
func NewStrategy(cfg config.BuilderConfig, gen ports.TextGenerator, searcher ports.CollectionSearcher, log *zap.Logger) (ports.SuggestionGenerator, error) {
	switch cfg.Strategy {
	case config.StrategySongs:
		return suggest.NewSongListStrategy(gen, cfg.SongCount, log), nil
	case config.StrategyPlaylist:
		return suggest.NewPlaylistSearchStrategy(gen, searcher, cfg.CollectionSize, log), nil
	}
	return nil, fmt.Errorf("app: unknown strategy %q", cfg.Strategy)
}

func (a *App) resolver(ctx context.Context, yt *youtube.Client) (ports.MediaResolver, error) {
	c := a.Config.Cache
	if c.RedisAddr == "" {
		return yt, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.Password,
		DB:       c.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("app: connect redis %s: %w", c.RedisAddr, err)
	}
	a.closers = append(a.closers, client.Close)

	return rediscache.NewResolver(yt, client, rediscache.Options{
		TTL:           c.TTL,
		Prefix:        c.Prefix,
		LookupTimeout: a.Config.Builder.ResolveTimeout,
	}, a.log), nil
}

// repository returns nil when persistence is disabled.
func (a *App) repository() (ports.QueueRepository, error) {
	s := a.Config.Storage
	switch s.Driver {
	case config.StorageNone:
		return nil, nil
	case config.StorageSQLite:
		db, err := sqlite.NewAdapter(s.Path)
		if err != nil {
			return nil, fmt.Errorf("app: open storage: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		return db, nil
	}
	return nil, fmt.Errorf("app: unknown storage driver %q", s.Driver)
}

// PlayerConfig maps the player section onto adapter settings.
func (a *App) PlayerConfig() player.Config {
	return player.Config{
		EndedDelay:   a.Config.Player.EndedDelay,
		ErrorDelay:   a.Config.Player.ErrorDelay,
		StrictErrors: a.Config.Player.StrictErrors,
	}
}

// Close releases storage and cache connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
