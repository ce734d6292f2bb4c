// Package app wires configuration into the running components shared by
// the CLI and the daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vitalscope/vitalscope/internal/cache"
	"github.com/vitalscope/vitalscope/internal/kv"
	"github.com/vitalscope/vitalscope/internal/narrative"
	"github.com/vitalscope/vitalscope/internal/refresh"
	"github.com/vitalscope/vitalscope/internal/source"
	"github.com/vitalscope/vitalscope/pkg/config"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// App holds the wired components. Close releases them in reverse order.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Engine   *scoring.Engine
	Store    kv.Store
	Cache    *cache.Cache
	Source   source.Source
	Pipeline *refresh.Pipeline
}

// New builds an App from cfg. The source defaults to a FileSource over
// cfg.Source.Dir when src is nil.
func New(ctx context.Context, cfg *config.Config, src source.Source, log zerolog.Logger) (*App, error) {
	engine, err := scoring.NewEngine(cfg.EngineOptions())
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	store, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	c, err := cache.Open(ctx, store, log)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	narrator, err := NewNarrator(cfg.Narrative, log)
	if err != nil {
		_ = c.Close(ctx)
		store.Close()
		return nil, err
	}

	if src == nil {
		src = source.NewFileSource(cfg.Source.Dir)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Engine: engine,
		Store:  store,
		Cache:  c,
		Source: src,
	}
	a.Pipeline = refresh.New(refresh.Config{
		Engine:           engine,
		Source:           src,
		Cache:            c,
		Narrator:         narrator,
		NarrativeTimeout: time.Duration(cfg.Narrative.Timeout) * time.Second,
		Logger:           log,
	})
	return a, nil
}

// NewNarrator returns the configured narrator, or nil when narratives are
// disabled.
func NewNarrator(cfg config.NarrativeConfig, log zerolog.Logger) (narrative.Narrator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	n, err := narrative.NewOpenAI(narrative.OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("create narrator: %w", err)
	}
	return n, nil
}

// Close waits for background refresh work, flushes the cache and closes
// the store.
func (a *App) Close(ctx context.Context) error {
	a.Pipeline.Wait()
	a.Pipeline.Shutdown()
	return errors.Join(a.Cache.Close(ctx), a.Store.Close())
}
