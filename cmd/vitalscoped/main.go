// Command vitalscoped is the Vitalscope service.
// It refreshes scores on a schedule and serves the cached results over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vitalscope/vitalscope/internal/api"
	"github.com/vitalscope/vitalscope/internal/app"
	"github.com/vitalscope/vitalscope/internal/scheduler"
	"github.com/vitalscope/vitalscope/pkg/config"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}
	if path == "" {
		path = os.Getenv("VITALSCOPE_CONFIG")
	}
	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log)
	logger.SetGlobalLogger(log)

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil, log)
	if err != nil {
		return err
	}

	sched := scheduler.New(func(ctx context.Context, p health.Period) error {
		_, err := a.Pipeline.Refresh(ctx, p)
		return err
	}, cfg.Periods(), log)
	if err := sched.Schedule(cfg.Schedule.Refresh); err != nil {
		return err
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.NewHandler(api.Config{
			Cache:          a.Cache,
			Refresher:      a.Pipeline,
			APIKey:         cfg.Server.APIKey,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			Logger:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}
	if cfg.Server.APIKey == "" {
		log.Warn().Msg("VITALSCOPE_API_KEY is not set; write endpoints are unauthenticated")
	}

	// Prime the cache before the first tick.
	if err := sched.RunNow(ctx); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting vitalscoped")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return sched.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("close failed")
		if runErr == nil {
			runErr = err
		}
	}
	return runErr
}
