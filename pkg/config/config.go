// Package config handles loading and managing Vitalscope configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vitalscope/vitalscope/internal/kv"
	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/logger"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

// Config is the top-level configuration for Vitalscope.
type Config struct {
	Scoring   ScoringConfig   `yaml:"scoring"`
	Goals     scoring.Goals   `yaml:"goals"`
	Storage   kv.Config       `yaml:"storage"`
	Source    SourceConfig    `yaml:"source"`
	Narrative NarrativeConfig `yaml:"narrative"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Server    ServerConfig    `yaml:"server"`
	Log       logger.Config   `yaml:"log"`
}

// ScoringConfig controls scoring behavior. Weights are main-score weights
// keyed by sub-score name and override the defaults one by one.
type ScoringConfig struct {
	Weights map[string]float64 `yaml:"weights"`
	Quorum  int                `yaml:"quorum"`
}

// SourceConfig points the file-backed raw sample adapter at its data.
type SourceConfig struct {
	Dir string `yaml:"dir"`
}

// NarrativeConfig controls the external narrative generator.
type NarrativeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"-"` // OPENAI_API_KEY only
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

// ScheduleConfig controls periodic refreshes in the daemon.
type ScheduleConfig struct {
	Refresh string   `yaml:"refresh"` // cron spec
	Periods []string `yaml:"periods"`
}

// ServerConfig controls the daemon's HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	APIKey         string   `yaml:"-"` // VITALSCOPE_API_KEY only
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	data := DataDir()
	return &Config{
		Scoring: ScoringConfig{
			Weights: map[string]float64{},
			Quorum:  2,
		},
		Goals: scoring.DefaultGoals(),
		Storage: kv.Config{
			Backend: kv.BackendSQLite,
			Path:    filepath.Join(data, "cache.db"),
		},
		Source: SourceConfig{
			Dir: filepath.Join(data, "samples"),
		},
		Narrative: NarrativeConfig{
			Model:   "gpt-4o-mini",
			Timeout: 60,
		},
		Schedule: ScheduleConfig{
			Refresh: "*/30 * * * *",
			Periods: []string{string(health.PeriodDay), string(health.PeriodWeek), string(health.PeriodMonth)},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: logger.Config{Level: "info"},
	}
}

// Load reads a config file from the given path.
// If the file does not exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are skipped; variables already set are kept.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays VITALSCOPE_* variables (and OPENAI_API_KEY) onto cfg.
func (c *Config) ApplyEnv() {
	setString(&c.Storage.Backend, "VITALSCOPE_STORAGE_BACKEND")
	setString(&c.Storage.Path, "VITALSCOPE_STORAGE_PATH")
	setString(&c.Storage.DSN, "VITALSCOPE_DATABASE_URL")
	setString(&c.Storage.S3.Bucket, "VITALSCOPE_S3_BUCKET")
	setString(&c.Storage.S3.Endpoint, "VITALSCOPE_S3_ENDPOINT")
	setString(&c.Storage.S3.Region, "VITALSCOPE_S3_REGION")
	setString(&c.Storage.GCS.Bucket, "VITALSCOPE_GCS_BUCKET")
	setString(&c.Source.Dir, "VITALSCOPE_SOURCE_DIR")
	setString(&c.Narrative.Model, "VITALSCOPE_NARRATIVE_MODEL")
	setString(&c.Narrative.APIKey, "OPENAI_API_KEY")
	setString(&c.Schedule.Refresh, "VITALSCOPE_REFRESH_SCHEDULE")
	setString(&c.Server.Addr, "VITALSCOPE_ADDR")
	setString(&c.Server.APIKey, "VITALSCOPE_API_KEY")
	setString(&c.Log.Level, "VITALSCOPE_LOG_LEVEL")

	if v := os.Getenv("VITALSCOPE_NARRATIVE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Narrative.Enabled = b
		}
	}
	if v := os.Getenv("VITALSCOPE_LOG_PRETTY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Pretty = b
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks the config for contract violations such as negative
// goals or unknown sub-score names.
func (c *Config) Validate() error {
	if err := c.Goals.Validate(); err != nil {
		return err
	}
	if c.Scoring.Quorum < 2 {
		return fmt.Errorf("scoring.quorum must be at least 2, got %d", c.Scoring.Quorum)
	}
	for name, w := range c.Scoring.Weights {
		if _, err := scoring.ParseKind(name); err != nil {
			return fmt.Errorf("scoring.weights: %w", err)
		}
		if w < 0 {
			return fmt.Errorf("scoring.weights.%s is negative", name)
		}
	}
	for _, p := range c.Schedule.Periods {
		if _, err := health.ParsePeriod(p); err != nil {
			return fmt.Errorf("schedule.periods: %w", err)
		}
	}
	if c.Narrative.Enabled && c.Narrative.APIKey == "" {
		return errors.New("narrative is enabled but OPENAI_API_KEY is not set")
	}
	return nil
}

// EngineOptions converts the scoring section into engine options.
func (c *Config) EngineOptions() scoring.Options {
	opts := scoring.DefaultOptions()
	opts.Goals = c.Goals
	opts.Weights.Quorum = c.Scoring.Quorum
	for name, w := range c.Scoring.Weights {
		opts.Weights.Main[scoring.Kind(name)] = w
	}
	return opts
}

// Periods returns the scheduled periods, parsed.
func (c *Config) Periods() []health.Period {
	var out []health.Period
	for _, p := range c.Schedule.Periods {
		if period, err := health.ParsePeriod(p); err == nil {
			out = append(out, period)
		}
	}
	return out
}

// FindConfigFile looks for .vitalscope/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".vitalscope", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// DataDir returns the per-user data directory, honoring XDG_DATA_HOME.
func DataDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdg != "" {
		return filepath.Join(xdg, "vitalscope")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to temp dir if HOME isn't available
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "share", "vitalscope")
}
