package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vitalscope/vitalscope/pkg/health"
	"github.com/vitalscope/vitalscope/pkg/scoring"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scoring.Quorum != 2 {
		t.Errorf("expected default quorum 2, got %d", cfg.Scoring.Quorum)
	}
	if cfg.Goals.Steps != 10000 {
		t.Errorf("expected default steps goal 10000, got %v", cfg.Goals.Steps)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected default backend sqlite, got %q", cfg.Storage.Backend)
	}
	if cfg.Scoring.Weights == nil {
		t.Error("expected Weights map to be initialized, got nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid YAML overrides defaults",
			yaml: `
goals:
  steps: 8000
  sleep_hours: 7.5
scoring:
  quorum: 3
  weights:
    recovery_readiness: 0.4
storage:
  backend: postgres
  dsn: postgres://localhost/vitalscope
schedule:
  refresh: "0 * * * *"
  periods: [day]
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Goals.Steps != 8000 {
					t.Errorf("expected steps goal 8000, got %v", cfg.Goals.Steps)
				}
				if cfg.Goals.ActiveEnergy != 500 {
					t.Errorf("unset goals should keep defaults, got %v", cfg.Goals.ActiveEnergy)
				}
				if cfg.Scoring.Quorum != 3 {
					t.Errorf("expected quorum 3, got %d", cfg.Scoring.Quorum)
				}
				if cfg.Storage.Backend != "postgres" || cfg.Storage.DSN == "" {
					t.Errorf("unexpected storage config %+v", cfg.Storage)
				}
				if len(cfg.Periods()) != 1 || cfg.Periods()[0] != health.PeriodDay {
					t.Errorf("expected [day], got %v", cfg.Periods())
				}
			},
		},
		{
			name:    "invalid YAML returns error",
			yaml:    "{{invalid yaml",
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0o644); err != nil {
				t.Fatalf("write test config: %v", err)
			}

			cfg, err := Load(path)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.check != nil {
				tc.check(t, cfg)
			}
		})
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative goal", func(c *Config) { c.Goals.SleepHours = -1 }, "invalid goal"},
		{"low quorum", func(c *Config) { c.Scoring.Quorum = 1 }, "quorum"},
		{"unknown weight", func(c *Config) { c.Scoring.Weights["vibes"] = 1 }, "unknown sub-score"},
		{"negative weight", func(c *Config) { c.Scoring.Weights["sleep_quality"] = -0.1 }, "negative"},
		{"bad period", func(c *Config) { c.Schedule.Periods = []string{"fortnight"} }, "unknown period"},
		{"narrative without key", func(c *Config) { c.Narrative.Enabled = true }, "OPENAI_API_KEY"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q should mention %q", err, tc.want)
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Goals.Steps = -5
	if err := cfg.Validate(); !errors.Is(err, scoring.ErrInvalidGoal) {
		t.Errorf("negative goal should wrap ErrInvalidGoal, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("VITALSCOPE_STORAGE_BACKEND", "memory")
	t.Setenv("VITALSCOPE_API_KEY", "secret")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("VITALSCOPE_NARRATIVE_ENABLED", "true")
	t.Setenv("VITALSCOPE_LOG_PRETTY", "not-a-bool")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected backend memory, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.APIKey != "secret" || cfg.Narrative.APIKey != "sk-test" {
		t.Error("expected API keys from environment")
	}
	if !cfg.Narrative.Enabled {
		t.Error("expected narrative enabled")
	}
	if cfg.Log.Pretty {
		t.Error("unparseable bool should be ignored")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("VITALSCOPE_TEST_ONLY=from-file\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("VITALSCOPE_TEST_ONLY") })

	if err := LoadEnvFiles(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadEnvFiles: %v", err)
	}
	if got := os.Getenv("VITALSCOPE_TEST_ONLY"); got != "from-file" {
		t.Errorf("VITALSCOPE_TEST_ONLY = %q", got)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scoring.Weights["recovery_readiness"] = 0.5
	cfg.Scoring.Quorum = 3

	opts := cfg.EngineOptions()
	if opts.Weights.Main[scoring.KindRecoveryReadiness] != 0.5 {
		t.Errorf("override not applied: %v", opts.Weights.Main)
	}
	if opts.Weights.Main[scoring.KindSleepQuality] != 0.20 {
		t.Errorf("untouched weights should keep defaults: %v", opts.Weights.Main)
	}
	if _, err := scoring.NewEngine(opts); err != nil {
		t.Errorf("NewEngine: %v", err)
	}
}

func TestFindConfigFile(t *testing.T) {
	t.Run("found in parent directory", func(t *testing.T) {
		root := t.TempDir()
		configDir := filepath.Join(root, ".vitalscope")
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			t.Fatalf("create config dir: %v", err)
		}
		configPath := filepath.Join(configDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("{}"), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		sub := filepath.Join(root, "a", "b", "c")
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatalf("create sub: %v", err)
		}

		if got := FindConfigFile(sub); got != configPath {
			t.Errorf("FindConfigFile = %q, want %q", got, configPath)
		}
	})

	t.Run("not found", func(t *testing.T) {
		if got := FindConfigFile(t.TempDir()); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}

func TestDataDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	if got := DataDir(); got != filepath.Join("/tmp/xdg", "vitalscope") {
		t.Errorf("DataDir = %q", got)
	}
}
