package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestScoreCmdFlags(t *testing.T) {
	cmd := newScoreCmd()
	f := cmd.Flags()

	outputFmt, _ := f.GetString("output")
	if outputFmt != "text" {
		t.Errorf("default output = %q, want text", outputFmt)
	}
	period, _ := f.GetString("period")
	if period != "day" {
		t.Errorf("default period = %q, want day", period)
	}

	for _, flag := range []string{"snapshot", "history", "source-dir", "period", "output"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestRefreshCmdFlags(t *testing.T) {
	f := newRefreshCmd().Flags()
	for _, flag := range []string{"period", "source-dir", "output"} {
		if f.Lookup(flag) == nil {
			t.Errorf("missing flag: %s", flag)
		}
	}
}

func TestTierCmdRequiresScore(t *testing.T) {
	cmd := newTierCmd()
	if err := cmd.Args(cmd, nil); err == nil {
		t.Error("expected error without a score argument")
	}
	if err := cmd.Args(cmd, []string{"50"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTierCmdOutput(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"tier", "93"})

	if err := root.Execute(); err != nil {
		t.Fatalf("tier: %v", err)
	}
	if got, want := out.String(), "peak (tier 4, Excellent, from 85)\n"; got != want {
		t.Errorf("tier output = %q, want %q", got, want)
	}
}

func TestCacheAndRevealSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{{"cache", "show"}, {"cache", "clear"}, {"reveal", "peek"}, {"reveal", "consume"}} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[1] {
			t.Errorf("missing command %v", path)
		}
	}
}

func TestCacheShowWithEmptyStore(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("VITALSCOPE_STORAGE_BACKEND", "sqlite")
	t.Setenv("VITALSCOPE_STORAGE_PATH", filepath.Join(dir, "cache.db"))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"cache", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("cache show: %v", err)
	}
	if !strings.Contains(out.String(), `"main_score": null`) {
		t.Errorf("expected null main score, got %s", out.String())
	}
}

func TestRefreshFromSourceDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("VITALSCOPE_STORAGE_BACKEND", "memory")

	snapshot := `{"resting_heart_rate": 55, "hrv_ms": 60, "sleep_hours": 7.5, "steps": 9000}`
	if err := os.WriteFile(filepath.Join(dir, "snapshot_day.json"), []byte(snapshot), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"refresh", "--period", "day", "--source-dir", dir, "--output", "json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if !strings.Contains(out.String(), `"period"`) {
		t.Errorf("expected a JSON report, got %s", out.String())
	}
}

func TestFirstNonEmpty(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"a", "b", "c"}, "a"},
		{[]string{"", "b", "c"}, "b"},
		{[]string{"", "", "c"}, "c"},
		{[]string{"", "", ""}, ""},
	}

	for _, tt := range tests {
		got := firstNonEmpty(tt.args...)
		if got != tt.want {
			t.Errorf("firstNonEmpty(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}
