package config

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Default ---

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDefault_Thresholds(t *testing.T) {
	th := Default().Scoring.Thresholds
	if th.Allowed != 85 {
		t.Errorf("Allowed = %d, want 85", th.Allowed)
	}
	if th.Warning != 70 {
		t.Errorf("Warning = %d, want 70", th.Warning)
	}
	if th.Review != 50 {
		t.Errorf("Review = %d, want 50", th.Review)
	}
}

func TestDefault_MonitorMinimum(t *testing.T) {
	if min := Default().Monitor.MinIntervalMinutes; min != 5 {
		t.Errorf("MinIntervalMinutes = %d, want 5", min)
	}
}

// --- Validate ---

func TestValidate_WeightsMustSum100(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Weights.Domain = 30
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for weights summing to 105")
	}
}

func TestValidate_ThresholdsMustDescend(t *testing.T) {
	cfg := Default()
	cfg.Scoring.Thresholds.Warning = 90
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for warning > allowed")
	}
}

func TestValidate_SeverityBandsMustBeContiguous(t *testing.T) {
	cfg := Default()
	cfg.Severity[2].Min = 45
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for a gap between bands")
	}
}

func TestValidate_SeverityBandsMustReach100(t *testing.T) {
	cfg := Default()
	cfg.Severity = cfg.Severity[:4]
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for bands ending at 80")
	}
}

// --- SeverityFor ---

func TestSeverityFor_Bands(t *testing.T) {
	cfg := Default()
	cases := []struct {
		drift float64
		want  string
	}{
		{0, "none"},
		{19.9, "none"},
		{20, "moderate"},
		{39.9, "moderate"},
		{40, "major"},
		{60, "critical"},
		{79.9, "critical"},
		{80, "severe"},
		{100, "severe"},
	}
	for _, c := range cases {
		if got := cfg.SeverityFor(c.drift); got != c.want {
			t.Errorf("SeverityFor(%.1f) = %s, want %s", c.drift, got, c.want)
		}
	}
}

func TestSeverityFor_ClampsOutOfRange(t *testing.T) {
	cfg := Default()
	if got := cfg.SeverityFor(-5); got != "none" {
		t.Errorf("SeverityFor(-5) = %s, want none", got)
	}
	if got := cfg.SeverityFor(140); got != "severe" {
		t.Errorf("SeverityFor(140) = %s, want severe", got)
	}
}

// --- Load ---

func TestLoad_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Scoring.Thresholds.Allowed != 85 {
		t.Errorf("Allowed = %d, want default 85", cfg.Scoring.Thresholds.Allowed)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	yaml := "monitor:\n  min_interval_minutes: 10\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Monitor.MinIntervalMinutes != 10 {
		t.Errorf("MinIntervalMinutes = %d, want 10", cfg.Monitor.MinIntervalMinutes)
	}
	// Untouched sections keep defaults.
	if cfg.Scoring.Weights.Domain != 25 {
		t.Errorf("Domain weight = %d, want default 25", cfg.Scoring.Weights.Domain)
	}
}

func TestLoad_InvalidYAMLIsAnError(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte("scoring: ["), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoad_InvalidConfigIsAnError(t *testing.T) {
	tmpDir := t.TempDir()
	yaml := "scoring:\n  weights:\n    domain: 90\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFile), []byte(yaml), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(tmpDir); err == nil {
		t.Error("expected error for weights not summing to 100")
	}
}

// --- DriftPath ---

func TestDriftPath(t *testing.T) {
	got := DriftPath("/home/user/project")
	want := filepath.Join("/home/user/project", DriftDir)
	if got != want {
		t.Errorf("DriftPath = %s, want %s", got, want)
	}
}
