// Package config holds the engine configuration for driftwatch.
//
// The scoring weights, status thresholds, and severity bands are
// deliberately configuration rather than constants: teams tune them as
// they calibrate the scorer against their own backlog. Defaults apply
// when no driftwatch.yaml is present.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DriftDir is the per-project state directory.
	DriftDir = "driftwatch"
	// ConfigFile is the optional engine configuration file, looked up
	// in the project root.
	ConfigFile = "driftwatch.yaml"
)

// Weights controls the relative contribution of each alignment
// sub-score to the final confidence. Values must sum to 100.
type Weights struct {
	Domain     int `yaml:"domain"`
	User       int `yaml:"user"`
	Competitor int `yaml:"competitor"`
	Historical int `yaml:"historical"`
}

// Thresholds maps confidence to a status. Each field is the minimum
// confidence (inclusive) for that status; anything below Review is
// blocked.
type Thresholds struct {
	Allowed int `yaml:"allowed"`
	Warning int `yaml:"warning"`
	Review  int `yaml:"review"`
}

// SeverityBand maps a half-open drift range [Min, Max) to a label.
// The top band is closed at 100.
type SeverityBand struct {
	Label string  `yaml:"label"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Scoring groups the scorer's tunables.
type Scoring struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Monitor groups the drift monitor's tunables.
type Monitor struct {
	MinIntervalMinutes int `yaml:"min_interval_minutes"`
	HistoryCap         int `yaml:"history_cap"`
	TrendWindow        int `yaml:"trend_window"`
}

// Report groups the audit report's tunables. SectionWeights controls
// how much each scored section contributes to the overall score;
// weights are relative and renormalized over the sections that
// actually carry a score. A section with no weight entry is
// informational only.
type Report struct {
	SectionWeights map[string]int `yaml:"section_weights"`
}

// Config is the root engine configuration.
type Config struct {
	Scoring  Scoring        `yaml:"scoring"`
	Severity []SeverityBand `yaml:"severity"`
	Monitor  Monitor        `yaml:"monitor"`
	Report   Report         `yaml:"report"`
}

// Default returns the engine configuration used when no driftwatch.yaml
// exists. The weights and thresholds here are starting points, not
// contractual constants.
func Default() Config {
	return Config{
		Scoring: Scoring{
			Weights:    Weights{Domain: 25, User: 25, Competitor: 25, Historical: 25},
			Thresholds: Thresholds{Allowed: 85, Warning: 70, Review: 50},
		},
		Severity: []SeverityBand{
			{Label: "none", Min: 0, Max: 20},
			{Label: "moderate", Min: 20, Max: 40},
			{Label: "major", Min: 40, Max: 60},
			{Label: "critical", Min: 60, Max: 80},
			{Label: "severe", Min: 80, Max: 100},
		},
		Monitor: Monitor{
			MinIntervalMinutes: 5,
			HistoryCap:         288,
			TrendWindow:        5,
		},
		Report: Report{
			SectionWeights: map[string]int{
				"backlog":   50,
				"sprint":    30,
				"drift":     20,
				"documents": 10,
				"decisions": 10,
			},
		},
	}
}

// Load reads driftwatch.yaml from the project root, falling back to
// Default when the file does not exist. A present-but-invalid file is
// an error — a half-applied config is worse than none.
func Load(projectRoot string) (Config, error) {
	path := filepath.Join(projectRoot, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks structural invariants the engine relies on.
func (c Config) Validate() error {
	w := c.Scoring.Weights
	if sum := w.Domain + w.User + w.Competitor + w.Historical; sum != 100 {
		return fmt.Errorf("scoring weights must sum to 100, got %d", sum)
	}

	t := c.Scoring.Thresholds
	if !(t.Allowed > t.Warning && t.Warning > t.Review && t.Review > 0) {
		return fmt.Errorf("thresholds must be strictly descending and positive: allowed=%d warning=%d review=%d",
			t.Allowed, t.Warning, t.Review)
	}
	if t.Allowed > 100 {
		return fmt.Errorf("allowed threshold %d exceeds 100", t.Allowed)
	}

	if len(c.Severity) == 0 {
		return fmt.Errorf("at least one severity band is required")
	}
	prev := 0.0
	for i, b := range c.Severity {
		if b.Label == "" {
			return fmt.Errorf("severity band %d has no label", i)
		}
		if b.Min != prev {
			return fmt.Errorf("severity band %q starts at %.0f, want %.0f (bands must be contiguous from 0)", b.Label, b.Min, prev)
		}
		if b.Max <= b.Min {
			return fmt.Errorf("severity band %q has empty range [%.0f, %.0f)", b.Label, b.Min, b.Max)
		}
		prev = b.Max
	}
	if prev != 100 {
		return fmt.Errorf("severity bands must cover up to 100, last ends at %.0f", prev)
	}

	if c.Monitor.MinIntervalMinutes < 1 {
		return fmt.Errorf("monitor min_interval_minutes must be >= 1, got %d", c.Monitor.MinIntervalMinutes)
	}
	if c.Monitor.HistoryCap < 1 {
		return fmt.Errorf("monitor history_cap must be >= 1, got %d", c.Monitor.HistoryCap)
	}
	if c.Monitor.TrendWindow < 2 {
		return fmt.Errorf("monitor trend_window must be >= 2, got %d", c.Monitor.TrendWindow)
	}

	return nil
}

// SeverityFor returns the label of the band containing the given drift
// percentage. Drift is clamped to [0, 100]; a value of exactly 100
// lands in the last band.
func (c Config) SeverityFor(drift float64) string {
	if drift < 0 {
		drift = 0
	}
	if drift > 100 {
		drift = 100
	}
	for _, b := range c.Severity {
		if drift >= b.Min && drift < b.Max {
			return b.Label
		}
	}
	return c.Severity[len(c.Severity)-1].Label
}

// DriftPath returns the absolute path to the project's driftwatch/
// state directory.
func DriftPath(projectRoot string) string {
	return filepath.Join(projectRoot, DriftDir)
}
