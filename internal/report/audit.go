// Package report composes verifier output, drift history, and
// learning feedback into one audit report.
//
// One generation builds exactly one in-memory AuditReport; the
// markdown and JSON renderings in render.go serialize that same
// object, so every number agrees across representations by
// construction. A section whose data source fails is marked
// unavailable and the rest of the report still generates — only a
// report with no renderable section at all is an error.
package report

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/backlog"
	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/drift"
	"github.com/nvelasco/driftwatch/internal/learning"
	"github.com/nvelasco/driftwatch/internal/scoring"
	"github.com/nvelasco/driftwatch/internal/verify"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// newID is a package-level variable for deterministic IDs in tests.
var newID = uuid.NewString

// ErrNoSections is the fatal audit error: not a single section could
// be generated.
var ErrNoSections = errors.New("audit failed: no section could be generated")

// Section names.
const (
	SectionBacklog         = "backlog"
	SectionSprint          = "sprint"
	SectionDocuments       = "documents"
	SectionDecisions       = "decisions"
	SectionDrift           = "drift"
	SectionLearnings       = "learnings"
	SectionRecommendations = "recommendations"
)

// Item categories the documents and decisions sections select on.
const (
	CategoryDocument = "document"
	CategoryDecision = "decision"
)

// healthUnknown is the health status of a report in which no
// available section carries a score.
const healthUnknown = "unknown"

// Options selects which sections to include. The zero value excludes
// everything; use DefaultOptions for the usual all-sections audit.
type Options struct {
	Backlog         bool `json:"backlog"`
	Sprint          bool `json:"sprint"`
	Documents       bool `json:"documents"`
	Decisions       bool `json:"decisions"`
	Drift           bool `json:"drift"`
	Learnings       bool `json:"learnings"`
	Recommendations bool `json:"recommendations"`
}

// DefaultOptions includes every section.
func DefaultOptions() Options {
	return Options{
		Backlog:         true,
		Sprint:          true,
		Documents:       true,
		Decisions:       true,
		Drift:           true,
		Learnings:       true,
		Recommendations: true,
	}
}

// DriftSection is the drift portion of an audit report.
type DriftSection struct {
	State   drift.State      `json:"state"`
	Latest  *drift.Snapshot  `json:"latest,omitempty"`
	Trend   drift.Trend      `json:"trend"`
	History []drift.Snapshot `json:"history,omitempty"`
}

// Section is one audit report section. Exactly one payload field is
// set for an available section, matching its name.
type Section struct {
	Name            string                `json:"name"`
	Available       bool                  `json:"available"`
	Error           string                `json:"error,omitempty"`
	Score           *int                  `json:"score,omitempty"`
	Backlog         *verify.BacklogReport `json:"backlog,omitempty"`
	Sprint          *verify.SprintReport  `json:"sprint,omitempty"`
	Documents       *verify.BacklogReport `json:"documents,omitempty"`
	Decisions       *verify.BacklogReport `json:"decisions,omitempty"`
	Drift           *DriftSection         `json:"drift,omitempty"`
	Learnings       *learning.Insights    `json:"learnings,omitempty"`
	Recommendations []string              `json:"recommendations,omitempty"`
}

// AuditReport is the immutable output of one generation.
type AuditReport struct {
	ID               string    `json:"id"`
	GeneratedAt      string    `json:"generated_at"`
	TruthVersion     int       `json:"truth_version,omitempty"`
	OverallScore     int       `json:"overall_score"`
	HealthStatus     string    `json:"health_status"`
	Sections         []Section `json:"sections"`
	CriticalFindings []string  `json:"critical_findings"`
}

// Generator builds audit reports from the engine's subsystems.
type Generator struct {
	verifier *verify.Verifier
	items    backlog.Store
	monitor  *drift.Monitor
	arc      *archive.Store // nullable
	cfg      config.Config
}

// NewGenerator creates a Generator. arc may be nil; the learnings
// section then reports unavailable.
func NewGenerator(v *verify.Verifier, items backlog.Store, monitor *drift.Monitor, arc *archive.Store, cfg config.Config) *Generator {
	return &Generator{verifier: v, items: items, monitor: monitor, arc: arc, cfg: cfg}
}

// FullAudit generates a report with the selected sections.
func (g *Generator) FullAudit(projectRoot string, opts Options) (*AuditReport, error) {
	report := &AuditReport{
		ID:               newID(),
		GeneratedAt:      timeNow().UTC().Format(time.RFC3339),
		CriticalFindings: []string{},
	}

	var backlogReport *verify.BacklogReport
	var insights *learning.Insights

	if opts.Backlog {
		section := g.backlogSection(projectRoot)
		if section.Available {
			backlogReport = section.Backlog
			report.TruthVersion = section.Backlog.TruthVersion
		}
		report.Sections = append(report.Sections, section)
	}
	if opts.Sprint {
		report.Sections = append(report.Sections, g.sprintSection(projectRoot))
	}
	if opts.Documents {
		report.Sections = append(report.Sections, g.categorySection(projectRoot, SectionDocuments, CategoryDocument))
	}
	if opts.Decisions {
		report.Sections = append(report.Sections, g.categorySection(projectRoot, SectionDecisions, CategoryDecision))
	}
	if opts.Drift {
		report.Sections = append(report.Sections, g.driftSection())
	}
	if opts.Learnings {
		section := g.learningsSection()
		if section.Available {
			insights = section.Learnings
		}
		report.Sections = append(report.Sections, section)
	}
	if opts.Recommendations {
		report.Sections = append(report.Sections, g.recommendationsSection(backlogReport, insights))
	}

	available := 0
	for _, s := range report.Sections {
		if s.Available {
			available++
		}
	}
	if available == 0 {
		if len(report.Sections) == 0 {
			return nil, fmt.Errorf("%w: no sections selected", ErrNoSections)
		}
		return nil, ErrNoSections
	}

	score, scored := g.overallScore(report.Sections)
	report.OverallScore = score
	report.HealthStatus = healthUnknown
	if scored {
		report.HealthStatus = healthStatus(score)
	}
	report.CriticalFindings = criticalFindings(report.Sections)
	return report, nil
}

func (g *Generator) backlogSection(projectRoot string) Section {
	section := Section{Name: SectionBacklog}

	items, err := g.items.List(projectRoot)
	if err == nil {
		var br *verify.BacklogReport
		br, err = g.verifier.VerifyBacklog(projectRoot, items)
		if err == nil {
			score := br.PurityScore
			section.Available = true
			section.Backlog = br
			section.Score = &score
			return section
		}
	}

	log.Printf("WARNING: audit backlog section unavailable: %v", err)
	section.Error = err.Error()
	return section
}

func (g *Generator) sprintSection(projectRoot string) Section {
	section := Section{Name: SectionSprint}

	items, err := g.items.List(projectRoot)
	if err == nil {
		var sr *verify.SprintReport
		sr, err = g.verifier.VerifySprintTasks(projectRoot, items)
		if err == nil {
			score := sprintScore(sr)
			section.Available = true
			section.Sprint = sr
			section.Score = &score
			return section
		}
	}

	log.Printf("WARNING: audit sprint section unavailable: %v", err)
	section.Error = err.Error()
	return section
}

// categorySection verifies the registered items of one category —
// generated documents and recorded decisions are scored against the
// truth the same way backlog items are. With nothing of that category
// registered the section is unavailable, never zero-scored.
func (g *Generator) categorySection(projectRoot, name, category string) Section {
	section := Section{Name: name}

	items, err := g.items.List(projectRoot)
	if err == nil {
		var subset []scoring.Item
		for _, it := range items {
			if strings.EqualFold(it.Category, category) {
				subset = append(subset, it)
			}
		}
		if len(subset) == 0 {
			section.Error = fmt.Sprintf("no items with category %q registered", category)
			return section
		}

		var br *verify.BacklogReport
		br, err = g.verifier.VerifyBacklog(projectRoot, subset)
		if err == nil {
			score := br.PurityScore
			section.Available = true
			section.Score = &score
			if name == SectionDocuments {
				section.Documents = br
			} else {
				section.Decisions = br
			}
			return section
		}
	}

	log.Printf("WARNING: audit %s section unavailable: %v", name, err)
	section.Error = err.Error()
	return section
}

func (g *Generator) driftSection() Section {
	section := Section{Name: SectionDrift}
	if g.monitor == nil {
		section.Error = "drift monitor not configured"
		return section
	}

	status := g.monitor.Status()
	ds := &DriftSection{
		State:   status.State,
		Latest:  status.Latest,
		Trend:   status.Trend,
		History: g.monitor.History(),
	}
	section.Available = true
	section.Drift = ds
	if status.Latest != nil {
		score := 100 - int(math.Round(status.Latest.DriftPercentage))
		section.Score = &score
	}
	return section
}

func (g *Generator) learningsSection() Section {
	section := Section{Name: SectionLearnings}
	if g.arc == nil {
		section.Error = "history archive unavailable"
		return section
	}

	flagged, err := g.arc.FlaggedResults(0)
	if err != nil {
		log.Printf("WARNING: audit learnings section unavailable: %v", err)
		section.Error = err.Error()
		return section
	}

	section.Available = true
	section.Learnings = learning.Build(flagged)
	return section
}

func (g *Generator) recommendationsSection(br *verify.BacklogReport, ins *learning.Insights) Section {
	section := Section{Name: SectionRecommendations, Available: true}

	var recs []string
	if br != nil {
		if br.Violations > 0 {
			recs = append(recs, fmt.Sprintf(
				"Resolve the %d blocked backlog item(s) before sprint planning — they cross explicit boundaries or show no alignment.",
				br.Violations))
		}
		if br.Reviews > 0 {
			recs = append(recs, fmt.Sprintf(
				"Schedule a truth-alignment review for the %d item(s) in review status.", br.Reviews))
		}
		if br.Total > 0 && br.PurityScore < g.cfg.Scoring.Thresholds.Warning {
			recs = append(recs, fmt.Sprintf(
				"Purity score is %d — consider a backlog grooming pass against the project truth.", br.PurityScore))
		}
	}
	if ins != nil {
		for _, s := range ins.PreventionStrategies {
			recs = append(recs, s.Action)
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "No corrective action needed — keep the project truth current as the product evolves.")
	}

	section.Recommendations = recs
	return section
}

// overallScore is the weighted combination of available scored
// sections, renormalized over the weights that actually apply. The
// second return is false when no weighted section carries a score —
// the report is then unscored, not scored zero.
func (g *Generator) overallScore(sections []Section) (int, bool) {
	weights := g.cfg.Report.SectionWeights
	sum, weightSum := 0, 0
	for _, s := range sections {
		if !s.Available || s.Score == nil {
			continue
		}
		w, ok := weights[s.Name]
		if !ok {
			continue
		}
		sum += *s.Score * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return int(math.Round(float64(sum) / float64(weightSum))), true
}

// sprintScore converts gating into a 0-100 section score: the share
// of unblocked tasks, floored to 0 whenever the gate is closed.
func sprintScore(sr *verify.SprintReport) int {
	if len(sr.Tasks) == 0 {
		return 100 // vacuously clear
	}
	if !sr.CanProceed {
		blocked := 0
		for _, t := range sr.Tasks {
			if t.Status == scoring.StatusBlocked {
				blocked++
			}
		}
		clean := len(sr.Tasks) - blocked
		return int(math.Round(100 * float64(clean) / float64(len(sr.Tasks)) / 2))
	}
	return 100
}

// healthStatus buckets the overall score into fixed bands.
func healthStatus(score int) string {
	switch {
	case score >= 85:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

// criticalFindings collects the hard problems across sections. An
// item blocked in both the backlog and a category section is reported
// once.
func criticalFindings(sections []Section) []string {
	findings := []string{}
	for _, s := range sections {
		switch {
		case s.Backlog != nil:
			findings = appendBlocked(findings, s.Backlog)
		case s.Documents != nil:
			findings = appendBlocked(findings, s.Documents)
		case s.Decisions != nil:
			findings = appendBlocked(findings, s.Decisions)
		case s.Sprint != nil && !s.Sprint.CanProceed:
			findings = append(findings, "Sprint gate is closed: at least one task is blocked.")
		case s.Drift != nil && s.Drift.Latest != nil:
			if sev := s.Drift.Latest.Severity; sev == "critical" || sev == "severe" {
				findings = append(findings, fmt.Sprintf(
					"Drift is %s (%.0f%%) — the backlog has pulled far from the project truth.",
					sev, s.Drift.Latest.DriftPercentage))
			}
		}
	}
	return findings
}

func appendBlocked(findings []string, br *verify.BacklogReport) []string {
	for _, r := range br.Items {
		if r.Status != scoring.StatusBlocked {
			continue
		}
		dup := false
		for _, f := range findings {
			if f == r.Message {
				dup = true
				break
			}
		}
		if !dup {
			findings = append(findings, r.Message)
		}
	}
	return findings
}
