// Package verify batch-applies the alignment scorer to item sets and
// aggregates the results: purity score for backlogs, fail-closed
// gating for sprints.
package verify

import (
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/learning"
	"github.com/nvelasco/driftwatch/internal/scoring"
	"github.com/nvelasco/driftwatch/internal/truth"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// BacklogReport is the aggregate result of verifying a backlog.
// TruthVersion records exactly which truth the items were scored
// against — a truth update racing this verification never produces a
// mixed read.
type BacklogReport struct {
	Total        int              `json:"total"`
	Aligned      int              `json:"aligned"`
	Warnings     int              `json:"warnings"`
	Reviews      int              `json:"reviews"`
	Violations   int              `json:"violations"`
	PurityScore  int              `json:"purity_score"`
	TruthVersion int              `json:"truth_version"`
	GeneratedAt  string           `json:"generated_at"`
	Items        []scoring.Result `json:"items"`
}

// SprintReport is the result of verifying sprint tasks. CanProceed is
// fail-closed: one blocked task blocks the whole sprint.
type SprintReport struct {
	Tasks        []scoring.Result `json:"tasks"`
	CanProceed   bool             `json:"can_proceed"`
	TruthVersion int              `json:"truth_version"`
}

// Verifier drives the scorer over item sets. The archive is optional;
// when present, flagged results are recorded for the learning loop.
type Verifier struct {
	truthStore truth.Store
	cfg        config.Config
	arc        *archive.Store // nullable
}

// New creates a Verifier. arc may be nil — flagged results are then
// simply not archived.
func New(ts truth.Store, cfg config.Config, arc *archive.Store) *Verifier {
	return &Verifier{truthStore: ts, cfg: cfg, arc: arc}
}

// VerifyBacklog scores every item against an immutable snapshot of
// the current truth and aggregates counts and the purity score.
// An empty item set reports purity 0 by convention.
func (v *Verifier) VerifyBacklog(projectRoot string, items []scoring.Item) (*BacklogReport, error) {
	results, version, err := v.scoreAll(projectRoot, items)
	if err != nil {
		return nil, err
	}

	report := &BacklogReport{
		Total:        len(results),
		TruthVersion: version,
		GeneratedAt:  timeNow().UTC().Format(time.RFC3339),
		Items:        results,
	}
	for _, r := range results {
		switch r.Status {
		case scoring.StatusAllowed:
			report.Aligned++
		case scoring.StatusWarning:
			report.Warnings++
		case scoring.StatusReview:
			report.Reviews++
		case scoring.StatusBlocked:
			report.Violations++
		}
	}
	if report.Total > 0 {
		report.PurityScore = int(math.Round(100 * float64(report.Aligned) / float64(report.Total)))
	}

	v.archiveFlagged(results, version)
	return report, nil
}

// VerifySprintTasks scores sprint tasks and applies the gating
// invariant: CanProceed is false iff any task is blocked. An empty
// task list is vacuously clear to proceed.
func (v *Verifier) VerifySprintTasks(projectRoot string, tasks []scoring.Item) (*SprintReport, error) {
	results, version, err := v.scoreAll(projectRoot, tasks)
	if err != nil {
		return nil, err
	}

	report := &SprintReport{Tasks: results, CanProceed: true, TruthVersion: version}
	for _, r := range results {
		if r.Status == scoring.StatusBlocked {
			report.CanProceed = false
			break
		}
	}

	v.archiveFlagged(results, version)
	return report, nil
}

// scoreAll loads the truth once, builds the scorer, and scores items
// in parallel. Aggregation happens only after every item resolves.
func (v *Verifier) scoreAll(projectRoot string, items []scoring.Item) ([]scoring.Result, int, error) {
	t, err := v.truthStore.Load(projectRoot)
	if err != nil {
		if err == truth.ErrNoTruth {
			return nil, 0, truth.ErrNoTruth
		}
		return nil, 0, fmt.Errorf("loading project truth: %w", err)
	}

	scorer := scoring.NewKeywordScorer(v.cfg.Scoring, v.patternIndex())

	// Scoring is pure over the (items, truth) snapshot, so items can
	// be scored concurrently; the WaitGroup is the aggregation barrier.
	results := make([]scoring.Result, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item scoring.Item) {
			defer wg.Done()
			results[i] = scorer.Score(item, t)
		}(i, item)
	}
	wg.Wait()

	return results, t.Version, nil
}

// patternIndex builds the historical-pattern index from archived
// flagged results. No archive, or an archive read failure, degrades
// to an empty index.
func (v *Verifier) patternIndex() *scoring.PatternIndex {
	if v.arc == nil {
		return nil
	}
	flagged, err := v.arc.FlaggedResults(0)
	if err != nil {
		log.Printf("WARNING: reading archived results for pattern index: %v", err)
		return nil
	}
	return scoring.NewPatternIndex(learning.Patterns(flagged))
}

// archiveFlagged records review/blocked results. Best effort — an
// archive failure must never fail the verification itself.
func (v *Verifier) archiveFlagged(results []scoring.Result, version int) {
	if v.arc == nil {
		return
	}
	for _, r := range results {
		if r.Status != scoring.StatusReview && r.Status != scoring.StatusBlocked {
			continue
		}
		err := v.arc.RecordResult(archive.FlaggedResult{
			ItemID:       r.ID,
			Title:        r.Title,
			Category:     r.Category,
			Status:       string(r.Status),
			Confidence:   r.Confidence,
			Message:      r.Message,
			TruthVersion: version,
		})
		if err != nil {
			log.Printf("WARNING: archiving flagged result %q: %v", r.ID, err)
		}
	}
}
