// Package drift tracks alignment drift over time.
//
// The Monitor is a two-state scheduler (stopped/monitoring). Each tick
// re-verifies the stored backlog, converts purity into a drift
// percentage, classifies severity, and appends a snapshot to a
// bounded, oldest-evicted history. A reentrancy guard skips a
// scheduled tick that would overlap a still-running one — ticks never
// run concurrently.
package drift

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/backlog"
	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/verify"
)

// ErrBadInterval is returned by Start for intervals below the
// configured minimum.
var ErrBadInterval = errors.New("interval below minimum")

// State is the monitor's scheduler state.
type State string

const (
	StateStopped    State = "stopped"
	StateMonitoring State = "monitoring"
)

// Snapshot is one drift measurement. Append-only once recorded.
type Snapshot struct {
	Timestamp       string  `json:"timestamp"`
	DriftPercentage float64 `json:"drift_percentage"`
	Severity        string  `json:"severity"`
	PurityScore     int     `json:"purity_score"`
	TotalItems      int     `json:"total_items"`
	TruthVersion    int     `json:"truth_version"`
	Note            string  `json:"note,omitempty"`
}

// Trend summarizes drift direction over the trend window. Determined
// is false until enough snapshots exist — the trend is never guessed.
type Trend struct {
	Determined bool    `json:"determined"`
	Rate       float64 `json:"rate,omitempty"`
	Increasing bool    `json:"increasing,omitempty"`
	Window     int     `json:"window,omitempty"`
}

// StatusReport is the read-only view returned by Status.
type StatusReport struct {
	State           State     `json:"state"`
	IntervalMinutes int       `json:"interval_minutes,omitempty"`
	Latest          *Snapshot `json:"latest,omitempty"`
	Trend           Trend     `json:"trend"`
	HistorySize     int       `json:"history_size"`
}

// Monitor is the drift state machine. Safe for concurrent use.
type Monitor struct {
	verifier *verify.Verifier
	items    backlog.Store
	arc      *archive.Store // nullable
	cfg      config.Config
	root     string

	mu       sync.Mutex // guards state, interval, stopCh, history
	state    State
	interval time.Duration
	stopCh   chan struct{}
	history  []Snapshot

	tickMu sync.Mutex // reentrancy guard: at most one tick at a time
}

// NewMonitor creates a stopped Monitor for one project root.
func NewMonitor(v *verify.Verifier, items backlog.Store, arc *archive.Store, cfg config.Config, projectRoot string) *Monitor {
	return &Monitor{
		verifier: v,
		items:    items,
		arc:      arc,
		cfg:      cfg,
		root:     projectRoot,
		state:    StateStopped,
	}
}

// Start transitions stopped → monitoring with the given interval.
// Intervals below the configured minimum are a validation error.
// Starting while already monitoring is an idempotent no-op: it
// returns started=false and never creates a second schedule.
func (m *Monitor) Start(intervalMinutes int) (started bool, err error) {
	if intervalMinutes < m.cfg.Monitor.MinIntervalMinutes {
		return false, fmt.Errorf("%w: %d minutes (minimum %d)",
			ErrBadInterval, intervalMinutes, m.cfg.Monitor.MinIntervalMinutes)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateMonitoring {
		log.Printf("WARNING: drift monitor already running (interval %s) — start ignored", m.interval)
		return false, nil
	}

	m.state = StateMonitoring
	m.interval = time.Duration(intervalMinutes) * time.Minute
	m.stopCh = make(chan struct{})
	go m.run(m.stopCh, m.interval)

	return true, nil
}

// Stop transitions monitoring → stopped. Stopping an already stopped
// monitor is an idempotent no-op with a warning.
func (m *Monitor) Stop() (stopped bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateStopped {
		log.Printf("WARNING: drift monitor already stopped — stop ignored")
		return false
	}

	close(m.stopCh)
	m.stopCh = nil
	m.state = StateStopped
	return true
}

// CheckNow forces one tick outside the schedule and returns the
// resulting snapshot. Unlike a scheduled tick it waits for any
// in-flight tick instead of skipping.
func (m *Monitor) CheckNow() (*Snapshot, error) {
	m.tickMu.Lock()
	defer m.tickMu.Unlock()
	return m.tick()
}

// Status returns the latest snapshot plus the trend over the last
// trend-window snapshots. Read-only.
func (m *Monitor) Status() *StatusReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	report := &StatusReport{
		State:       m.state,
		HistorySize: len(m.history),
		Trend:       trendLocked(m.history, m.cfg.Monitor.TrendWindow),
	}
	if m.state == StateMonitoring {
		report.IntervalMinutes = int(m.interval / time.Minute)
	}
	if n := len(m.history); n > 0 {
		latest := m.history[n-1]
		report.Latest = &latest
	}
	return report
}

// History returns a copy of the in-memory snapshot history, oldest
// first.
func (m *Monitor) History() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.history))
	copy(out, m.history)
	return out
}

// run is the scheduler loop. It owns no state directly — every tick
// goes through the same guarded path as CheckNow.
func (m *Monitor) run(stopCh <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !m.tickIfIdle() {
				log.Printf("WARNING: drift tick still running — skipping scheduled tick")
			}
		}
	}
}

// tickIfIdle runs one scheduled tick unless a tick is already in
// flight. Reentrancy guard: an in-flight tick makes this a no-op that
// reports ran=false — ticks never overlap.
func (m *Monitor) tickIfIdle() (ran bool) {
	if !m.tickMu.TryLock() {
		return false
	}
	defer m.tickMu.Unlock()

	if _, err := m.tick(); err != nil {
		log.Printf("WARNING: drift tick failed: %v", err)
	}
	return true
}

// tick performs one measurement. Caller must hold tickMu.
func (m *Monitor) tick() (*Snapshot, error) {
	items, err := m.items.List(m.root)
	if err != nil {
		return nil, fmt.Errorf("loading backlog: %w", err)
	}

	report, err := m.verifier.VerifyBacklog(m.root, items)
	if err != nil {
		return nil, err
	}

	snap := Snapshot{
		Timestamp:    timeNow().UTC().Format(time.RFC3339),
		PurityScore:  report.PurityScore,
		TotalItems:   report.Total,
		TruthVersion: report.TruthVersion,
	}
	if report.Total == 0 {
		// An empty backlog has nothing misaligned; purity 0 here is
		// the empty-set convention, not drift.
		snap.DriftPercentage = 0
		snap.Note = "backlog is empty — nothing to measure"
	} else {
		snap.DriftPercentage = float64(100 - report.PurityScore)
	}
	snap.Severity = m.cfg.SeverityFor(snap.DriftPercentage)

	m.append(snap)
	m.archiveSnapshot(snap)
	return &snap, nil
}

// append records a snapshot in the bounded history, evicting the
// oldest entry past the cap.
func (m *Monitor) append(snap Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.history = append(m.history, snap)
	if cap := m.cfg.Monitor.HistoryCap; len(m.history) > cap {
		m.history = m.history[len(m.history)-cap:]
	}
}

// archiveSnapshot persists a snapshot best effort.
func (m *Monitor) archiveSnapshot(snap Snapshot) {
	if m.arc == nil {
		return
	}
	err := m.arc.RecordSnapshot(archive.SnapshotRecord{
		TakenAt:         snap.Timestamp,
		DriftPercentage: snap.DriftPercentage,
		Severity:        snap.Severity,
		PurityScore:     snap.PurityScore,
		TotalItems:      snap.TotalItems,
		TruthVersion:    snap.TruthVersion,
	})
	if err != nil {
		log.Printf("WARNING: archiving drift snapshot: %v", err)
	}
}

// trendLocked computes the drift trend over the last window
// snapshots. Undetermined below window entries; Window is always set
// so callers can report how many snapshots the trend needs.
func trendLocked(history []Snapshot, window int) Trend {
	n := len(history)
	if n < window {
		return Trend{Determined: false, Window: window}
	}

	recent := history[n-window:]
	first := recent[0].DriftPercentage
	last := recent[window-1].DriftPercentage
	rate := (last - first) / float64(window-1)

	return Trend{
		Determined: true,
		Rate:       rate,
		Increasing: rate > 0,
		Window:     window,
	}
}
