// Package archive is the durable history of the drift engine: flagged
// alignment results and drift snapshots, stored in SQLite.
//
// The archive feeds the learning subsystem and the audit report's
// history section. It is an optional collaborator — when it fails to
// open, verification and monitoring keep working without history.
package archive

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is a package-level var for deterministic timestamps in tests.
var timeNow = time.Now

// FlaggedResult is one archived alignment result with status review
// or blocked.
type FlaggedResult struct {
	ID           int64  `json:"id"`
	ItemID       string `json:"item_id"`
	Title        string `json:"title"`
	Category     string `json:"category,omitempty"`
	Status       string `json:"status"`
	Confidence   int    `json:"confidence"`
	Message      string `json:"message"`
	TruthVersion int    `json:"truth_version"`
	RecordedAt   string `json:"recorded_at"`
}

// SnapshotRecord is one archived drift snapshot.
type SnapshotRecord struct {
	ID              int64   `json:"id"`
	TakenAt         string  `json:"taken_at"`
	DriftPercentage float64 `json:"drift_percentage"`
	Severity        string  `json:"severity"`
	PurityScore     int     `json:"purity_score"`
	TotalItems      int     `json:"total_items"`
	TruthVersion    int     `json:"truth_version"`
}

// Config holds archive store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the archive under ~/.driftwatch.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".driftwatch")}
}

// Store is the SQLite-backed history archive.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the archive database, applies performance
// pragmas, and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("archive: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "archive.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("archive: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("archive: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS alignment_results (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			item_id       TEXT    NOT NULL,
			title         TEXT    NOT NULL,
			category      TEXT    NOT NULL DEFAULT '',
			status        TEXT    NOT NULL,
			confidence    INTEGER NOT NULL,
			message       TEXT    NOT NULL,
			truth_version INTEGER NOT NULL,
			recorded_at   TEXT    NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_results_status
			ON alignment_results(status, recorded_at);

		CREATE TABLE IF NOT EXISTS drift_snapshots (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			taken_at         TEXT    NOT NULL,
			drift_percentage REAL    NOT NULL,
			severity         TEXT    NOT NULL,
			purity_score     INTEGER NOT NULL,
			total_items      INTEGER NOT NULL,
			truth_version    INTEGER NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordResult archives one flagged alignment result.
func (s *Store) RecordResult(r FlaggedResult) error {
	recordedAt := r.RecordedAt
	if recordedAt == "" {
		recordedAt = timeNow().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO alignment_results
			(item_id, title, category, status, confidence, message, truth_version, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ItemID, r.Title, r.Category, r.Status, r.Confidence, r.Message, r.TruthVersion, recordedAt,
	)
	if err != nil {
		return fmt.Errorf("archive: record result for %q: %w", r.ItemID, err)
	}
	return nil
}

// FlaggedResults returns archived review/blocked results, newest
// first, capped at limit (0 means a default of 200).
func (s *Store) FlaggedResults(limit int) ([]FlaggedResult, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.Query(`
		SELECT id, item_id, title, category, status, confidence, message, truth_version, recorded_at
		FROM alignment_results
		WHERE status IN ('review', 'blocked')
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query flagged results: %w", err)
	}
	defer rows.Close()

	var results []FlaggedResult
	for rows.Next() {
		var r FlaggedResult
		if err := rows.Scan(&r.ID, &r.ItemID, &r.Title, &r.Category, &r.Status,
			&r.Confidence, &r.Message, &r.TruthVersion, &r.RecordedAt); err != nil {
			return nil, fmt.Errorf("archive: scan flagged result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// RecordSnapshot archives one drift snapshot.
func (s *Store) RecordSnapshot(snap SnapshotRecord) error {
	takenAt := snap.TakenAt
	if takenAt == "" {
		takenAt = timeNow().UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
		INSERT INTO drift_snapshots
			(taken_at, drift_percentage, severity, purity_score, total_items, truth_version)
		VALUES (?, ?, ?, ?, ?, ?)`,
		takenAt, snap.DriftPercentage, snap.Severity, snap.PurityScore, snap.TotalItems, snap.TruthVersion,
	)
	if err != nil {
		return fmt.Errorf("archive: record snapshot: %w", err)
	}
	return nil
}

// Snapshots returns archived drift snapshots, newest first, capped at
// limit (0 means a default of 100).
func (s *Store) Snapshots(limit int) ([]SnapshotRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT id, taken_at, drift_percentage, severity, purity_score, total_items, truth_version
		FROM drift_snapshots
		ORDER BY taken_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("archive: query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []SnapshotRecord
	for rows.Next() {
		var snap SnapshotRecord
		if err := rows.Scan(&snap.ID, &snap.TakenAt, &snap.DriftPercentage, &snap.Severity,
			&snap.PurityScore, &snap.TotalItems, &snap.TruthVersion); err != nil {
			return nil, fmt.Errorf("archive: scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}
