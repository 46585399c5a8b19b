package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// --- New ---

func TestNew_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{DataDir: filepath.Join(dir, "nested")})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "nested", "archive.db")); err != nil {
		t.Errorf("archive.db missing: %v", err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.RecordResult(FlaggedResult{ItemID: "BL-1", Title: "A", Status: "blocked"}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}
	s.Close()

	s, err = New(Config{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	results, err := s.FlaggedResults(0)
	if err != nil {
		t.Fatalf("FlaggedResults failed: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("len(results) = %d, want 1 after reopen", len(results))
	}
}

// --- RecordResult / FlaggedResults ---

func TestFlaggedResults_FiltersStatus(t *testing.T) {
	s := testStore(t)

	records := []FlaggedResult{
		{ItemID: "BL-1", Title: "A", Status: "blocked", Confidence: 20},
		{ItemID: "BL-2", Title: "B", Status: "review", Confidence: 55},
		{ItemID: "BL-3", Title: "C", Status: "allowed", Confidence: 95},
		{ItemID: "BL-4", Title: "D", Status: "warning", Confidence: 75},
	}
	for _, r := range records {
		if err := s.RecordResult(r); err != nil {
			t.Fatalf("RecordResult %s failed: %v", r.ItemID, err)
		}
	}

	results, err := s.FlaggedResults(0)
	if err != nil {
		t.Fatalf("FlaggedResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2 (review + blocked only)", len(results))
	}
	for _, r := range results {
		if r.Status != "review" && r.Status != "blocked" {
			t.Errorf("unexpected status %s in flagged results", r.Status)
		}
	}
}

func TestFlaggedResults_AppliesLimit(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		if err := s.RecordResult(FlaggedResult{ItemID: "BL-1", Title: "A", Status: "review"}); err != nil {
			t.Fatalf("RecordResult failed: %v", err)
		}
	}

	results, err := s.FlaggedResults(2)
	if err != nil {
		t.Fatalf("FlaggedResults failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
}

func TestRecordResult_StampsRecordedAt(t *testing.T) {
	s := testStore(t)
	if err := s.RecordResult(FlaggedResult{ItemID: "BL-1", Title: "A", Status: "blocked"}); err != nil {
		t.Fatalf("RecordResult failed: %v", err)
	}

	results, _ := s.FlaggedResults(0)
	if results[0].RecordedAt != "2026-03-01T12:00:00Z" {
		t.Errorf("RecordedAt = %s, want frozen timestamp", results[0].RecordedAt)
	}
}

// --- RecordSnapshot / Snapshots ---

func TestSnapshots_Roundtrip(t *testing.T) {
	s := testStore(t)

	snap := SnapshotRecord{
		DriftPercentage: 30,
		Severity:        "moderate",
		PurityScore:     70,
		TotalItems:      10,
		TruthVersion:    2,
	}
	if err := s.RecordSnapshot(snap); err != nil {
		t.Fatalf("RecordSnapshot failed: %v", err)
	}

	snaps, err := s.Snapshots(0)
	if err != nil {
		t.Fatalf("Snapshots failed: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("len(snaps) = %d, want 1", len(snaps))
	}
	got := snaps[0]
	if got.DriftPercentage != 30 || got.Severity != "moderate" || got.PurityScore != 70 {
		t.Errorf("snapshot = %+v, want the recorded values", got)
	}
	if got.TakenAt != "2026-03-01T12:00:00Z" {
		t.Errorf("TakenAt = %s, want frozen timestamp", got.TakenAt)
	}
}
