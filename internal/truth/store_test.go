package truth

import (
	"errors"
	"os"
	"testing"
	"time"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

func testData() *Data {
	return &Data{
		WhatWereBuilding: "Appointment scheduling for veterinary clinics",
		Industry:         "veterinary",
		TargetUsers:      TargetUsers{Primary: "clinic receptionists", Secondary: "pet owners"},
		NotThis:          []string{"NOT a marketplace", "NOT a social network", "NOT telehealth"},
	}
}

// --- Save ---

func TestSave_FirstVersionIsOne(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	res, err := store.Save(tmpDir, testData())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if res.Version != 1 {
		t.Errorf("Version = %d, want 1", res.Version)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("version file missing: %v", err)
	}
	if _, err := os.Stat(CurrentPath(tmpDir)); err != nil {
		t.Errorf("current.json missing: %v", err)
	}
}

func TestSave_IncrementsVersion(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	if _, err := store.Save(tmpDir, testData()); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	res, err := store.Save(tmpDir, testData())
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if res.Version != 2 {
		t.Errorf("Version = %d, want 2", res.Version)
	}
}

func TestSave_PriorVersionsSurvive(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	first := testData()
	if _, err := store.Save(tmpDir, first); err != nil {
		t.Fatalf("Save v1 failed: %v", err)
	}

	second := testData()
	second.WhatWereBuilding = "Scheduling plus waitlist management for veterinary clinics"
	if _, err := store.Save(tmpDir, second); err != nil {
		t.Fatalf("Save v2 failed: %v", err)
	}

	v1, err := store.LoadVersion(tmpDir, 1)
	if err != nil {
		t.Fatalf("LoadVersion(1) failed: %v", err)
	}
	if v1.WhatWereBuilding != first.WhatWereBuilding {
		t.Errorf("v1 content changed: %q", v1.WhatWereBuilding)
	}
}

func TestSave_RejectsInvalidData(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	_, err := store.Save(tmpDir, &Data{})
	if err == nil {
		t.Fatal("expected validation error")
	}
	// No partial write: the truth directory must not exist.
	if _, statErr := os.Stat(TruthPath(tmpDir)); !os.IsNotExist(statErr) {
		t.Error("truth directory created despite validation failure")
	}
}

func TestSave_DropsEmptyBoundaries(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	data := testData()
	data.NotThis = append(data.NotThis, "", "   ")
	if _, err := store.Save(tmpDir, data); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc, err := store.Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(doc.NotThis) != 3 {
		t.Errorf("NotThis = %v, want 3 entries", doc.NotThis)
	}
}

func TestSave_ReportsWarnings(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	res, err := store.Save(tmpDir, &Data{WhatWereBuilding: "Something"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected quality warnings for a sparse truth")
	}
}

// --- Load ---

func TestLoad_NoTruthIsSentinel(t *testing.T) {
	_, err := NewFileStore().Load(t.TempDir())
	if !errors.Is(err, ErrNoTruth) {
		t.Errorf("err = %v, want ErrNoTruth", err)
	}
}

func TestLoad_ReturnsLatest(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()

	if _, err := store.Save(tmpDir, testData()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := store.Save(tmpDir, testData()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	doc, err := store.Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Version != 2 {
		t.Errorf("Version = %d, want 2", doc.Version)
	}
	if doc.LastVerified != "2026-03-01T12:00:00Z" {
		t.Errorf("LastVerified = %s, want frozen timestamp", doc.LastVerified)
	}
}

// --- LoadVersion ---

func TestLoadVersion_UnknownVersionIsSentinel(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()
	if _, err := store.Save(tmpDir, testData()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := store.LoadVersion(tmpDir, 7)
	if !errors.Is(err, ErrNoTruth) {
		t.Errorf("err = %v, want ErrNoTruth", err)
	}
}

// --- History ---

func TestHistory_EmptyWithoutTruth(t *testing.T) {
	history, err := NewFileStore().History(t.TempDir())
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("history = %v, want empty", history)
	}
}

func TestHistory_AscendingVersions(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewFileStore()
	for i := 0; i < 3; i++ {
		if _, err := store.Save(tmpDir, testData()); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
	}

	history, err := store.History(tmpDir)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("len(history) = %d, want 3", len(history))
	}
	for i, doc := range history {
		if doc.Version != i+1 {
			t.Errorf("history[%d].Version = %d, want %d", i, doc.Version, i+1)
		}
	}
}

// --- parseVersion ---

func TestParseVersion(t *testing.T) {
	cases := []struct {
		name string
		want int
	}{
		{"truth-v1.json", 1},
		{"truth-v42.json", 42},
		{"truth-v0.json", 0},
		{"current.json", 0},
		{"truth-vX.json", 0},
		{"truth-v1.json.tmp", 0},
	}
	for _, c := range cases {
		if got := parseVersion(c.name); got != c.want {
			t.Errorf("parseVersion(%q) = %d, want %d", c.name, got, c.want)
		}
	}
}
