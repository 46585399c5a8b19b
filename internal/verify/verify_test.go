package verify

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/scoring"
	"github.com/nvelasco/driftwatch/internal/truth"
)

func init() {
	timeNow = func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}
}

// --- Fakes ---

// memTruthStore serves a fixed truth document from memory.
type memTruthStore struct {
	doc *truth.ProjectTruth
}

func (m *memTruthStore) Save(string, *truth.Data) (*truth.SaveResult, error) {
	return nil, errors.New("read-only fake")
}

func (m *memTruthStore) Load(string) (*truth.ProjectTruth, error) {
	if m.doc == nil {
		return nil, truth.ErrNoTruth
	}
	return m.doc, nil
}

func (m *memTruthStore) LoadVersion(string, int) (*truth.ProjectTruth, error) {
	return m.Load("")
}

func (m *memTruthStore) History(string) ([]truth.ProjectTruth, error) {
	return nil, nil
}

func testTruth() *truth.ProjectTruth {
	return &truth.ProjectTruth{
		WhatWereBuilding: "Appointment scheduling for veterinary clinics",
		Industry:         "veterinary scheduling",
		TargetUsers: truth.TargetUsers{
			Primary:   "veterinary clinic receptionists",
			Secondary: "pet owners",
		},
		NotThis: []string{
			"NOT a social media platform",
			"NOT a marketplace for pet products",
			"NOT a telehealth service",
		},
		DomainTerms: []truth.DomainTerm{
			{Term: "appointment"},
			{Term: "booking"},
			{Term: "reminder"},
			{Term: "clinic"},
		},
		Version: 3,
	}
}

func testVerifier(doc *truth.ProjectTruth) *Verifier {
	return New(&memTruthStore{doc: doc}, config.Default(), nil)
}

// Item fixtures with known score profiles against testTruth:
// aligned scores ~98 (allowed), weak scores exactly 70 (warning),
// offTruth scores 65 (review), boundary is blocked by override.

func alignedItem(n int) scoring.Item {
	return scoring.Item{
		ID:    fmt.Sprintf("BL-%d", n),
		Title: "Send appointment reminder texts for pet owners from the clinic",
	}
}

func weakItem(n int) scoring.Item {
	return scoring.Item{
		ID:    fmt.Sprintf("BL-%d", n),
		Title: "Improve booking confirmation emails",
	}
}

func boundaryItem(n int) scoring.Item {
	return scoring.Item{
		ID:    fmt.Sprintf("BL-%d", n),
		Title: "Add public social feed to the platform",
	}
}

// --- VerifyBacklog ---

func TestVerifyBacklog_PurityScore(t *testing.T) {
	// 7 allowed of 10 items: purity = round(100 * 7/10) = 70.
	items := []scoring.Item{
		alignedItem(1), alignedItem(2), alignedItem(3), alignedItem(4),
		alignedItem(5), alignedItem(6), alignedItem(7),
		weakItem(8), weakItem(9),
		boundaryItem(10),
	}

	report, err := testVerifier(testTruth()).VerifyBacklog(t.TempDir(), items)
	if err != nil {
		t.Fatalf("VerifyBacklog failed: %v", err)
	}

	if report.Total != 10 {
		t.Errorf("Total = %d, want 10", report.Total)
	}
	if report.Aligned != 7 {
		t.Errorf("Aligned = %d, want 7", report.Aligned)
	}
	if report.Warnings != 2 {
		t.Errorf("Warnings = %d, want 2", report.Warnings)
	}
	if report.Violations != 1 {
		t.Errorf("Violations = %d, want 1", report.Violations)
	}
	if report.PurityScore != 70 {
		t.Errorf("PurityScore = %d, want 70", report.PurityScore)
	}
	if report.TruthVersion != 3 {
		t.Errorf("TruthVersion = %d, want 3", report.TruthVersion)
	}
}

func TestVerifyBacklog_EmptySetIsPurityZero(t *testing.T) {
	report, err := testVerifier(testTruth()).VerifyBacklog(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("VerifyBacklog failed: %v", err)
	}
	if report.Total != 0 {
		t.Errorf("Total = %d, want 0", report.Total)
	}
	if report.PurityScore != 0 {
		t.Errorf("PurityScore = %d, want 0 by convention", report.PurityScore)
	}
}

func TestVerifyBacklog_NoTruthIsSentinel(t *testing.T) {
	_, err := testVerifier(nil).VerifyBacklog(t.TempDir(), []scoring.Item{alignedItem(1)})
	if !errors.Is(err, truth.ErrNoTruth) {
		t.Errorf("err = %v, want ErrNoTruth", err)
	}
}

func TestVerifyBacklog_PreservesItemOrder(t *testing.T) {
	items := []scoring.Item{alignedItem(1), boundaryItem(2), weakItem(3)}
	report, err := testVerifier(testTruth()).VerifyBacklog(t.TempDir(), items)
	if err != nil {
		t.Fatalf("VerifyBacklog failed: %v", err)
	}
	for i, r := range report.Items {
		if r.ID != items[i].ID {
			t.Errorf("Items[%d].ID = %s, want %s", i, r.ID, items[i].ID)
		}
	}
}

// --- VerifySprintTasks ---

func TestVerifySprintTasks_OneBlockedClosesGate(t *testing.T) {
	tasks := []scoring.Item{
		alignedItem(1), alignedItem(2), alignedItem(3),
		boundaryItem(4),
	}
	report, err := testVerifier(testTruth()).VerifySprintTasks(t.TempDir(), tasks)
	if err != nil {
		t.Fatalf("VerifySprintTasks failed: %v", err)
	}
	if report.CanProceed {
		t.Error("CanProceed = true, want false with a blocked task")
	}
}

func TestVerifySprintTasks_CleanSprintProceeds(t *testing.T) {
	tasks := []scoring.Item{alignedItem(1), weakItem(2)}
	report, err := testVerifier(testTruth()).VerifySprintTasks(t.TempDir(), tasks)
	if err != nil {
		t.Fatalf("VerifySprintTasks failed: %v", err)
	}
	if !report.CanProceed {
		t.Error("CanProceed = false, want true — warnings never close the gate")
	}
}

func TestVerifySprintTasks_EmptySprintProceeds(t *testing.T) {
	report, err := testVerifier(testTruth()).VerifySprintTasks(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("VerifySprintTasks failed: %v", err)
	}
	if !report.CanProceed {
		t.Error("CanProceed = false, want true for an empty sprint")
	}
}
