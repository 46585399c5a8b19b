package scoring

import (
	"testing"

	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/truth"
)

// --- Fixtures ---

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
		Version: 1,
	}
}

func testScorer() *KeywordScorer {
	return NewKeywordScorer(config.Default().Scoring, nil)
}

// --- Score ---

func TestScore_AlignedItemIsAllowed(t *testing.T) {
	r := testScorer().Score(Item{
		ID:    "BL-1",
		Title: "Send appointment reminder texts for pet owners from the clinic",
	}, testTruth())

	if r.Status != StatusAllowed {
		t.Fatalf("Status = %s, want allowed (confidence %d, details %+v)", r.Status, r.Confidence, r.Details)
	}
	if r.Confidence < 85 {
		t.Errorf("Confidence = %d, want >= 85", r.Confidence)
	}
	if r.Recommendation != "" {
		t.Errorf("allowed items carry no recommendation, got %q", r.Recommendation)
	}
}

func TestScore_WeakOverlapIsWarning(t *testing.T) {
	// One domain hit, no user hits: (50 + 30 + 100 + 100) / 4 = 70.
	r := testScorer().Score(Item{
		ID:    "BL-2",
		Title: "Improve booking confirmation emails",
	}, testTruth())

	if r.Confidence != 70 {
		t.Errorf("Confidence = %d, want 70", r.Confidence)
	}
	if r.Status != StatusWarning {
		t.Errorf("Status = %s, want warning", r.Status)
	}
	if r.Recommendation == "" {
		t.Error("warning items carry a recommendation")
	}
}

func TestScore_NoOverlapIsReview(t *testing.T) {
	// Zero hits on both overlap axes: (30 + 30 + 100 + 100) / 4 = 65.
	r := testScorer().Score(Item{
		ID:    "BL-3",
		Title: "Optimize image compression pipeline",
	}, testTruth())

	if r.Confidence != 65 {
		t.Errorf("Confidence = %d, want 65", r.Confidence)
	}
	if r.Status != StatusReview {
		t.Errorf("Status = %s, want review", r.Status)
	}
}

func TestScore_BoundaryOverridesConfidence(t *testing.T) {
	r := testScorer().Score(Item{
		ID:    "BL-4",
		Title: "Add public social feed to the platform",
	}, testTruth())

	if r.Status != StatusBlocked {
		t.Fatalf("Status = %s, want blocked", r.Status)
	}
	// The override changes the status, never the confidence.
	if r.Confidence != 65 {
		t.Errorf("Confidence = %d, want 65", r.Confidence)
	}
	if r.Recommendation == "" {
		t.Error("blocked items carry a recommendation")
	}
}

func TestScore_Deterministic(t *testing.T) {
	item := Item{ID: "BL-5", Title: "Let receptionists reschedule a clinic appointment"}
	pt := testTruth()
	s := testScorer()

	first := s.Score(item, pt)
	for i := 0; i < 10; i++ {
		if got := s.Score(item, pt); got != first {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestScore_CompetitorNamePenalty(t *testing.T) {
	pt := testTruth()
	pt.Competitors = []truth.Competitor{
		{Name: "PetDesk", Description: "mobile client communication marketing"},
	}

	r := testScorer().Score(Item{
		ID:    "BL-6",
		Title: "Match the PetDesk appointment reminder workflow",
	}, pt)

	if r.Details.CompetitorFeature != 50 {
		t.Errorf("CompetitorFeature = %d, want 50 after name penalty", r.Details.CompetitorFeature)
	}
}

func TestScore_NeutralAxesWhenTruthIsSparse(t *testing.T) {
	pt := &truth.ProjectTruth{
		WhatWereBuilding: "Something",
		NotThis:          []string{"NOT a game"},
		Version:          1,
	}

	r := testScorer().Score(Item{ID: "BL-7", Title: "Build the onboarding flow"}, pt)
	if r.Details.DomainAlignment != 70 {
		t.Errorf("DomainAlignment = %d, want neutral 70", r.Details.DomainAlignment)
	}
	if r.Details.UserAlignment != 70 {
		t.Errorf("UserAlignment = %d, want neutral 70", r.Details.UserAlignment)
	}
}

// --- Historical patterns ---

func TestScore_HistoricalPatternPenalty(t *testing.T) {
	idx := NewPatternIndex([]ViolationPattern{
		{Phrase: "public social feed"},
	})
	s := NewKeywordScorer(config.Default().Scoring, idx)

	r := s.Score(Item{ID: "BL-8", Title: "Launch the public feed experiment"}, testTruth())
	// 2 of 3 pattern tokens match: 100 - round(100 * 2/3) = 33.
	if r.Details.HistoricalPattern != 33 {
		t.Errorf("HistoricalPattern = %d, want 33", r.Details.HistoricalPattern)
	}
}

func TestScore_NilPatternIndexIsClean(t *testing.T) {
	r := testScorer().Score(Item{ID: "BL-9", Title: "Optimize image compression pipeline"}, testTruth())
	if r.Details.HistoricalPattern != 100 {
		t.Errorf("HistoricalPattern = %d, want 100 with no history", r.Details.HistoricalPattern)
	}
}

func TestPatternIndex_CategoryScoping(t *testing.T) {
	idx := NewPatternIndex([]ViolationPattern{
		{Category: "marketing", Phrase: "newsletter campaign builder"},
	})

	// Same tokens, different category: the pattern must not apply.
	match := idx.bestMatch(tokenSet("newsletter campaign builder"), "infrastructure")
	if match != 0 {
		t.Errorf("bestMatch = %.2f, want 0 for non-matching category", match)
	}

	match = idx.bestMatch(tokenSet("newsletter campaign builder"), "marketing")
	if match != 1 {
		t.Errorf("bestMatch = %.2f, want 1 for matching category", match)
	}
}
