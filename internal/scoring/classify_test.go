package scoring

import (
	"testing"

	"github.com/nvelasco/driftwatch/internal/config"
)

// --- Classify ---

func TestClassify_ThresholdEdges(t *testing.T) {
	th := config.Default().Scoring.Thresholds
	cases := []struct {
		confidence int
		want       Status
	}{
		{100, StatusAllowed},
		{85, StatusAllowed},
		{84, StatusWarning},
		{70, StatusWarning},
		{69, StatusReview},
		{50, StatusReview},
		{49, StatusBlocked},
		{0, StatusBlocked},
	}
	for _, c := range cases {
		if got := Classify(c.confidence, th); got != c.want {
			t.Errorf("Classify(%d) = %s, want %s", c.confidence, got, c.want)
		}
	}
}

// --- matchBoundary ---

func TestMatchBoundary_LiteralPhrase(t *testing.T) {
	text := "This is essentially a social media platform for pets"
	got := matchBoundary(text, tokenSet(text), []string{"social media platform"})
	if got != "social media platform" {
		t.Errorf("matchBoundary = %q, want the boundary", got)
	}
}

func TestMatchBoundary_KeywordSubject(t *testing.T) {
	// The canonical drift case: the boundary's phrase never appears
	// verbatim, its subject does.
	text := "Add public social feed to the platform"
	got := matchBoundary(text, tokenSet(text), []string{"NOT a social media platform"})
	if got != "NOT a social media platform" {
		t.Errorf("matchBoundary = %q, want the boundary", got)
	}
}

func TestMatchBoundary_SingleKeywordIsNotEnough(t *testing.T) {
	// One shared keyword must not trip a multi-keyword boundary.
	text := "Track pet vaccination records per appointment"
	got := matchBoundary(text, tokenSet(text), []string{"NOT a marketplace for pet products"})
	if got != "" {
		t.Errorf("matchBoundary = %q, want no match", got)
	}
}

func TestMatchBoundary_NoMatch(t *testing.T) {
	text := "Send appointment reminder texts"
	got := matchBoundary(text, tokenSet(text), []string{
		"NOT a social media platform",
		"NOT a telehealth service",
	})
	if got != "" {
		t.Errorf("matchBoundary = %q, want no match", got)
	}
}

func TestMatchBoundary_EmptyBoundariesIgnored(t *testing.T) {
	text := "anything at all"
	if got := matchBoundary(text, tokenSet(text), []string{"", "  "}); got != "" {
		t.Errorf("matchBoundary = %q, want no match", got)
	}
}

// --- weakestAxis ---

func TestWeakestAxis(t *testing.T) {
	d := Details{DomainAlignment: 90, UserAlignment: 30, CompetitorFeature: 100, HistoricalPattern: 80}
	name, score := weakestAxis(d)
	if name != "target-user alignment" || score != 30 {
		t.Errorf("weakestAxis = (%s, %d), want (target-user alignment, 30)", name, score)
	}
}
