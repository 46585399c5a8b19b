// Package scoring implements the alignment scorer: a pure function
// from (item, project truth) to an alignment result.
//
// Four independently weighted sub-scores — domain, user, competitor,
// historical — combine into a confidence in [0, 100], which maps to a
// status through fixed thresholds. One rule overrides everything: an
// item that crosses an explicit not_this boundary is blocked no
// matter how well it scores.
//
// The Scorer is an interface so the keyword-overlap strategy here can
// later be swapped for something heavier (embedding similarity)
// without touching classification or the override.
package scoring

import (
	"math"
	"strings"

	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/truth"
)

// Status classifies one item's alignment with the project truth.
type Status string

const (
	StatusAllowed Status = "allowed"
	StatusWarning Status = "warning"
	StatusReview  Status = "review"
	StatusBlocked Status = "blocked"
)

// Item is anything scorable: a backlog item, a sprint task, or a
// document excerpt.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Details breaks the confidence into its four sub-scores, each 0-100.
type Details struct {
	DomainAlignment   int `json:"domain_alignment"`
	UserAlignment     int `json:"user_alignment"`
	CompetitorFeature int `json:"competitor_feature"`
	HistoricalPattern int `json:"historical_pattern"`
}

// Result is the scorer's output for one item. Computed on demand;
// only persisted when captured in a report or history snapshot.
type Result struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Category       string  `json:"category,omitempty"`
	Status         Status  `json:"status"`
	Confidence     int     `json:"confidence"`
	Message        string  `json:"message"`
	Recommendation string  `json:"recommendation,omitempty"`
	Details        Details `json:"details"`
}

// Scorer scores a single item against a truth snapshot. Implementations
// must be pure: identical inputs always yield identical outputs, and
// Score must be safe for concurrent use.
type Scorer interface {
	Score(item Item, t *truth.ProjectTruth) Result
}

// Sub-score shaping constants. Overlap scores start from a base and
// climb per distinct matched keyword; a truth with no reference
// vocabulary for an axis scores that axis as neutral.
const (
	neutralScore   = 70
	domainBase     = 30
	domainPerHit   = 20
	userBase       = 30
	userPerHit     = 25
	competitorHit  = 35
	competitorName = 50
)

// KeywordScorer is the default Scorer: keyword-overlap heuristics over
// tokenized text.
type KeywordScorer struct {
	cfg      config.Scoring
	patterns *PatternIndex
}

// NewKeywordScorer creates a KeywordScorer with the given scoring
// configuration and optional historical pattern index (nil is fine —
// the historical sub-score then reports clean).
func NewKeywordScorer(cfg config.Scoring, patterns *PatternIndex) *KeywordScorer {
	return &KeywordScorer{cfg: cfg, patterns: patterns}
}

// Score computes the four sub-scores, combines them by weight into a
// confidence, classifies, and applies the not_this override last.
func (s *KeywordScorer) Score(item Item, t *truth.ProjectTruth) Result {
	text := itemText(item)
	tokens := tokenSet(text)

	details := Details{
		DomainAlignment:   s.domainAlignment(tokens, t),
		UserAlignment:     s.userAlignment(tokens, t),
		CompetitorFeature: s.competitorFeature(text, tokens, t),
		HistoricalPattern: s.historicalPattern(tokens, item.Category),
	}

	w := s.cfg.Weights
	weighted := details.DomainAlignment*w.Domain +
		details.UserAlignment*w.User +
		details.CompetitorFeature*w.Competitor +
		details.HistoricalPattern*w.Historical
	confidence := clamp(int(math.Round(float64(weighted) / 100)))

	status := Classify(confidence, s.cfg.Thresholds)

	// Boundary override runs after confidence is computed (so the
	// confidence is still reported) and decides the final status.
	boundary := matchBoundary(text, tokens, t.NotThis)
	if boundary != "" {
		status = StatusBlocked
	}

	result := Result{
		ID:         item.ID,
		Title:      item.Title,
		Category:   item.Category,
		Status:     status,
		Confidence: confidence,
		Details:    details,
	}
	result.Message, result.Recommendation = describe(item, status, confidence, details, boundary)
	return result
}

// itemText joins the scorable fields of an item.
func itemText(item Item) string {
	parts := []string{item.Title}
	if item.Description != "" {
		parts = append(parts, item.Description)
	}
	if item.Category != "" {
		parts = append(parts, item.Category)
	}
	return strings.Join(parts, " ")
}

// domainAlignment measures overlap between the item and the truth's
// industry plus domain vocabulary.
func (s *KeywordScorer) domainAlignment(itemTokens map[string]bool, t *truth.ProjectTruth) int {
	var vocab []string
	vocab = append(vocab, Tokenize(t.Industry)...)
	for _, term := range t.DomainTerms {
		vocab = append(vocab, Tokenize(term.Term)...)
	}
	if len(vocab) == 0 {
		return neutralScore
	}

	hits := countHits(itemTokens, vocab)
	if hits == 0 {
		return domainBase
	}
	return clamp(domainBase + hits*domainPerHit)
}

// userAlignment measures relevance of the item to the target users.
func (s *KeywordScorer) userAlignment(itemTokens map[string]bool, t *truth.ProjectTruth) int {
	ref := Tokenize(t.TargetUsers.Primary + " " + t.TargetUsers.Secondary)
	if len(ref) == 0 {
		return neutralScore
	}

	hits := countHits(itemTokens, ref)
	if hits == 0 {
		return userBase
	}
	return clamp(userBase + hits*userPerHit)
}

// competitorFeature starts clean at 100 and penalizes resemblance to
// competitor capabilities: naming a competitor outright costs more
// than overlapping with its described capabilities.
func (s *KeywordScorer) competitorFeature(text string, itemTokens map[string]bool, t *truth.ProjectTruth) int {
	score := 100
	lower := strings.ToLower(text)
	for _, c := range t.Competitors {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name != "" && strings.Contains(lower, name) {
			score -= competitorName
			continue
		}
		descTokens := Tokenize(c.Description)
		if len(descTokens) >= 2 && countHits(itemTokens, descTokens)*2 >= len(descTokens) {
			score -= competitorHit
		}
	}
	return clamp(score)
}

// historicalPattern penalizes similarity to previously flagged
// violation patterns. No history means no known risk: score 100.
func (s *KeywordScorer) historicalPattern(itemTokens map[string]bool, category string) int {
	if s.patterns.Len() == 0 {
		return 100
	}
	sim := s.patterns.bestMatch(itemTokens, category)
	return clamp(100 - int(math.Round(sim*100)))
}
