package scoring

import (
	"fmt"
	"strings"

	"github.com/nvelasco/driftwatch/internal/config"
)

// Classify maps a confidence to a status through the configured
// thresholds. Deterministic: same inputs, same output, always.
func Classify(confidence int, t config.Thresholds) Status {
	switch {
	case confidence >= t.Allowed:
		return StatusAllowed
	case confidence >= t.Warning:
		return StatusWarning
	case confidence >= t.Review:
		return StatusReview
	default:
		return StatusBlocked
	}
}

// matchBoundary returns the first not_this boundary the item crosses,
// or "" when none matches.
//
// A boundary matches on literal phrase containment, or when at least
// half of its significant keywords (minimum two) appear in the item
// text. The keyword rule is what catches "Add public social feed"
// against the boundary "NOT a social media platform" — the literal
// phrase never appears in drifting items, its subject does.
func matchBoundary(text string, itemTokens map[string]bool, notThis []string) string {
	lower := strings.ToLower(text)
	for _, boundary := range notThis {
		phrase := strings.ToLower(strings.TrimSpace(boundary))
		if phrase == "" {
			continue
		}
		if strings.Contains(lower, phrase) {
			return boundary
		}

		btokens := Tokenize(phrase)
		if len(btokens) == 0 {
			continue
		}
		hits := countHits(itemTokens, btokens)
		if hits >= 2 && hits*2 >= len(btokens) {
			return boundary
		}
	}
	return ""
}

// axisName labels the weakest sub-score for messages.
func weakestAxis(d Details) (string, int) {
	name, score := "domain alignment", d.DomainAlignment
	if d.UserAlignment < score {
		name, score = "target-user alignment", d.UserAlignment
	}
	if d.CompetitorFeature < score {
		name, score = "competitor-feature risk", d.CompetitorFeature
	}
	if d.HistoricalPattern < score {
		name, score = "historical violation similarity", d.HistoricalPattern
	}
	return name, score
}

// describe builds the human-readable message and, for anything not
// allowed, a recommendation.
func describe(item Item, status Status, confidence int, d Details, boundary string) (message, recommendation string) {
	if boundary != "" {
		message = fmt.Sprintf("%q crosses an explicit project boundary: %q", item.Title, boundary)
		recommendation = fmt.Sprintf(
			"Remove or rescope this item. The project truth explicitly states it is %q — "+
				"if this boundary no longer holds, update the truth first, then re-verify.",
			boundary)
		return message, recommendation
	}

	axis, axisScore := weakestAxis(d)

	switch status {
	case StatusAllowed:
		message = fmt.Sprintf("%q is aligned with the project truth (confidence %d)", item.Title, confidence)
		return message, ""
	case StatusWarning:
		message = fmt.Sprintf("%q mostly aligns (confidence %d) but %s is weak (%d)",
			item.Title, confidence, axis, axisScore)
		recommendation = fmt.Sprintf(
			"Tighten the item: connect it explicitly to the project's domain and users, "+
				"or improve %s before committing to it.", axis)
	case StatusReview:
		message = fmt.Sprintf("%q needs review (confidence %d): %s scored %d",
			item.Title, confidence, axis, axisScore)
		recommendation = "Review with a stakeholder against the project truth. " +
			"Either reword the item to use the project's vocabulary and users, or drop it."
	case StatusBlocked:
		message = fmt.Sprintf("%q shows almost no alignment with the project truth (confidence %d)",
			item.Title, confidence)
		recommendation = "Do not schedule this item. If it genuinely belongs to the project, " +
			"the truth document is missing context — update it and re-verify."
	}
	return message, recommendation
}
