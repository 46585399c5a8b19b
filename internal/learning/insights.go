// Package learning aggregates historical flagged alignment results
// into insights: which violations recur, which categories carry risk,
// and what would prevent the next violation.
//
// The package is advisory and strictly read-only — it never mutates
// truth, scores, or history.
package learning

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/nvelasco/driftwatch/internal/archive"
	"github.com/nvelasco/driftwatch/internal/scoring"
)

// Violation is a recurring flagged pattern, ranked by frequency.
type Violation struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category,omitempty"`
	Count    int    `json:"count"`
	Blocked  int    `json:"blocked"`
}

// RiskFactor grades one item category by how often and how hard it
// gets flagged.
type RiskFactor struct {
	Category string `json:"category"`
	Impact   string `json:"impact"` // high | medium | low
	Count    int    `json:"count"`
}

// Strategy is one priority-ranked prevention recommendation.
type Strategy struct {
	Priority  int    `json:"priority"`
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

// Insights is the full learning-feedback output.
type Insights struct {
	TotalFlagged         int          `json:"total_flagged"`
	CommonViolations     []Violation  `json:"common_violations"`
	RiskFactors          []RiskFactor `json:"risk_factors"`
	PreventionStrategies []Strategy   `json:"prevention_strategies"`
}

// quoted matches double-quoted segments, which carry item-specific
// text (titles, boundary phrases) that would break clustering.
var quoted = regexp.MustCompile(`"[^"]*"`)

// numbers matches confidence values and scores embedded in messages.
var numbers = regexp.MustCompile(`\d+`)

// normalizeMessage strips item-specific parts of a result message so
// the same kind of violation clusters together.
func normalizeMessage(msg string) string {
	msg = quoted.ReplaceAllString(msg, "")
	msg = numbers.ReplaceAllString(msg, "")
	return strings.Join(strings.Fields(msg), " ")
}

// Build computes insights over archived flagged results.
func Build(flagged []archive.FlaggedResult) *Insights {
	ins := &Insights{TotalFlagged: len(flagged)}
	if len(flagged) == 0 {
		return ins
	}

	// Cluster by normalized message + category.
	type clusterKey struct {
		pattern  string
		category string
	}
	clusters := make(map[clusterKey]*Violation)
	byCategory := make(map[string]*RiskFactor)
	blockedByCategory := make(map[string]int)

	for _, r := range flagged {
		key := clusterKey{pattern: normalizeMessage(r.Message), category: r.Category}
		c, ok := clusters[key]
		if !ok {
			c = &Violation{Pattern: key.pattern, Category: key.category}
			clusters[key] = c
		}
		c.Count++
		if r.Status == string(scoring.StatusBlocked) {
			c.Blocked++
		}

		cat := r.Category
		if cat == "" {
			cat = "uncategorized"
		}
		rf, ok := byCategory[cat]
		if !ok {
			rf = &RiskFactor{Category: cat}
			byCategory[cat] = rf
		}
		rf.Count++
		if r.Status == string(scoring.StatusBlocked) {
			blockedByCategory[cat]++
		}
	}

	for _, c := range clusters {
		ins.CommonViolations = append(ins.CommonViolations, *c)
	}
	sort.Slice(ins.CommonViolations, func(i, j int) bool {
		a, b := ins.CommonViolations[i], ins.CommonViolations[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Pattern < b.Pattern
	})

	for cat, rf := range byCategory {
		rf.Impact = impact(rf.Count, blockedByCategory[cat])
		ins.RiskFactors = append(ins.RiskFactors, *rf)
	}
	sort.Slice(ins.RiskFactors, func(i, j int) bool {
		a, b := ins.RiskFactors[i], ins.RiskFactors[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})

	ins.PreventionStrategies = strategies(flagged, ins.RiskFactors)
	return ins
}

// Patterns converts flagged results into scorer violation patterns,
// closing the feedback loop into the historical sub-score.
func Patterns(flagged []archive.FlaggedResult) []scoring.ViolationPattern {
	patterns := make([]scoring.ViolationPattern, 0, len(flagged))
	for _, r := range flagged {
		patterns = append(patterns, scoring.ViolationPattern{
			Category: r.Category,
			Phrase:   r.Title,
		})
	}
	return patterns
}

// impact grades a category: blocked violations dominate, then volume.
func impact(count, blocked int) string {
	switch {
	case blocked >= 3 || (count > 0 && blocked*2 >= count):
		return "high"
	case count >= 3 || blocked > 0:
		return "medium"
	default:
		return "low"
	}
}

// strategies derives priority-ranked prevention recommendations from
// what actually went wrong.
func strategies(flagged []archive.FlaggedResult, risks []RiskFactor) []Strategy {
	var out []Strategy
	priority := 1

	boundaryHits := 0
	for _, r := range flagged {
		if strings.Contains(r.Message, "explicit project boundary") {
			boundaryHits++
		}
	}
	if boundaryHits > 0 {
		out = append(out, Strategy{
			Priority: priority,
			Action:   "Screen new backlog items against the not_this boundaries before they are filed.",
			Rationale: fmt.Sprintf("%d archived violations crossed an explicit boundary — these are the cheapest drift to prevent at intake.",
				boundaryHits),
		})
		priority++
	}

	for _, rf := range risks {
		if rf.Impact != "high" {
			continue
		}
		out = append(out, Strategy{
			Priority: priority,
			Action:   fmt.Sprintf("Require a truth-alignment note on every %q item before it enters a sprint.", rf.Category),
			Rationale: fmt.Sprintf("Category %q accounts for %d flagged results with high impact.",
				rf.Category, rf.Count),
		})
		priority++
	}

	if len(flagged) >= 5 {
		out = append(out, Strategy{
			Priority:  priority,
			Action:    "Re-review the project truth with stakeholders — recurring flags can mean the truth is stale, not the backlog wrong.",
			Rationale: fmt.Sprintf("%d flagged results on record; sustained flagging is a signal in both directions.", len(flagged)),
		})
	}

	return out
}
