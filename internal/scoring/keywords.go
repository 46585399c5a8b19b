package scoring

import "strings"

// minKeywordLen filters noise tokens like "a", "to", "of".
const minKeywordLen = 3

// stopWords is a set of common words excluded from keyword matching.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "has": true,
	"have": true, "had": true, "was": true, "were": true, "will": true,
	"with": true, "this": true, "that": true, "they": true, "them": true,
	"then": true, "than": true, "from": true, "into": true, "over": true,
	"some": true, "such": true, "also": true, "just": true, "like": true,
	"each": true, "which": true, "their": true, "there": true, "about": true,
	"would": true, "could": true, "should": true, "when": true, "what": true,
	"where": true, "while": true, "after": true, "before": true, "other": true,
	"make": true, "made": true, "take": true, "use": true, "using": true,
	"able": true, "via": true, "per": true, "any": true, "our": true,
	"its": true, "his": true, "her": true, "who": true, "how": true,
	"new": true, "add": true, "get": true, "set": true, "allow": true,
	"support": true, "users": true, "user": true, "system": true,
	"feature": true, "features": true,
}

// Tokenize splits free text into lowercase keywords, stripping
// punctuation and filtering stop words and short tokens.
func Tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	var keywords []string
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}-–—/")
		if len(w) < minKeywordLen || stopWords[w] {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// tokenSet builds a membership set from tokenized text.
func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range Tokenize(text) {
		set[t] = true
	}
	return set
}

// countHits returns how many reference tokens appear in the item's
// token set. Distinct tokens only — repeating a term doesn't help.
func countHits(itemTokens map[string]bool, refTokens []string) int {
	seen := make(map[string]bool, len(refTokens))
	hits := 0
	for _, t := range refTokens {
		if seen[t] {
			continue
		}
		seen[t] = true
		if itemTokens[t] {
			hits++
		}
	}
	return hits
}

// clamp bounds a score to [0, 100].
func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
