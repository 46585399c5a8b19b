package scoring

// ViolationPattern is one previously flagged pattern, fed back from
// the learning subsystem. Phrase is the normalized violation message;
// Category is the item category it was flagged under, if any.
type ViolationPattern struct {
	Category string
	Phrase   string
}

// PatternIndex holds tokenized violation patterns for the historical
// sub-score. A nil or empty index scores every item as clean.
type PatternIndex struct {
	patterns []indexedPattern
}

type indexedPattern struct {
	category string
	tokens   []string
}

// NewPatternIndex tokenizes the given patterns. Patterns whose phrase
// yields no keywords are dropped — they cannot match anything.
func NewPatternIndex(patterns []ViolationPattern) *PatternIndex {
	idx := &PatternIndex{}
	for _, p := range patterns {
		tokens := Tokenize(p.Phrase)
		if len(tokens) == 0 {
			continue
		}
		idx.patterns = append(idx.patterns, indexedPattern{
			category: p.Category,
			tokens:   tokens,
		})
	}
	return idx
}

// Len returns the number of indexed patterns.
func (idx *PatternIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.patterns)
}

// bestMatch returns the highest overlap ratio between the item's
// tokens and any indexed pattern, in [0, 1]. Category, when set on a
// pattern, must match the item's category for the pattern to apply.
func (idx *PatternIndex) bestMatch(itemTokens map[string]bool, category string) float64 {
	if idx == nil {
		return 0
	}

	best := 0.0
	for _, p := range idx.patterns {
		if p.category != "" && category != "" && p.category != category {
			continue
		}
		hits := countHits(itemTokens, p.tokens)
		ratio := float64(hits) / float64(len(p.tokens))
		if ratio > best {
			best = ratio
		}
	}
	return best
}
