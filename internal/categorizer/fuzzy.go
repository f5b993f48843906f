package categorizer

import (
	"strings"

	"fjacquet/statement-ledger/internal/models"
)

// DefaultFuzzyThreshold is the minimum share of keyword words that must occur in a description.
const DefaultFuzzyThreshold = 0.6

// FuzzyMatchStrategy scores every rule by the fraction of its keyword words
// found in the description and keeps the best rule at or above the threshold.
// A word is found when it is a substring of the lowercased description, or of
// the lowercased description with whitespace removed, so "juicepro" is found
// in "JUICE Pro Transfer".
type FuzzyMatchStrategy struct {
	threshold float64
}

// NewFuzzyMatchStrategy creates a fuzzy strategy. Thresholds outside (0, 1] use DefaultFuzzyThreshold.
func NewFuzzyMatchStrategy(threshold float64) *FuzzyMatchStrategy {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	return &FuzzyMatchStrategy{threshold: threshold}
}

// Name returns the name of this strategy for logging and debugging.
func (s *FuzzyMatchStrategy) Name() string {
	return "Fuzzy"
}

// Threshold returns the configured match threshold.
func (s *FuzzyMatchStrategy) Threshold() float64 {
	return s.threshold
}

// Categorize returns a medium confidence assignment for the highest scoring rule.
// Ties go to the rule listed first.
func (s *FuzzyMatchStrategy) Categorize(description string, rules []models.CategoryRule) (models.CategoryAssignment, bool) {
	desc := strings.ToLower(description)
	compact := strings.Join(strings.Fields(desc), "")

	bestScore := 0.0
	best := -1
	for i, rule := range rules {
		score := WordOverlap(rule.Keyword, desc, compact)
		if score >= s.threshold && score > bestScore {
			bestScore = score
			best = i
		}
	}
	if best < 0 {
		return models.CategoryAssignment{}, false
	}
	return models.CategoryAssignment{
		Category:   rules[best].Category,
		Keyword:    rules[best].Keyword,
		Confidence: models.ConfidenceMedium,
	}, true
}

// WordOverlap returns the fraction of keyword words contained in desc or compact.
// desc and compact must already be lowercase.
func WordOverlap(keyword, desc, compact string) float64 {
	words := strings.Fields(strings.ToLower(keyword))
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, word := range words {
		if strings.Contains(desc, word) || strings.Contains(compact, word) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}
