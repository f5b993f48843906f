package categorizer

import (
	"strings"

	"fjacquet/statement-ledger/internal/models"
)

// ExactMatchStrategy picks the first rule whose keyword is a case-insensitive
// substring of the description.
type ExactMatchStrategy struct{}

// NewExactMatchStrategy creates a new ExactMatchStrategy instance.
func NewExactMatchStrategy() *ExactMatchStrategy {
	return &ExactMatchStrategy{}
}

// Name returns the name of this strategy for logging and debugging.
func (s *ExactMatchStrategy) Name() string {
	return "Exact"
}

// Categorize returns a high confidence assignment for the first matching rule.
func (s *ExactMatchStrategy) Categorize(description string, rules []models.CategoryRule) (models.CategoryAssignment, bool) {
	desc := strings.ToLower(description)
	for _, rule := range rules {
		keyword := strings.ToLower(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(desc, keyword) {
			return models.CategoryAssignment{
				Category:   rule.Category,
				Keyword:    rule.Keyword,
				Confidence: models.ConfidenceHigh,
			}, true
		}
	}
	return models.CategoryAssignment{}, false
}
