package models

// CategoryAssignment is the categorization verdict for one transaction.
type CategoryAssignment struct {
	Category string `json:"category"`
	// Keyword is the rule keyword that matched, empty when uncategorized.
	Keyword    string     `json:"keyword,omitempty"`
	Confidence Confidence `json:"confidence"`
}

// IsCategorized reports whether the assignment carries a real category.
func (a CategoryAssignment) IsCategorized() bool {
	return a.Category != "" && a.Category != CategoryUncategorized
}

// Uncategorized returns the sentinel assignment.
func Uncategorized() CategoryAssignment {
	return CategoryAssignment{Category: CategoryUncategorized, Confidence: ConfidenceNone}
}

// CategoryRule maps a description keyword onto a category. Rule order is priority order.
type CategoryRule struct {
	Keyword  string `yaml:"keyword" json:"keyword"`
	Category string `yaml:"category" json:"category"`
}
