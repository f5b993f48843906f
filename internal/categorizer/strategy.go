package categorizer

import "fjacquet/statement-ledger/internal/models"

// CategorizationStrategy defines one pass of the categorization engine.
type CategorizationStrategy interface {
	// Categorize matches a description against the ordered rule table.
	// The boolean is false when the strategy found nothing.
	Categorize(description string, rules []models.CategoryRule) (models.CategoryAssignment, bool)

	// Name returns the name of this strategy for logging and debugging purposes.
	Name() string
}
