// Package categorizer assigns categories to transaction descriptions using an
// ordered keyword rule table: an exact substring pass, then a fuzzy word
// overlap pass when the exact pass found nothing.
package categorizer

import (
	"sync"

	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/models"
)

// Engine runs the categorization strategies in order over a swappable rule table.
// It is safe for concurrent use.
type Engine struct {
	mu         sync.RWMutex
	rules      []models.CategoryRule
	strategies []CategorizationStrategy
	logger     logging.Logger
}

// NewEngine creates an engine with the exact strategy followed by a fuzzy
// strategy using threshold.
func NewEngine(rules []models.CategoryRule, threshold float64, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	e := &Engine{
		strategies: []CategorizationStrategy{
			NewExactMatchStrategy(),
			NewFuzzyMatchStrategy(threshold),
		},
		logger: logger,
	}
	e.SetRules(rules)
	return e
}

// SetRules replaces the rule table. The slice is copied.
func (e *Engine) SetRules(rules []models.CategoryRule) {
	copied := make([]models.CategoryRule, len(rules))
	copy(copied, rules)

	e.mu.Lock()
	e.rules = copied
	e.mu.Unlock()

	e.logger.Debug("Categorization rules loaded",
		logging.Field{Key: logging.FieldCount, Value: len(copied)})
}

// Rules returns a copy of the current rule table.
func (e *Engine) Rules() []models.CategoryRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]models.CategoryRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Categorize never fails: no match yields the UNCATEGORIZED sentinel.
func (e *Engine) Categorize(description string) models.CategoryAssignment {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, strategy := range e.strategies {
		if assignment, ok := strategy.Categorize(description, rules); ok {
			e.logger.WithFields(
				logging.Field{Key: "strategy", Value: strategy.Name()},
				logging.Field{Key: logging.FieldKeyword, Value: assignment.Keyword},
				logging.Field{Key: logging.FieldCategory, Value: assignment.Category},
				logging.Field{Key: logging.FieldConfidence, Value: assignment.Confidence},
			).Debug("Transaction categorized")
			return assignment
		}
	}
	return models.Uncategorized()
}

// CategorizeTransaction returns a copy of tx carrying its assignment.
func (e *Engine) CategorizeTransaction(tx models.Transaction) models.Transaction {
	return tx.WithCategory(e.Categorize(tx.Description))
}

// Categorize is the stateless form of Engine.Categorize.
func Categorize(description string, rules []models.CategoryRule, threshold float64) models.CategoryAssignment {
	for _, strategy := range []CategorizationStrategy{NewExactMatchStrategy(), NewFuzzyMatchStrategy(threshold)} {
		if assignment, ok := strategy.Categorize(description, rules); ok {
			return assignment
		}
	}
	return models.Uncategorized()
}
