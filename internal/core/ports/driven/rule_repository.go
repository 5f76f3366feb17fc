package driven

import (
	"abac-catalog-server/internal/core/domain"
)

// RuleRepository defines the interface for ABAC rule persistence. A rule is
// the batch of clause rows sharing its name.
type RuleRepository interface {
	// CreateRule persists all clause rows of a new rule as one atomic batch:
	// either every row becomes visible or none does. The duplicate-name check
	// and the inserts execute inside the same transaction. Returns
	// domain.ErrAlreadyExists if a rule with this name exists; in that case
	// nothing is written.
	CreateRule(name string, clauses []domain.RuleClause) error
	// GetRule returns the named rule with all of its clauses.
	// Returns domain.ErrNotFound if no clause row carries the name.
	GetRule(name string) (*domain.Rule, error)
	// ListRules returns all stored rules.
	ListRules() ([]*domain.Rule, error)
}
