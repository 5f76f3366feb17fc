package driven

import (
	"abac-catalog-server/internal/core/domain"
)

// AttributeValueRepository defines the interface for attribute value
// persistence in both namespaces. The subject ID is a role ID in the user
// namespace and a resource ID in the resource namespace.
type AttributeValueRepository interface {
	// SetValue writes the value for (subjectID, attrID) as an atomic
	// conditional upsert: insert when the key is absent, replace the value in
	// place when it is present. Never produces a second row for the key, even
	// under concurrent callers.
	SetValue(ns domain.AttributeNamespace, subjectID, attrID uint, value string) error
	// GetValue returns the current value for (subjectID, attrID).
	// Returns domain.ErrNotFound if no value has been granted.
	GetValue(ns domain.AttributeNamespace, subjectID, attrID uint) (string, error)
	// GetValues returns all of subject's values keyed by attribute name.
	GetValues(ns domain.AttributeNamespace, subjectID uint) (map[string]string, error)
	// CountValues returns the number of value rows for (subjectID, attrID).
	// The upsert invariant keeps this at most 1.
	CountValues(ns domain.AttributeNamespace, subjectID, attrID uint) (int64, error)
}
