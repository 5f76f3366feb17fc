package driven

import (
	"abac-catalog-server/internal/core/domain"
)

// AttributeRegistry defines the interface for the user and resource
// attribute catalogs. Each namespace has its own name space; Create must
// serialize the duplicate check and the insert so that two concurrent
// creators of the same name cannot both succeed.
type AttributeRegistry interface {
	// Create allocates a fresh ID for name in ns and persists it.
	// Returns domain.ErrAlreadyExists if the name is taken in ns.
	Create(ns domain.AttributeNamespace, name string) (uint, error)
	// Resolve looks up the ID for name in ns.
	// Returns domain.ErrNotFound if no such attribute exists.
	Resolve(ns domain.AttributeNamespace, name string) (uint, error)
	// Get returns the attribute record for name in ns.
	Get(ns domain.AttributeNamespace, name string) (*domain.Attribute, error)
	// List returns all attributes registered in ns.
	List(ns domain.AttributeNamespace) ([]domain.Attribute, error)
}
