package driving

import (
	"abac-catalog-server/internal/core/domain"
)

// PolicyCommands defines the driving interface of the policy command layer:
// the create/grant/revoke/drop operations issued by the statement-execution
// front-end. The implementation is stateless; all records live in the
// repositories behind the driven ports.
type PolicyCommands interface {
	// CreateUserAttribute registers a new attribute in the user namespace and
	// returns its ID. Fails with domain.ErrReservedName for names starting
	// with the reserved prefix and domain.ErrAlreadyExists for duplicates.
	CreateUserAttribute(name string) (uint, error)
	// CreateResourceAttribute is the resource-namespace counterpart of
	// CreateUserAttribute.
	CreateResourceAttribute(name string) (uint, error)

	// DropUserAttribute always fails with a domain.UnsupportedError naming
	// the attribute; attribute deletion is not supported in this version.
	DropUserAttribute(name string) error
	DropResourceAttribute(name string) error

	// GrantUserAttribute sets attribute=value for each named role and reports
	// a per-grantee outcome. An unknown role fails that grantee only; earlier
	// grantees keep their values. An unknown attribute fails the whole call
	// before any write.
	GrantUserAttribute(attribute string, grantees []string, value string) ([]domain.GrantOutcome, error)
	// GrantResourceAttribute is the resource counterpart, resolving grantee
	// names as resources.
	GrantResourceAttribute(attribute string, grantees []string, value string) ([]domain.GrantOutcome, error)

	// RevokeUserAttribute always fails with a domain.UnsupportedError
	// carrying the attribute name and value; revocation is not supported in
	// this version.
	RevokeUserAttribute(attribute, value string) error
	RevokeResourceAttribute(attribute, value string) error

	// CreateRule stores a named rule from user-side and resource-side clause
	// lists. Every clause attribute is resolved in its namespace before
	// anything is written; an unresolvable name fails the whole rule. A rule
	// with zero total clauses is rejected with domain.ErrInvalidInput.
	CreateRule(name string, userClauses, resourceClauses []domain.ClauseSpec) error
	// DropRule always fails with a domain.UnsupportedError naming the rule.
	DropRule(name string) error

	GetRule(name string) (*domain.Rule, error)
	ListRules() ([]*domain.Rule, error)
	// GetUserAttributes returns all attribute values granted to the role,
	// keyed by attribute name.
	GetUserAttributes(role string) (map[string]string, error)
	GetResourceAttributes(resource string) (map[string]string, error)
}
