package domain

import (
	"strings"
	"time"
)

// AttributeNamespace selects which attribute catalog a name resolves in.
// User attributes and resource attributes are independent namespaces: a user
// attribute and a resource attribute may share a name.
type AttributeNamespace string

const (
	NamespaceUser     AttributeNamespace = "user"
	NamespaceResource AttributeNamespace = "resource"
)

// ReservedAttributePrefix is the system-reserved attribute name prefix.
// User-defined attributes must not start with it.
const ReservedAttributePrefix = "pg_"

// IsReservedName reports whether name falls in the reserved namespace.
func IsReservedName(name string) bool {
	return strings.HasPrefix(name, ReservedAttributePrefix)
}

// Attribute is a named fact slot attachable to principals (user namespace)
// or resources (resource namespace). IDs are allocated by the registry that
// owns the attribute and are never reused.
type Attribute struct {
	ID        uint               `json:"id"`
	Name      string             `json:"name"`
	Namespace AttributeNamespace `json:"namespace"`
	CreatedAt time.Time          `json:"created_at"`
}

// AttributeValue is the current value of one attribute for one subject
// (a role ID in the user namespace, a resource ID in the resource
// namespace). At most one row exists per (SubjectID, AttributeID) pair.
type AttributeValue struct {
	SubjectID   uint   `json:"subject_id"`
	AttributeID uint   `json:"attribute_id"`
	Value       string `json:"value"`
}

// RuleClause is one stored predicate of a named rule: the attribute
// identified by AttributeID must equal Value. IsUserAttr records which
// namespace AttributeID resolves in.
type RuleClause struct {
	RuleName    string `json:"rule_name"`
	AttributeID uint   `json:"attribute_id"`
	IsUserAttr  bool   `json:"is_user_attr"`
	Value       string `json:"value"`
}

// Rule is a named policy unit: the set of all clause rows sharing RuleName.
// Its implied meaning is the conjunction of its clauses; this service stores
// rules and never evaluates them.
type Rule struct {
	Name    string       `json:"name"`
	Clauses []RuleClause `json:"clauses"`
}

// ClauseSpec is a caller-supplied clause: an attribute name (unresolved) and
// the value the rule requires for it.
type ClauseSpec struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// GrantOutcome is the per-grantee result of a batch grant. A grant call
// processes each grantee independently; a failure on one grantee never rolls
// back earlier grantees, so callers must inspect every outcome.
type GrantOutcome struct {
	Grantee string `json:"grantee"`
	Err     error  `json:"-"`
}

// Granted reports whether this grantee's value was written.
func (o GrantOutcome) Granted() bool {
	return o.Err == nil
}
