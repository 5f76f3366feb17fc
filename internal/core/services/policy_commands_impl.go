package services

import (
	"errors"
	"fmt"

	"abac-catalog-server/internal/core/domain"
	"abac-catalog-server/internal/core/ports/driven"
	"abac-catalog-server/internal/core/ports/driving"
)

// PolicyCommandsImpl implements the PolicyCommands interface. It holds no
// state of its own between calls; every record is owned by the repositories.
type PolicyCommandsImpl struct {
	registry  driven.AttributeRegistry
	values    driven.AttributeValueRepository
	rules     driven.RuleRepository
	directory driven.SubjectDirectory
}

// NewPolicyCommands creates a new PolicyCommandsImpl.
func NewPolicyCommands(
	registry driven.AttributeRegistry,
	values driven.AttributeValueRepository,
	rules driven.RuleRepository,
	directory driven.SubjectDirectory,
) driving.PolicyCommands {
	return &PolicyCommandsImpl{
		registry:  registry,
		values:    values,
		rules:     rules,
		directory: directory,
	}
}

// createAttribute registers name in ns after the reserved-namespace check.
// Permission checks on the caller are deferred in this version.
func (s *PolicyCommandsImpl) createAttribute(ns domain.AttributeNamespace, name string) (uint, error) {
	if name == "" {
		return 0, fmt.Errorf("attribute name cannot be empty: %w", domain.ErrInvalidInput)
	}
	if domain.IsReservedName(name) {
		return 0, fmt.Errorf("attribute name %q is reserved: names starting with %q are reserved: %w",
			name, domain.ReservedAttributePrefix, domain.ErrReservedName)
	}

	id, err := s.registry.Create(ns, name)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return 0, fmt.Errorf("ABAC %s attribute %q already exists: %w", ns, name, domain.ErrAlreadyExists)
		}
		return 0, fmt.Errorf("failed to create %s attribute %q: %w", ns, name, err)
	}
	return id, nil
}

func (s *PolicyCommandsImpl) CreateUserAttribute(name string) (uint, error) {
	return s.createAttribute(domain.NamespaceUser, name)
}

func (s *PolicyCommandsImpl) CreateResourceAttribute(name string) (uint, error) {
	return s.createAttribute(domain.NamespaceResource, name)
}

func (s *PolicyCommandsImpl) DropUserAttribute(name string) error {
	return &domain.UnsupportedError{Operation: "DROP USER ATTRIBUTE", Object: name}
}

func (s *PolicyCommandsImpl) DropResourceAttribute(name string) error {
	return &domain.UnsupportedError{Operation: "DROP RESOURCE ATTRIBUTE", Object: name}
}

// resolveAttribute maps an attribute name to its ID, translating the
// repository's not-found into an undefined-object error naming the
// attribute.
func (s *PolicyCommandsImpl) resolveAttribute(ns domain.AttributeNamespace, name string) (uint, error) {
	id, err := s.registry.Resolve(ns, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%s attribute %q does not exist: %w", ns, name, domain.ErrUndefinedObject)
		}
		return 0, fmt.Errorf("failed to resolve %s attribute %q: %w", ns, name, err)
	}
	return id, nil
}

// grant runs the per-grantee loop shared by both grant operations. The
// attribute must already exist; the grantor is expected to have created it
// first. Grantees are processed independently and earlier successes are not
// rolled back when a later grantee fails.
func (s *PolicyCommandsImpl) grant(
	ns domain.AttributeNamespace,
	attribute string,
	grantees []string,
	value string,
	resolve func(string) (uint, error),
	kind string,
) ([]domain.GrantOutcome, error) {
	attrID, err := s.resolveAttribute(ns, attribute)
	if err != nil {
		return nil, err
	}

	outcomes := make([]domain.GrantOutcome, 0, len(grantees))
	for _, grantee := range grantees {
		subjectID, err := resolve(grantee)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = fmt.Errorf("%s %q does not exist: %w", kind, grantee, domain.ErrUndefinedObject)
			}
			outcomes = append(outcomes, domain.GrantOutcome{Grantee: grantee, Err: err})
			continue
		}
		if err := s.values.SetValue(ns, subjectID, attrID, value); err != nil {
			err = fmt.Errorf("failed to set %s attribute %q for %q: %w", ns, attribute, grantee, err)
			outcomes = append(outcomes, domain.GrantOutcome{Grantee: grantee, Err: err})
			continue
		}
		outcomes = append(outcomes, domain.GrantOutcome{Grantee: grantee})
	}
	return outcomes, nil
}

func (s *PolicyCommandsImpl) GrantUserAttribute(attribute string, grantees []string, value string) ([]domain.GrantOutcome, error) {
	return s.grant(domain.NamespaceUser, attribute, grantees, value, s.directory.ResolveRole, "role")
}

func (s *PolicyCommandsImpl) GrantResourceAttribute(attribute string, grantees []string, value string) ([]domain.GrantOutcome, error) {
	return s.grant(domain.NamespaceResource, attribute, grantees, value, s.directory.ResolveResource, "resource")
}

func (s *PolicyCommandsImpl) RevokeUserAttribute(attribute, value string) error {
	return &domain.UnsupportedError{Operation: "REVOKE USER ATTRIBUTE", Object: attribute, Value: value}
}

func (s *PolicyCommandsImpl) RevokeResourceAttribute(attribute, value string) error {
	return &domain.UnsupportedError{Operation: "REVOKE RESOURCE ATTRIBUTE", Object: attribute, Value: value}
}

// CreateRule resolves every clause attribute up front, then hands the
// complete clause batch to the repository, which writes it inside one
// transaction. A partially-created rule is therefore never visible to
// duplicate-name checks or to consumers of the rule store.
func (s *PolicyCommandsImpl) CreateRule(name string, userClauses, resourceClauses []domain.ClauseSpec) error {
	if name == "" {
		return fmt.Errorf("rule name cannot be empty: %w", domain.ErrInvalidInput)
	}
	if len(userClauses)+len(resourceClauses) == 0 {
		return fmt.Errorf("ABAC rule %q has no clauses: %w", name, domain.ErrInvalidInput)
	}

	clauses := make([]domain.RuleClause, 0, len(userClauses)+len(resourceClauses))
	for _, spec := range userClauses {
		attrID, err := s.resolveAttribute(domain.NamespaceUser, spec.Attribute)
		if err != nil {
			return err
		}
		clauses = append(clauses, domain.RuleClause{
			RuleName:    name,
			AttributeID: attrID,
			IsUserAttr:  true,
			Value:       spec.Value,
		})
	}
	for _, spec := range resourceClauses {
		attrID, err := s.resolveAttribute(domain.NamespaceResource, spec.Attribute)
		if err != nil {
			return err
		}
		clauses = append(clauses, domain.RuleClause{
			RuleName:    name,
			AttributeID: attrID,
			IsUserAttr:  false,
			Value:       spec.Value,
		})
	}

	if err := s.rules.CreateRule(name, clauses); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return fmt.Errorf("ABAC rule %q already exists: %w", name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create ABAC rule %q: %w", name, err)
	}
	return nil
}

func (s *PolicyCommandsImpl) DropRule(name string) error {
	return &domain.UnsupportedError{Operation: "DROP ABAC RULE", Object: name}
}

func (s *PolicyCommandsImpl) GetRule(name string) (*domain.Rule, error) {
	rule, err := s.rules.GetRule(name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("ABAC rule %q does not exist: %w", name, domain.ErrUndefinedObject)
		}
		return nil, err
	}
	return rule, nil
}

func (s *PolicyCommandsImpl) ListRules() ([]*domain.Rule, error) {
	return s.rules.ListRules()
}

func (s *PolicyCommandsImpl) GetUserAttributes(role string) (map[string]string, error) {
	roleID, err := s.directory.ResolveRole(role)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("role %q does not exist: %w", role, domain.ErrUndefinedObject)
		}
		return nil, err
	}
	return s.values.GetValues(domain.NamespaceUser, roleID)
}

func (s *PolicyCommandsImpl) GetResourceAttributes(resource string) (map[string]string, error) {
	resourceID, err := s.directory.ResolveResource(resource)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("resource %q does not exist: %w", resource, domain.ErrUndefinedObject)
		}
		return nil, err
	}
	return s.values.GetValues(domain.NamespaceResource, resourceID)
}
