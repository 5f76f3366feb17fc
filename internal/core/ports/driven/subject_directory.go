package driven

// SubjectDirectory resolves grantee names to identifiers: role names for
// user-attribute grants, resource names for resource-attribute grants. It
// stands in for the system catalogs (principals, relations) that own those
// identities.
type SubjectDirectory interface {
	CreateRole(name string) (uint, error)
	// ResolveRole returns the role's ID, or domain.ErrNotFound.
	ResolveRole(name string) (uint, error)
	CreateResource(name string) (uint, error)
	// ResolveResource returns the resource's ID, or domain.ErrNotFound.
	ResolveResource(name string) (uint, error)
}
