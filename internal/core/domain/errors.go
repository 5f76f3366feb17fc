package domain

import (
	"errors"
	"fmt"
)

// Common errors for the domain layer
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyExists       = errors.New("already exists")
	ErrReservedName        = errors.New("reserved name")
	ErrUndefinedObject     = errors.New("undefined object")
	ErrFeatureNotSupported = errors.New("feature not supported")
	ErrInvalidInput        = errors.New("invalid input")
)

// UnsupportedError is returned by operations that are permanently
// unsupported in this version (drop attribute, drop rule, revoke). It is a
// first-class value rather than bare control flow so callers can test for it
// and read back the names from the rejected request.
type UnsupportedError struct {
	Operation string // e.g. "DROP USER ATTRIBUTE"
	Object    string // attribute or rule name from the request
	Value     string // attempted value, where the request carried one
}

func (e *UnsupportedError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s is not supported in this version. Attribute: %q, Value: %q", e.Operation, e.Object, e.Value)
	}
	return fmt.Sprintf("%s is not supported in this version: %q", e.Operation, e.Object)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrFeatureNotSupported
}
