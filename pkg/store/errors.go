package store

import "errors"

var (
	// ErrNotFound is returned when no row matches inside the caller's tenant.
	// A row owned by another organization is reported the same way.
	ErrNotFound = errors.New("record not found")
	// ErrTenantRequired is returned when an operation is attempted without an organization.
	ErrTenantRequired = errors.New("organization id is required")
	// ErrTenantMismatch is returned when a filter or entity names a different organization.
	ErrTenantMismatch = errors.New("organization id does not match the caller")
	// ErrImmutableField is returned when a patch touches identity or tenant columns.
	ErrImmutableField = errors.New("field is immutable")
)
