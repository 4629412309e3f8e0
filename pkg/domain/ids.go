// Package domain holds shared domain primitives: typed identifiers that make
// mixups between callers, resources, and seasons a compile error rather than
// a runtime surprise.
package domain

import (
	dErrors "registrar/pkg/domain-errors"
)

// Principal is the opaque identity of a caller or owner. Authentication is the
// host's job; by the time a Principal reaches this module it is assumed
// verified. Principals compare by exact string equality.
type Principal string

// Nil is the zero Principal.
const NilPrincipal Principal = ""

// ParsePrincipal validates an externally supplied principal string.
// Principals must be non-empty and at most 127 characters.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if len(s) > 127 {
		return NilPrincipal, dErrors.New(dErrors.CodeInvalidInput, "principal exceeds 127 characters")
	}
	return Principal(s), nil
}

// IsNil reports whether the principal is unset.
func (p Principal) IsNil() bool {
	return p == NilPrincipal
}

func (p Principal) String() string {
	return string(p)
}

// ResourceID identifies the externally provisioned compute unit backing a
// registered name. It is opaque to the engine; only the provisioner can
// interpret it.
type ResourceID string

// IsNil reports whether the resource id is unset.
func (r ResourceID) IsNil() bool {
	return r == ""
}

func (r ResourceID) String() string {
	return string(r)
}

// SeasonID identifies a registration season. IDs are assigned monotonically
// starting at 1 and never reused; 0 means "no season".
type SeasonID uint64

// IsNil reports whether the season id is unset.
func (s SeasonID) IsNil() bool {
	return s == 0
}
