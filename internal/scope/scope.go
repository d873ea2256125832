package scope

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/cashdesk-server/internal/apperr"
)

// Type selects which organizational axis a check runs against.
type Type int8

const (
	TypeLegalEntity Type = iota
	TypeOperatingUnit
)

func (t Type) String() string {
	if t == TypeOperatingUnit {
		return "operating_unit"
	}
	return "legal_entity"
}

// Access is the caller's resolved scope set. Resolution itself (RBAC) happens
// upstream; this package only carries the result through the request context
// and answers membership questions. A nil id slice means the caller is
// unrestricted on that axis.
type Access struct {
	LegalEntityIDs   []uuid.UUID
	OperatingUnitIDs []uuid.UUID
}

type contextKey struct{}

// WithAccess returns a context carrying the caller's scope set.
func WithAccess(ctx context.Context, access *Access) context.Context {
	return context.WithValue(ctx, contextKey{}, access)
}

// FromContext returns the scope set on the context, or nil when the request
// came in without one (internal callers, tests).
func FromContext(ctx context.Context) *Access {
	access, _ := ctx.Value(contextKey{}).(*Access)
	return access
}

func (a *Access) ids(scopeType Type) []uuid.UUID {
	if scopeType == TypeOperatingUnit {
		return a.OperatingUnitIDs
	}
	return a.LegalEntityIDs
}

// Assert fails with a 403-kinded error when the caller's scope does not cover
// scopeID. The label names the checked resource in the error message.
func (a *Access) Assert(scopeType Type, scopeID uuid.UUID, label string) error {
	if a == nil {
		return nil
	}
	allowed := a.ids(scopeType)
	if allowed == nil {
		return nil
	}
	for _, id := range allowed {
		if id == scopeID {
			return nil
		}
	}
	return apperr.ScopeDenied("access to %s of %s denied", scopeType, label)
}

// AllowedIDs returns the id set list queries must be restricted to, or nil
// when the caller is unrestricted on that axis. Storage filters turn a
// non-nil result into an IN predicate.
func (a *Access) AllowedIDs(scopeType Type) []uuid.UUID {
	if a == nil {
		return nil
	}
	return a.ids(scopeType)
}

// Assert is the package-level form working from the request context.
func Assert(ctx context.Context, scopeType Type, scopeID uuid.UUID, label string) error {
	return FromContext(ctx).Assert(scopeType, scopeID, label)
}
