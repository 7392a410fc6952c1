package rbac

import (
	"context"
	"errors"

	"github.com/inkwell-app/inkwell/internal/shared"
)

const ownershipAction = "ownership:check"

// OwnerLookup fetches the owner of a resource. Implementations return
// shared.ErrNotFound when the resource does not exist. Persistence itself is
// an external collaborator; only the owner id crosses this boundary.
type OwnerLookup interface {
	Owner(ctx context.Context, resourceID int64) (int64, error)
}

// OwnershipResolver decides whether a principal may act on a specific
// resource instance. It composes strictly after the permission check: the
// caller must already hold the base action before ownership is considered.
type OwnershipResolver struct {
	lookup OwnerLookup
	audit  shared.AuditEmitter
}

// NewOwnershipResolver constructs a resolver.
func NewOwnershipResolver(lookup OwnerLookup, audit shared.AuditEmitter) *OwnershipResolver {
	if audit == nil {
		audit = shared.NopAuditEmitter{}
	}
	return &OwnershipResolver{lookup: lookup, audit: audit}
}

// Authorize allows the principal through when it owns the resource.
// Admin bypasses the lookup entirely; the bypass is itself audited since it
// is a security-relevant fact.
func (r *OwnershipResolver) Authorize(ctx context.Context, p shared.Principal, resourceID int64) error {
	if p.Role == RoleAdmin {
		r.audit.Emit(ctx, shared.NewAuditEvent(ownershipAction, shared.OutcomeAdminBypass).ForPrincipal(p))
		return nil
	}

	ownerID, err := r.lookup.Owner(ctx, resourceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			r.audit.Emit(ctx, shared.NewAuditEvent(ownershipAction, shared.OutcomeNotFound).
				ForPrincipal(p).WithMeta("resource_id", resourceID))
			return shared.ErrNotFound
		}
		r.audit.Emit(ctx, shared.NewAuditEvent(ownershipAction, shared.OutcomeError).
			ForPrincipal(p).WithMeta("error", err.Error()))
		return err
	}

	if ownerID != p.SubjectID {
		r.audit.Emit(ctx, shared.NewAuditEvent(ownershipAction, shared.OutcomeNoOwnership).
			ForPrincipal(p).WithMeta("resource_id", resourceID))
		return shared.ErrNotOwner
	}

	r.audit.Emit(ctx, shared.NewAuditEvent(ownershipAction, shared.OutcomeSuccess).ForPrincipal(p))
	return nil
}
