package users

import (
	"context"
	"errors"

	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
)

// ErrInvalidRole indicates a role name outside the fixed enumeration.
var ErrInvalidRole = errors.New("invalid role")

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	ListUsers(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id int64, role string) (*User, error)
}

// Service handles user management business logic.
type Service struct {
	repo  RepositoryPort
	audit shared.AuditEmitter
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, audit shared.AuditEmitter) *Service {
	if audit == nil {
		audit = shared.NopAuditEmitter{}
	}
	return &Service{repo: repo, audit: audit}
}

// ListUsers returns all users.
func (s *Service) ListUsers(ctx context.Context, p shared.Principal) ([]User, error) {
	result, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("users:read", shared.OutcomeError).ForPrincipal(p).WithMeta("error", err.Error()))
		return nil, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("users:read", shared.OutcomeSuccess).ForPrincipal(p).WithMeta("count", len(result)))
	return result, nil
}

// UpdateRole changes a user's role after validating the role name against
// the fixed enumeration.
func (s *Service) UpdateRole(ctx context.Context, p shared.Principal, id int64, role string) (*User, error) {
	if !rbac.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	user, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		outcome := shared.OutcomeError
		if errors.Is(err, shared.ErrNotFound) {
			outcome = shared.OutcomeNotFound
		}
		s.audit.Emit(ctx, shared.NewAuditEvent("users:role:update", outcome).ForPrincipal(p).WithMeta("target_user_id", id))
		return nil, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("users:role:update", shared.OutcomeSuccess).
		ForPrincipal(p).WithMeta("target_user_id", id).WithMeta("new_role", role))
	return user, nil
}
