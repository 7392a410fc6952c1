package posts

import (
	"context"
	"errors"

	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
)

// Service handles post business logic. Authorization has already happened
// by the time these methods run; the service only applies the editor's
// own-content listing filter and records outcome events.
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

// List returns posts visible to the principal. Editors may restrict the
// listing to their own posts with mineOnly; everyone sees all posts by
// default.
func (s *Service) List(ctx context.Context, p shared.Principal, mineOnly bool) ([]Post, error) {
	var (
		result []Post
		err    error
	)
	if p.Role == rbac.RoleEditor && mineOnly {
		result, err = s.repo.ListByAuthor(ctx, p.SubjectID)
	} else {
		result, err = s.repo.List(ctx)
	}
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("post:read", shared.OutcomeError).ForPrincipal(p).WithMeta("error", err.Error()))
		return nil, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("post:read", shared.OutcomeSuccess).ForPrincipal(p).WithMeta("count", len(result)))
	return result, nil
}

// Create stores a new post authored by the principal.
func (s *Service) Create(ctx context.Context, p shared.Principal, title, content string) (*Post, error) {
	post, err := s.repo.Create(ctx, title, content, p.SubjectID)
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("post:create", shared.OutcomeError).ForPrincipal(p).WithMeta("error", err.Error()))
		return nil, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("post:create", shared.OutcomeSuccess).ForPrincipal(p).WithMeta("post_id", post.ID))
	return post, nil
}

// Update rewrites an existing post.
func (s *Service) Update(ctx context.Context, p shared.Principal, id int64, title, content string) (*Post, error) {
	post, err := s.repo.Update(ctx, id, title, content)
	if err != nil {
		outcome := shared.OutcomeError
		if errors.Is(err, shared.ErrNotFound) {
			outcome = shared.OutcomeNotFound
		}
		s.audit.Emit(ctx, shared.NewAuditEvent("post:update", outcome).ForPrincipal(p).WithMeta("post_id", id))
		return nil, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("post:update", shared.OutcomeSuccess).ForPrincipal(p).WithMeta("post_id", id))
	return post, nil
}

// Delete removes an existing post.
func (s *Service) Delete(ctx context.Context, p shared.Principal, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		outcome := shared.OutcomeError
		if errors.Is(err, shared.ErrNotFound) {
			outcome = shared.OutcomeNotFound
		}
		s.audit.Emit(ctx, shared.NewAuditEvent("post:delete", outcome).ForPrincipal(p).WithMeta("post_id", id))
		return err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("post:delete", shared.OutcomeSuccess).ForPrincipal(p).WithMeta("post_id", id))
	return nil
}
