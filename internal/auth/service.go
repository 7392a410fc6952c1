package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// Service wraps the authentication business rules: credential verification,
// token issuance, and the refresh rotation protocol.
type Service struct {
	repo     Repository
	codec    *Codec
	sessions *SessionStore
	audit    shared.AuditEmitter
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *Codec, sessions *SessionStore, audit shared.AuditEmitter) *Service {
	if audit == nil {
		audit = shared.NopAuditEmitter{}
	}
	return &Service{repo: repo, codec: codec, sessions: sessions, audit: audit}
}

// NormalizeEmail case-folds an identifier so login is case-insensitive.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// Login validates email/password credentials and starts a fresh session.
// Unknown email and wrong password produce the identical error; nothing in
// the response distinguishes which check failed.
func (s *Service) Login(ctx context.Context, email, password string) (*User, TokenPair, error) {
	if email == "" || password == "" {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeNoToken))
		return nil, TokenPair{}, shared.ErrNoCredential
	}

	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeBadCredential))
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeBadCredential))
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeBadCredential))
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeError).WithMeta("error", err.Error()))
		return nil, TokenPair{}, err
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("auth:login", shared.OutcomeSuccess).ForPrincipal(user.Principal()))
	return user, pair, nil
}

// Refresh runs the rotation protocol for a presented refresh token.
// Signature or expiry failures never touch session state: the token carrier
// was never attributable to a session. A validly signed token whose session
// id does not match the stored one is the replay signal; the subject's whole
// refresh chain is cleared and the attempt fails.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*User, TokenPair, error) {
	if refreshToken == "" {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeNoToken))
		return nil, TokenPair{}, shared.ErrNoCredential
	}

	claims, err := s.codec.Verify(refreshToken, KindRefresh)
	if err != nil {
		outcome := shared.OutcomeInvalidToken
		if errors.Is(err, shared.ErrTokenExpired) {
			outcome = shared.OutcomeExpiredToken
		}
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", outcome))
		return nil, TokenPair{}, err
	}

	subjectID, err := claims.SubjectID()
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeInvalidToken))
		return nil, TokenPair{}, err
	}

	user, err := s.repo.FindByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeNotFound).WithMeta("subject_id", subjectID))
			return nil, TokenPair{}, shared.ErrSubjectNotFound
		}
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeError).WithMeta("error", err.Error()))
		return nil, TokenPair{}, fmt.Errorf("auth: refresh lookup: %w", err)
	}

	next := uuid.NewString()
	rotated, err := s.sessions.Rotate(ctx, user.ID, claims.SessionID, next)
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeError).
			ForPrincipal(user.Principal()).WithMeta("error", err.Error()))
		return nil, TokenPair{}, err
	}
	if !rotated {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeReuseDetected).ForPrincipal(user.Principal()))
		return nil, TokenPair{}, shared.ErrReuseDetected
	}

	access, err := s.codec.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("auth: issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(user.ID, user.Role, next)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("auth: issue refresh token: %w", err)
	}

	s.audit.Emit(ctx, shared.NewAuditEvent("auth:refresh", shared.OutcomeSuccess).ForPrincipal(user.Principal()))
	return user, TokenPair{Access: access, Refresh: refresh}, nil
}

// Logout clears the subject's session. It always succeeds: an absent, bad,
// or expired token still results in a logged-out caller.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:logout", shared.OutcomeSuccess))
		return nil
	}
	claims, err := s.codec.Verify(refreshToken, KindRefresh)
	if err != nil {
		s.audit.Emit(ctx, shared.NewAuditEvent("auth:logout", shared.OutcomeSuccess))
		return nil
	}
	if subjectID, err := claims.SubjectID(); err == nil {
		if err := s.sessions.Clear(ctx, subjectID); err != nil {
			s.audit.Emit(ctx, shared.NewAuditEvent("auth:logout", shared.OutcomeError).WithMeta("error", err.Error()))
			return err
		}
	}
	s.audit.Emit(ctx, shared.NewAuditEvent("auth:logout", shared.OutcomeSuccess))
	return nil
}

func (s *Service) issuePair(ctx context.Context, user *User) (TokenPair, error) {
	sessionID := uuid.NewString()
	if err := s.sessions.Start(ctx, user.ID, sessionID); err != nil {
		return TokenPair{}, err
	}
	access, err := s.codec.IssueAccess(user.ID, user.Role)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefresh(user.ID, user.Role, sessionID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("auth: issue refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
