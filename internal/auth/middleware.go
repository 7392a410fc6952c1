package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/inkwell-app/inkwell/internal/platform/httpx"
	"github.com/inkwell-app/inkwell/internal/shared"
)

const verifyAction = "auth:verify"

// Middleware authenticates requests from the Authorization bearer header and
// attaches the resulting principal to the request context. Verification is
// purely cryptographic; no session state is consulted for access tokens.
type Middleware struct {
	Codec  *Codec
	Audit  shared.AuditEmitter
	Logger *slog.Logger
}

// Authenticate wraps a handler with bearer token verification.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := bearerToken(r)
		if token == "" {
			m.emit(r, shared.NewAuditEvent(verifyAction, shared.OutcomeNoToken))
			httpx.RespondError(w, shared.ErrNoCredential)
			return
		}

		claims, err := m.Codec.Verify(token, KindAccess)
		if err != nil {
			outcome := shared.OutcomeInvalidToken
			if errors.Is(err, shared.ErrTokenExpired) {
				outcome = shared.OutcomeExpiredToken
			}
			m.emit(r, shared.NewAuditEvent(verifyAction, outcome))
			httpx.RespondError(w, err)
			return
		}

		subjectID, err := claims.SubjectID()
		if err != nil {
			m.emit(r, shared.NewAuditEvent(verifyAction, shared.OutcomeInvalidToken))
			httpx.RespondError(w, err)
			return
		}

		principal := shared.Principal{SubjectID: subjectID, Role: claims.Role}
		m.emit(r, shared.NewAuditEvent(verifyAction, shared.OutcomeSuccess).ForPrincipal(principal))
		next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(ctx, principal)))
	})
}

func (m Middleware) emit(r *http.Request, event shared.AuditEvent) {
	if m.Audit == nil {
		return
	}
	m.Audit.Emit(r.Context(), event)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
