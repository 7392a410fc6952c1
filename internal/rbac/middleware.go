package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-app/inkwell/internal/platform/httpx"
	"github.com/inkwell-app/inkwell/internal/shared"
)

// Middleware wires the authorization pipeline for HTTP handlers: an ordered
// chain of permission check, then (for resource-scoped routes) ownership
// check, each emitting one audit event per decision.
type Middleware struct {
	Matrix Matrix
	Audit  shared.AuditEmitter
	Logger *slog.Logger
}

// Require ensures the current principal's role grants action.
func (m Middleware) Require(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := shared.PrincipalFromContext(ctx)
			if !ok {
				m.emit(r, shared.NewAuditEvent("perm:"+action, shared.OutcomeNoPrincipal))
				httpx.RespondError(w, shared.ErrNoCredential)
				return
			}
			if !m.Matrix.Allowed(p.Role, action) {
				m.emit(r, shared.NewAuditEvent("perm:"+action, shared.OutcomeDenied).ForPrincipal(p))
				httpx.RespondError(w, shared.ErrPermissionDenied)
				return
			}
			m.emit(r, shared.NewAuditEvent("perm:"+action, shared.OutcomeSuccess).ForPrincipal(p))
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership gates a route on ownership of the resource identified by
// the {id} URL parameter. It must run after Require for the base action.
func (m Middleware) RequireOwnership(resolver *OwnershipResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			p, ok := shared.PrincipalFromContext(ctx)
			if !ok {
				httpx.RespondError(w, shared.ErrNoCredential)
				return
			}
			resourceID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				httpx.RespondError(w, shared.ErrNotFound)
				return
			}
			if err := resolver.Authorize(ctx, p, resourceID); err != nil {
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) emit(r *http.Request, event shared.AuditEvent) {
	if m.Audit == nil {
		return
	}
	m.Audit.Emit(r.Context(), event)
}
