package shared

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Audit outcome vocabulary. Every decision point in the auth and authz
// pipeline emits exactly one event with one of these values.
const (
	OutcomeSuccess       = "success"
	OutcomeNoToken       = "fail_no_token"
	OutcomeNoPrincipal   = "fail_no_user"
	OutcomeInvalidToken  = "fail_invalid_token"
	OutcomeExpiredToken  = "fail_expired_token"
	OutcomeBadCredential = "fail_invalid_credentials"
	OutcomeDenied        = "fail_denied"
	OutcomeNotFound      = "fail_not_found"
	OutcomeNoOwnership   = "fail_no_ownership"
	OutcomeReuseDetected = "fail_reuse_detected"
	OutcomeAdminBypass   = "bypass_admin"
	OutcomeError         = "fail_error"
)

// AuditEvent is the structured record produced at every decision point.
// Subject and Role fall back to "unknown" when no principal was established.
type AuditEvent struct {
	At      time.Time      `json:"timestamp"`
	Subject string         `json:"subject_id"`
	Role    string         `json:"role"`
	Action  string         `json:"action"`
	Outcome string         `json:"outcome"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// AuditEmitter delivers audit events. Delivery and storage are external
// concerns; the core never interprets emitted events.
type AuditEmitter interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NewAuditEvent builds an event stamped with the current time.
func NewAuditEvent(action, outcome string) AuditEvent {
	return AuditEvent{
		At:      time.Now().UTC(),
		Subject: "unknown",
		Role:    "unknown",
		Action:  action,
		Outcome: outcome,
	}
}

// ForPrincipal attributes the event to an authenticated subject.
func (e AuditEvent) ForPrincipal(p Principal) AuditEvent {
	e.Subject = strconv.FormatInt(p.SubjectID, 10)
	e.Role = p.Role
	return e
}

// WithMeta attaches a context field to the event.
func (e AuditEvent) WithMeta(key string, value any) AuditEvent {
	if e.Meta == nil {
		e.Meta = make(map[string]any, 1)
	}
	e.Meta[key] = value
	return e
}

// LogAuditEmitter writes events as structured log lines.
type LogAuditEmitter struct {
	Logger *slog.Logger
}

// Emit implements AuditEmitter.
func (l LogAuditEmitter) Emit(ctx context.Context, event AuditEvent) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.Time("timestamp", event.At),
		slog.String("subject_id", event.Subject),
		slog.String("role", event.Role),
		slog.String("action", event.Action),
		slog.String("outcome", event.Outcome),
	}
	for k, v := range event.Meta {
		attrs = append(attrs, slog.Any(k, v))
	}
	logger.InfoContext(ctx, "audit", attrs...)
}

// MultiAuditEmitter fans an event out to several emitters.
type MultiAuditEmitter []AuditEmitter

// Emit implements AuditEmitter.
func (m MultiAuditEmitter) Emit(ctx context.Context, event AuditEvent) {
	for _, emitter := range m {
		if emitter != nil {
			emitter.Emit(ctx, event)
		}
	}
}

// NopAuditEmitter discards events. Useful in tests.
type NopAuditEmitter struct{}

// Emit implements AuditEmitter.
func (NopAuditEmitter) Emit(context.Context, AuditEvent) {}
