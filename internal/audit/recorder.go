// Package audit stores and serves the audit trail. Events are produced by
// the auth and authz pipeline, travel through the job queue, and land in the
// audit_logs table here.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-app/inkwell/internal/shared"
)

// Recorder persists audit events into audit_logs.
type Recorder struct {
	pool *pgxpool.Pool
}

// NewRecorder returns a new Recorder.
func NewRecorder(pool *pgxpool.Pool) *Recorder {
	return &Recorder{pool: pool}
}

// Record persists one event.
func (r *Recorder) Record(ctx context.Context, event shared.AuditEvent) error {
	if r == nil || r.pool == nil {
		return errors.New("audit recorder not initialised")
	}
	if event.Action == "" || event.Outcome == "" {
		return errors.New("audit event requires action and outcome")
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	metaJSON, err := json.Marshal(event.Meta)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_logs (subject_id, role, action, outcome, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		event.Subject, event.Role, event.Action, event.Outcome, metaJSON, event.At)
	return err
}

// HandleRecordTask processes one queued audit event.
func (r *Recorder) HandleRecordTask(ctx context.Context, t *asynq.Task) error {
	var event shared.AuditEvent
	if err := json.Unmarshal(t.Payload(), &event); err != nil {
		return asynq.SkipRetry
	}
	return r.Record(ctx, event)
}
