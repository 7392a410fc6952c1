package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/inkwell-app/inkwell/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskAuditRecord is the task type carrying one audit event to storage.
	TaskAuditRecord = "audit:record"
)

// NewAuditRecordTask constructs an Asynq task from an audit event.
func NewAuditRecordTask(event shared.AuditEvent) (*asynq.Task, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAuditRecord, data), nil
}
