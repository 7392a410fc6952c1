package e2e

import (
	"context"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"

	jobmetrics "github.com/inkwell-app/inkwell/internal/jobs"
	"github.com/inkwell-app/inkwell/internal/shared"
	"github.com/inkwell-app/inkwell/jobs"
)

func counterValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metric:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				if want, ok := labels[pair.GetName()]; ok && want != pair.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestAuditTaskMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)

	var handled []shared.AuditEvent
	handler := jobs.TrackHandler(metrics, jobs.TaskAuditRecord, func(_ context.Context, task *asynq.Task) error {
		handled = append(handled, shared.AuditEvent{})
		return nil
	})

	task, err := jobs.NewAuditRecordTask(shared.NewAuditEvent("auth:login", shared.OutcomeSuccess))
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := handler(context.Background(), task); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(handled) != 1 {
		t.Fatalf("handled = %d, want 1", len(handled))
	}

	got := counterValue(t, registry, "inkwell_jobs_total", map[string]string{
		"job":    jobs.TaskAuditRecord,
		"status": "success",
	})
	if got != 1 {
		t.Fatalf("success runs = %v, want 1", got)
	}
}

func TestAuditTaskMetricsFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(registry)

	handler := jobs.TrackHandler(metrics, jobs.TaskAuditRecord, func(context.Context, *asynq.Task) error {
		return context.DeadlineExceeded
	})

	task, err := jobs.NewAuditRecordTask(shared.NewAuditEvent("auth:login", shared.OutcomeError))
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if err := handler(context.Background(), task); err == nil {
		t.Fatal("expected the handler error back")
	}

	if got := counterValue(t, registry, "inkwell_jobs_failures_total", map[string]string{"job": jobs.TaskAuditRecord}); got != 1 {
		t.Fatalf("failures = %v, want 1", got)
	}
	if got := counterValue(t, registry, "inkwell_jobs_total", map[string]string{"status": "failure"}); got != 1 {
		t.Fatalf("failure runs = %v, want 1", got)
	}
}
