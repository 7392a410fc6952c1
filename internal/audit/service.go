package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inkwell-app/inkwell/internal/shared"
)

const (
	defaultPageSize = 20
	maxPageSize     = 50
)

// TimelineFilters narrows the audit listing.
type TimelineFilters struct {
	Subject  string
	Action   string
	Outcome  string
	Page     int
	PageSize int
}

// Result wraps timeline rows with paging information.
type Result struct {
	Events  []shared.AuditEvent
	Page    int
	HasNext bool
}

// Service reads back stored audit events for operator review.
type Service struct {
	pool *pgxpool.Pool
}

// NewService builds a Service instance.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Timeline returns stored events, newest first, with paging.
func (s *Service) Timeline(ctx context.Context, filters TimelineFilters) (Result, error) {
	if s == nil || s.pool == nil {
		return Result{}, fmt.Errorf("audit: service not configured")
	}
	pageSize := filters.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	rows, err := s.pool.Query(ctx, `
		SELECT subject_id, role, action, outcome, meta, occurred_at
		FROM audit_logs
		WHERE ($1 = '' OR subject_id = $1)
		  AND ($2 = '' OR action = $2)
		  AND ($3 = '' OR outcome = $3)
		ORDER BY occurred_at DESC
		OFFSET $4 LIMIT $5`,
		filters.Subject, filters.Action, filters.Outcome, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	var events []shared.AuditEvent
	for rows.Next() {
		var (
			event    shared.AuditEvent
			metaJSON []byte
			at       time.Time
		)
		if err := rows.Scan(&event.Subject, &event.Role, &event.Action, &event.Outcome, &metaJSON, &at); err != nil {
			return Result{}, err
		}
		event.At = at
		if len(metaJSON) > 0 {
			_ = json.Unmarshal(metaJSON, &event.Meta)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	hasNext := len(events) > pageSize
	if hasNext {
		events = events[:pageSize]
	}
	return Result{Events: events, Page: page, HasNext: hasNext}, nil
}
