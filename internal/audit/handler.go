package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-app/inkwell/internal/platform/httpx"
	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
)

// Handler serves the audit timeline to administrators.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbacMW}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("users:manage"))
		r.Get("/", h.timeline)
	})
}

type timelineResponse struct {
	Events  []shared.AuditEvent `json:"events"`
	Page    int                 `json:"page"`
	HasNext bool                `json:"has_next"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))

	result, err := h.service.Timeline(r.Context(), TimelineFilters{
		Subject: query.Get("subject"),
		Action:  query.Get("action"),
		Outcome: query.Get("outcome"),
		Page:    page,
	})
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result.Events == nil {
		result.Events = []shared.AuditEvent{}
	}
	httpx.JSON(w, http.StatusOK, timelineResponse{Events: result.Events, Page: result.Page, HasNext: result.HasNext})
}
