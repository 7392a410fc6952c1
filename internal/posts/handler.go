package posts

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-app/inkwell/internal/platform/httpx"
	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
)

// Handler wires the posts API. Each route passes through the ordered
// authorization pipeline: permission check, then ownership for the
// resource-scoped mutations.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
	ownership *rbac.OwnershipResolver
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacMW rbac.Middleware, ownership *rbac.OwnershipResolver) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		rbac:      rbacMW,
		ownership: ownership,
	}
}

// MountRoutes registers post routes. The caller mounts these behind the
// bearer authentication middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("posts:read"))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("posts:create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("posts:update"), h.rbac.RequireOwnership(h.ownership))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("posts:delete"), h.rbac.RequireOwnership(h.ownership))
		r.Delete("/{id}", h.delete)
	})
}

type postRequest struct {
	Title   string `json:"title" validate:"required,min=1"`
	Content string `json:"content" validate:"required,min=1"`
}

type listResponse struct {
	Posts []Post `json:"posts"`
}

type postResponse struct {
	Post *Post `json:"post"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())
	mineOnly := r.URL.Query().Get("mine") == "true"

	result, err := h.service.List(r.Context(), p, mineOnly)
	if err != nil {
		h.logger.Error("list posts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = []Post{}
	}
	httpx.JSON(w, http.StatusOK, listResponse{Posts: result})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())

	req, ok := h.decodePost(w, r)
	if !ok {
		return
	}
	post, err := h.service.Create(r.Context(), p, req.Title, req.Content)
	if err != nil {
		h.logger.Error("create post", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, postResponse{Post: post})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decodePost(w, r)
	if !ok {
		return
	}
	post, err := h.service.Update(r.Context(), p, id, req.Title, req.Content)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, postResponse{Post: post})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	p, _ := shared.PrincipalFromContext(r.Context())

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), p, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) decodePost(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "title and content required")
		return req, false
	}
	return req, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return 0, false
	}
	return id, true
}
