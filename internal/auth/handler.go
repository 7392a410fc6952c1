package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/inkwell-app/inkwell/internal/platform/httpx"
)

// CookieConfig controls how the refresh token cookie is written.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
	MaxAge time.Duration
}

// Handler wires HTTP endpoints for the authentication flows. The refresh
// token travels only in an HTTP-only strict-same-site cookie; the access
// token only in response bodies and bearer headers.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	cookie    CookieConfig
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, cookie CookieConfig) *Handler {
	if cookie.Name == "" {
		cookie.Name = "inkwell_rt"
	}
	if cookie.Path == "" {
		cookie.Path = "/api/auth"
	}
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		cookie:    cookie,
	}
}

// MountRoutes registers auth routes on the provided router. Login carries
// its own tighter rate limit on top of the global one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(5, 15*time.Minute)).Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Post("/logout", h.handleLogout)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  userSummary `json:"user"`
}

type refreshResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "email and password required")
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh)
	httpx.JSON(w, http.StatusOK, loginResponse{
		Token: pair.Access,
		User:  userSummary{ID: user.ID, Name: user.Name, Role: user.Role},
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	_, pair, err := h.service.Refresh(r.Context(), h.refreshCookie(r))
	if err != nil {
		h.clearRefreshCookie(w)
		httpx.RespondError(w, err)
		return
	}

	h.setRefreshCookie(w, pair.Refresh)
	httpx.JSON(w, http.StatusOK, refreshResponse{Token: pair.Access})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context(), h.refreshCookie(r)); err != nil {
		h.logger.Warn("logout", slog.Any("error", err))
	}
	h.clearRefreshCookie(w)
	httpx.NoContent(w)
}

func (h *Handler) refreshCookie(r *http.Request) string {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		if !errors.Is(err, http.ErrNoCookie) && h.logger != nil {
			h.logger.Warn("read refresh cookie", slog.Any("error", err))
		}
		return ""
	}
	return cookie.Value
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     h.cookie.Path,
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
