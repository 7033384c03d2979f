package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/platform/httpx"
	"github.com/factecho/factecho/internal/shared"
	"github.com/factecho/factecho/internal/token"
	"github.com/factecho/factecho/internal/users"
)

// RefreshTokenCookie carries the long-lived refresh credential.
const RefreshTokenCookie = "refresh_token"

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *token.Manager
	secure    bool
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. secure controls the cookie
// Secure attribute and should be true in production.
func NewHandler(logger *slog.Logger, service *Service, tokens *token.Manager, secure bool) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		secure:    secure,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Post("/refresh", h.refresh)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Name, a valid email and a password of at least 8 characters are required")
		return
	}

	user, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			httpx.Fail(w, http.StatusConflict, "Email already registered")
			return
		}
		h.logger.Error("register", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.issueTokens(w, user)
	httpx.OK(w, http.StatusCreated, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.issueTokens(w, user)
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, authz.AccessTokenCookie)
	h.clearCookie(w, RefreshTokenCookie)
	httpx.OK(w, http.StatusOK, nil)
}

// refresh mints a fresh access token from a valid refresh credential. The
// new token carries the role currently persisted, so a stale claim heals
// here after an admin changed the role. Failure modes are deliberately
// split: a bad or expired refresh credential is 401 (full re-login), a
// store fault is 500 (client may retry).
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	raw := ""
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		raw = cookie.Value
	}
	if raw == "" {
		httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	claim, err := h.tokens.Verify(raw)
	if err != nil {
		h.clearCookie(w, authz.AccessTokenCookie)
		h.clearCookie(w, RefreshTokenCookie)
		httpx.Fail(w, http.StatusUnauthorized, "Invalid or expired refresh token")
		return
	}

	user, err := h.service.Lookup(r.Context(), claim.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.clearCookie(w, authz.AccessTokenCookie)
			h.clearCookie(w, RefreshTokenCookie)
			httpx.Fail(w, http.StatusUnauthorized, "Account no longer exists")
			return
		}
		h.logger.Error("refresh lookup", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	h.issueTokens(w, user)
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) issueTokens(w http.ResponseWriter, user users.User) {
	identity := authz.Identity{UserID: user.ID, Role: user.Role}

	access, err := h.tokens.GenerateAccess(identity)
	if err != nil {
		h.logger.Error("sign access token", slog.Any("error", err))
		return
	}
	refresh, err := h.tokens.GenerateRefresh(identity)
	if err != nil {
		h.logger.Error("sign refresh token", slog.Any("error", err))
		return
	}

	h.setCookie(w, authz.AccessTokenCookie, access, h.tokens.AccessTTL())
	h.setCookie(w, RefreshTokenCookie, refresh, h.tokens.RefreshTTL())
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(ttl),
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
