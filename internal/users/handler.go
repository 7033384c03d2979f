package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/permissions"
	"github.com/factecho/factecho/internal/platform/httpx"
	"github.com/factecho/factecho/internal/shared"
)

// Handler wires HTTP endpoints for account management. Coarse role checks
// already happened in the authz engine before these run.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	perms     *permissions.Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, perms *permissions.Service) *Handler {
	return &Handler{logger: logger, service: service, perms: perms, validator: validator.New()}
}

// MountRoutes registers user routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/me", h.me)
	r.Get("/{userId}", h.get)
	r.Delete("/{userId}", h.delete)
	r.Patch("/{userId}/role", h.updateRole)
	r.Get("/{userId}/permissions", h.getPermissions)
	r.Patch("/{userId}/permissions", h.updatePermissions)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, pagination, err := h.service.List(r.Context(), r.URL.Query().Get("search"), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load users")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"users":      list,
		"pagination": pagination,
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	user, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		h.respondErr(w, err, "load current user")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get user")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

type updateRoleRequest struct {
	Role int `json:"role" validate:"required,min=1,max=3"`
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}

	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Role must be between 1 and 3")
		return
	}
	role, err := authz.ParseRole(req.Role)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Unknown role")
		return
	}

	user, err := h.service.UpdateRole(r.Context(), identity.UserID, id, role)
	if err != nil {
		h.respondErr(w, err, "update role")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		h.respondErr(w, err, "delete user")
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) getPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	flags, err := h.perms.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get permissions")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"permissions": flags})
}

type updatePermissionsRequest struct {
	Create *bool `json:"create" validate:"required"`
	Update *bool `json:"update" validate:"required"`
	Delete *bool `json:"delete" validate:"required"`
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "All three permission flags are required")
		return
	}
	flags := permissions.Flags{
		UserID:    id,
		CanCreate: *req.Create,
		CanUpdate: *req.Update,
		CanDelete: *req.Delete,
	}
	if err := h.perms.Update(r.Context(), flags); err != nil {
		h.respondErr(w, err, "update permissions")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"permissions": flags})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid user id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, authz.MsgUserGone)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
}
