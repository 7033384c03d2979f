package categories

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/platform/httpx"
	"github.com/factecho/factecho/internal/shared"
)

// Handler wires HTTP endpoints for categories. Reads are public; mutations
// were already gated to admins by the authz engine.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers category routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{categoryId}", h.get)
	r.Post("/", h.create)
	r.Patch("/{categoryId}", h.update)
	r.Delete("/{categoryId}", h.delete)
}

type categoryRequest struct {
	Title string `json:"title" validate:"required,min=2,max=80"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list categories", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"categories": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get category")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"category": category})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Create(r.Context(), req.Title)
	if err != nil {
		h.respondErr(w, err, "create category")
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"category": category})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	category, err := h.service.Update(r.Context(), id, req.Title)
	if err != nil {
		h.respondErr(w, err, "update category")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"category": category})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondErr(w, err, "delete category")
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (categoryRequest, bool) {
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Title must be between 2 and 80 characters")
		return req, false
	}
	return req, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "categoryId"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid category id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Fail(w, http.StatusConflict, "A category with this title already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
	}
}
