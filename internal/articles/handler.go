package articles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/platform/httpx"
	"github.com/factecho/factecho/internal/shared"
)

// Handler wires HTTP endpoints for articles.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers article routes on the provided router. The
// "/saved" routes must be declared before "/{articleId}" so chi resolves
// them first.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/latest", h.latest)
	r.Get("/saved", h.listSaved)
	r.Get("/slug/{slug}", h.getBySlug)
	r.Get("/{articleId}", h.get)
	r.Post("/", h.create)
	r.Patch("/{articleId}", h.update)
	r.Delete("/{articleId}", h.delete)
	r.Post("/{articleId}/save", h.save)
	r.Delete("/{articleId}/save", h.unsave)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("limit"))

	filters := ListFilters{
		Search:  q.Get("search"),
		SortBy:  q.Get("sort"),
		Page:    page,
		PerPage: perPage,
	}
	if raw := q.Get("category"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		filters.CategoryID = id
	}
	if raw := q.Get("author"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid author id")
			return
		}
		filters.AuthorID = id
	}

	list, pagination, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load articles")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{
		"articles":   list,
		"pagination": pagination,
	})
}

func (h *Handler) latest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list, err := h.service.Latest(r.Context(), limit)
	if err != nil {
		h.logger.Error("latest articles", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Failed to load articles")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"articles": list})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	article, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondErr(w, err, "get article")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"article": article})
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondErr(w, err, "get article by slug")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"article": article})
}

type articleRequest struct {
	Title      string `json:"title" validate:"required,min=3,max=200"`
	Content    string `json:"content" validate:"required"`
	Image      string `json:"image" validate:"omitempty,url"`
	CategoryID string `json:"categoryId" validate:"required,uuid4"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	var req articleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Title, content and a category are required")
		return
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	article, err := h.service.Create(r.Context(), *identity, req.Title, req.Content, req.Image, categoryID)
	if err != nil {
		h.respondErr(w, err, "create article")
		return
	}
	httpx.OK(w, http.StatusCreated, map[string]any{"article": article})
}

type articleUpdateRequest struct {
	Title      string `json:"title" validate:"omitempty,min=3,max=200"`
	Content    string `json:"content"`
	Image      string `json:"image" validate:"omitempty,url"`
	CategoryID string `json:"categoryId" validate:"omitempty,uuid4"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req articleUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid article fields")
		return
	}
	categoryID := uuid.Nil
	if req.CategoryID != "" {
		parsed, err := uuid.Parse(req.CategoryID)
		if err != nil {
			httpx.Fail(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		categoryID = parsed
	}

	article, err := h.service.Update(r.Context(), *identity, id, req.Title, req.Content, req.Image, categoryID)
	if err != nil {
		h.respondErr(w, err, "update article")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"article": article})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), *identity, id); err != nil {
		h.respondErr(w, err, "delete article")
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Save(r.Context(), identity.UserID, id); err != nil {
		h.respondErr(w, err, "save article")
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) unsave(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Unsave(r.Context(), identity.UserID, id); err != nil {
		h.respondErr(w, err, "unsave article")
		return
	}
	httpx.OK(w, http.StatusOK, nil)
}

func (h *Handler) listSaved(w http.ResponseWriter, r *http.Request) {
	identity := authz.IdentityFromContext(r.Context())
	if identity == nil {
		httpx.Fail(w, http.StatusUnauthorized, authz.MsgInvalidToken)
		return
	}
	list, err := h.service.ListSaved(r.Context(), identity.UserID)
	if err != nil {
		h.respondErr(w, err, "list saved articles")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"articles": list})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "articleId"))
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "Invalid article id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondErr(w http.ResponseWriter, err error, op string) {
	var denied *PermissionDeniedError
	switch {
	case errors.As(err, &denied):
		httpx.Fail(w, http.StatusForbidden, "You don't have permission to "+denied.Action+" articles")
	case errors.Is(err, ErrNotOwner):
		httpx.Fail(w, http.StatusForbidden, "You can only modify your own articles")
	case errors.Is(err, shared.ErrNotFound):
		httpx.Fail(w, http.StatusNotFound, "Article not found")
	case errors.Is(err, httpx.ErrDuplicate):
		httpx.Fail(w, http.StatusConflict, "An article with this title already exists")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "Something went wrong")
	}
}
