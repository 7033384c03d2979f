package articles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/permissions"
	"github.com/factecho/factecho/internal/shared"
)

// ErrNotOwner is returned when an author mutates someone else's article.
var ErrNotOwner = errors.New("articles: not the author of this article")

// FlagStore exposes the author permission flags the service gates on.
type FlagStore interface {
	Get(ctx context.Context, userID uuid.UUID) (permissions.Flags, error)
}

// Service wraps article business rules. Content mutation is double-gated:
// the authz engine already confirmed the coarse role, and for authors the
// per-user permission flags plus ownership are checked here. Admins skip
// both fine-grained gates.
type Service struct {
	repo   *Repository
	flags  FlagStore
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo *Repository, flags FlagStore, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, flags: flags, cache: cache, logger: logger}
}

// List returns articles matching the filters with pagination metadata.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Article, shared.Pagination, error) {
	pagination := shared.NewPagination(filters.Page, filters.PerPage, 0)
	filters.Page = pagination.Page
	filters.PerPage = pagination.PerPage
	list, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(pagination.Page, pagination.PerPage, total), nil
}

// Latest returns the cached newest-articles listing.
func (s *Service) Latest(ctx context.Context, limit int) ([]Article, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.cache.FetchLatest(ctx, func(ctx context.Context) ([]Article, error) {
		list, _, err := s.repo.List(ctx, ListFilters{Page: 1, PerPage: limit})
		return list, err
	})
}

// Get fetches an article and records the view asynchronously via Redis.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Article, error) {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if err := s.cache.RecordView(ctx, id); err != nil {
		s.logger.Warn("record view", slog.Any("error", err))
	}
	return article, nil
}

// GetBySlug fetches an article by its slug and records the view.
func (s *Service) GetBySlug(ctx context.Context, slug string) (Article, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return Article{}, err
	}
	if err := s.cache.RecordView(ctx, article.ID); err != nil {
		s.logger.Warn("record view", slog.Any("error", err))
	}
	return article, nil
}

// Create inserts a new article authored by the acting identity.
func (s *Service) Create(ctx context.Context, actor authz.Identity, title, content, image string, categoryID uuid.UUID) (Article, error) {
	if err := s.gate(ctx, actor, permissions.ActionCreate); err != nil {
		return Article{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Article{}, fmt.Errorf("articles: title required")
	}
	article, err := s.repo.Create(ctx, Article{
		ID:         uuid.New(),
		Title:      title,
		Slug:       shared.Slugify(title),
		Content:    content,
		Image:      image,
		AuthorID:   actor.UserID,
		CategoryID: categoryID,
	})
	if err != nil {
		return Article{}, err
	}
	s.invalidate(ctx)
	return article, nil
}

// Update changes an article. Authors may only touch their own; admins may
// touch any (explicit policy choice, the flags gate still only binds
// authors).
func (s *Service) Update(ctx context.Context, actor authz.Identity, id uuid.UUID, title, content, image string, categoryID uuid.UUID) (Article, error) {
	if err := s.gate(ctx, actor, permissions.ActionUpdate); err != nil {
		return Article{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Article{}, err
	}
	if err := checkOwnership(actor, current); err != nil {
		return Article{}, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		title = current.Title
	}
	if content == "" {
		content = current.Content
	}
	if image == "" {
		image = current.Image
	}
	if categoryID == uuid.Nil {
		categoryID = current.CategoryID
	}

	updated := Article{
		ID:         id,
		Title:      title,
		Slug:       shared.Slugify(title),
		Content:    content,
		Image:      image,
		CategoryID: categoryID,
	}
	if err := s.repo.Update(ctx, updated); err != nil {
		return Article{}, err
	}
	s.invalidate(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes an article under the same gating rules as Update.
func (s *Service) Delete(ctx context.Context, actor authz.Identity, id uuid.UUID) error {
	if err := s.gate(ctx, actor, permissions.ActionDelete); err != nil {
		return err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := checkOwnership(actor, current); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Save stores an article in the reader's saved list.
func (s *Service) Save(ctx context.Context, userID, articleID uuid.UUID) error {
	if _, err := s.repo.Get(ctx, articleID); err != nil {
		return err
	}
	return s.repo.Save(ctx, userID, articleID)
}

// Unsave removes an article from the reader's saved list.
func (s *Service) Unsave(ctx context.Context, userID, articleID uuid.UUID) error {
	return s.repo.Unsave(ctx, userID, articleID)
}

// ListSaved returns the reader's saved articles.
func (s *Service) ListSaved(ctx context.Context, userID uuid.UUID) ([]Article, error) {
	return s.repo.ListSaved(ctx, userID)
}

// gate enforces the per-author permission flags. It binds only when the
// acting role is exactly author; a missing flags row denies everything.
func (s *Service) gate(ctx context.Context, actor authz.Identity, action string) error {
	if actor.Role != authz.RoleAuthor {
		return nil
	}
	flags, err := s.flags.Get(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if !flags.Allows(action) {
		return &PermissionDeniedError{Action: action}
	}
	return nil
}

func checkOwnership(actor authz.Identity, article Article) error {
	if actor.Role == authz.RoleAdmin {
		return nil
	}
	if article.AuthorID != actor.UserID {
		return ErrNotOwner
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate article cache", slog.Any("error", err))
	}
}
