package categories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/factecho/factecho/internal/shared"
)

// Service wraps category rules.
type Service struct {
	repo *Repository
}

// NewService constructs a Service.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// List returns all categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

// Get fetches one category.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a category with a derived slug.
func (s *Service) Create(ctx context.Context, title string) (Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Category{}, errors.New("categories: title required")
	}
	return s.repo.Create(ctx, Category{
		ID:    uuid.New(),
		Title: title,
		Slug:  shared.Slugify(title),
	})
}

// Update renames a category, refreshing the slug.
func (s *Service) Update(ctx context.Context, id uuid.UUID, title string) (Category, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Category{}, errors.New("categories: title required")
	}
	c := Category{ID: id, Title: title, Slug: shared.Slugify(title)}
	if err := s.repo.Update(ctx, c); err != nil {
		return Category{}, err
	}
	return s.repo.Get(ctx, id)
}

// Delete removes a category.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
