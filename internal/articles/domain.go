package articles

import (
	"time"

	"github.com/google/uuid"
)

// Article is a published piece of content.
type Article struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Image      string    `json:"image,omitempty"`
	AuthorID   uuid.UUID `json:"authorId"`
	CategoryID uuid.UUID `json:"categoryId"`
	Views      int64     `json:"views"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ListFilters narrows article listings.
type ListFilters struct {
	Search     string
	CategoryID uuid.UUID
	AuthorID   uuid.UUID
	SortBy     string
	Page       int
	PerPage    int
}

// PermissionDeniedError reports an author whose flags forbid an action.
type PermissionDeniedError struct {
	Action string
}

func (e *PermissionDeniedError) Error() string {
	return "articles: permission denied for " + e.Action
}
