package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/factecho/factecho/internal/shared"
)

// Store is the persistence surface the service depends on.
type Store interface {
	Get(ctx context.Context, userID uuid.UUID) (Flags, error)
	CreateTx(ctx context.Context, tx pgx.Tx, flags Flags) error
	DeleteTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error
	Update(ctx context.Context, flags Flags) error
}

// Service wraps the author permission flag rules.
type Service struct {
	store Store
}

// NewService constructs a Service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get returns the flags for an author. A missing row is not an error: it
// yields the all-false zero value so a claimed author with no flags row can
// do nothing.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (Flags, error) {
	flags, err := s.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Flags{UserID: userID}, nil
		}
		return Flags{}, err
	}
	return flags, nil
}

// GrantDefaultTx creates the all-true flags row for a fresh author as part
// of the User->Author role transition.
func (s *Service) GrantDefaultTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	return s.store.CreateTx(ctx, tx, Flags{
		UserID:    userID,
		CanCreate: true,
		CanUpdate: true,
		CanDelete: true,
	})
}

// RevokeTx deletes the flags row as part of the Author->User transition.
func (s *Service) RevokeTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	return s.store.DeleteTx(ctx, tx, userID)
}

// Update replaces flag values for an existing author.
func (s *Service) Update(ctx context.Context, flags Flags) error {
	return s.store.Update(ctx, flags)
}
