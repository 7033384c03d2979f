package permissions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/factecho/factecho/internal/shared"
)

// Repository provides PostgreSQL backed persistence for author flags.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Get fetches the flags row for a user. Missing rows map to ErrNotFound;
// the service layer turns that into the fail-closed default.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (Flags, error) {
	var flags Flags
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, can_create, can_update, can_delete FROM author_permissions WHERE user_id = $1`,
		userID).Scan(&flags.UserID, &flags.CanCreate, &flags.CanUpdate, &flags.CanDelete)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Flags{}, shared.ErrNotFound
		}
		return Flags{}, err
	}
	return flags, nil
}

// CreateTx inserts a flags row inside the role-transition transaction.
// Re-inserts are idempotent since flags derive from the current role.
func (r *Repository) CreateTx(ctx context.Context, tx pgx.Tx, flags Flags) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO author_permissions (user_id, can_create, can_update, can_delete)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET can_create = EXCLUDED.can_create, can_update = EXCLUDED.can_update, can_delete = EXCLUDED.can_delete`,
		flags.UserID, flags.CanCreate, flags.CanUpdate, flags.CanDelete)
	return err
}

// DeleteTx removes the flags row inside the role-transition transaction.
func (r *Repository) DeleteTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM author_permissions WHERE user_id = $1`, userID)
	return err
}

// Update replaces the flag values for an existing author.
func (r *Repository) Update(ctx context.Context, flags Flags) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE author_permissions SET can_create = $1, can_update = $2, can_delete = $3 WHERE user_id = $4`,
		flags.CanCreate, flags.CanUpdate, flags.CanDelete, flags.UserID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
