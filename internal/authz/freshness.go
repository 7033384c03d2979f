package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrIdentityGone indicates the identity behind a token no longer exists.
	ErrIdentityGone = errors.New("authz: identity no longer exists")
	// ErrRoleDrift indicates the persisted role differs from the token claim.
	ErrRoleDrift = errors.New("authz: persisted role differs from token claim")
)

// Reverifier re-checks a verified claim against the authoritative store.
// Tokens are stateless and outlive admin-driven role changes; this read-only
// check is the only mechanism that re-synchronizes authorization with the
// persisted role before a protected API handler runs.
type Reverifier interface {
	Reverify(ctx context.Context, userID uuid.UUID, claimed Role) error
}

// PGReverifier implements Reverifier against the users table.
type PGReverifier struct {
	pool *pgxpool.Pool
}

// NewPGReverifier constructs a PGReverifier.
func NewPGReverifier(pool *pgxpool.Pool) *PGReverifier {
	return &PGReverifier{pool: pool}
}

// Reverify looks the identity up by id and compares its current role with
// the claimed one. It never mutates anything.
func (r *PGReverifier) Reverify(ctx context.Context, userID uuid.UUID, claimed Role) error {
	var current int
	err := r.pool.QueryRow(ctx, `SELECT role FROM users WHERE id = $1`, userID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrIdentityGone
		}
		return fmt.Errorf("authz: reverify query: %w", err)
	}
	if Role(current) != claimed {
		return ErrRoleDrift
	}
	return nil
}

var _ Reverifier = (*PGReverifier)(nil)
