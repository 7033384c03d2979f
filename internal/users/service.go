package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/permissions"
	"github.com/factecho/factecho/internal/platform/db"
	"github.com/factecho/factecho/internal/shared"
)

// Service wraps account management rules.
type Service struct {
	repo        *Repository
	perms       *permissions.Service
	auditLogger *shared.AuditLogger
	logger      *slog.Logger
}

// NewService constructs a Service.
func NewService(repo *Repository, perms *permissions.Service, auditLogger *shared.AuditLogger, logger *slog.Logger) *Service {
	return &Service{repo: repo, perms: perms, auditLogger: auditLogger, logger: logger}
}

// List returns users with pagination metadata.
func (s *Service) List(ctx context.Context, search string, page, perPage int) ([]User, shared.Pagination, error) {
	pagination := shared.NewPagination(page, perPage, 0)
	list, total, err := s.repo.List(ctx, search, pagination.PerPage, pagination.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return list, shared.NewPagination(pagination.Page, pagination.PerPage, total), nil
}

// Get fetches a single user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateRole performs the admin-driven role transition. The role write and
// the permission-flag adjustment commit or roll back together:
// User->Author grants the all-true flags row, Author->User deletes it.
func (s *Service) UpdateRole(ctx context.Context, actorID, userID uuid.UUID, role authz.Role) (User, error) {
	if !role.Valid() {
		return User{}, fmt.Errorf("users: invalid role %d", int(role))
	}
	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if current.Role == role {
		return current, nil
	}

	err = db.WithTx(ctx, s.repo.Pool(), func(tx pgx.Tx) error {
		if err := s.repo.UpdateRole(ctx, tx, userID, role); err != nil {
			return err
		}
		if role == authz.RoleAuthor && current.Role != authz.RoleAuthor {
			return s.perms.GrantDefaultTx(ctx, tx, userID)
		}
		if current.Role == authz.RoleAuthor && role != authz.RoleAuthor {
			return s.perms.RevokeTx(ctx, tx, userID)
		}
		return nil
	})
	if err != nil {
		return User{}, err
	}

	if err := s.auditLogger.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "user.role_change",
		Entity:   "user",
		EntityID: userID.String(),
		Meta: map[string]any{
			"from": current.Role.String(),
			"to":   role.String(),
		},
	}); err != nil {
		s.logger.Warn("audit role change", slog.Any("error", err))
	}

	current.Role = role
	return current, nil
}

// Delete removes an account.
func (s *Service) Delete(ctx context.Context, actorID, userID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := s.auditLogger.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "user.delete",
		Entity:   "user",
		EntityID: userID.String(),
	}); err != nil {
		s.logger.Warn("audit user delete", slog.Any("error", err))
	}
	return nil
}
