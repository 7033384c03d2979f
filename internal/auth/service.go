package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/shared"
	"github.com/factecho/factecho/internal/users"
)

// UserStore is the slice of account persistence the auth flows need.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (users.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (users.User, error)
	Create(ctx context.Context, user users.User) (users.User, error)
}

// Notifier enqueues background work triggered by account events.
type Notifier interface {
	WelcomeEmail(ctx context.Context, email, name string) error
}

// Service wraps authentication business rules.
type Service struct {
	store    UserStore
	notifier Notifier
	logger   *slog.Logger
}

// NewService constructs a new Service. The notifier may be nil.
func NewService(store UserStore, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Register creates a new reader account with a hashed password.
func (s *Service) Register(ctx context.Context, name, email, password string) (users.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.store.Create(ctx, users.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         authz.RoleUser,
	})
	if err != nil {
		return users.User{}, err
	}
	if s.notifier != nil {
		if err := s.notifier.WelcomeEmail(ctx, user.Email, user.Name); err != nil && s.logger != nil {
			s.logger.Warn("enqueue welcome email", slog.Any("error", err))
		}
	}
	return user, nil
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Lookup loads the account behind a refresh claim. The caller mints a new
// token from the persisted role, not the claimed one, so a refresh always
// picks up admin-driven role changes.
func (s *Service) Lookup(ctx context.Context, id uuid.UUID) (users.User, error) {
	return s.store.GetByID(ctx, id)
}
