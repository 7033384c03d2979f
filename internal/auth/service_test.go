package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/factecho/factecho/internal/authz"
	"github.com/factecho/factecho/internal/shared"
	"github.com/factecho/factecho/internal/users"
)

type memoryUserStore struct {
	byEmail map[string]users.User
	byID    map[uuid.UUID]users.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		byEmail: make(map[string]users.User),
		byID:    make(map[uuid.UUID]users.User),
	}
}

func (s *memoryUserStore) GetByEmail(_ context.Context, email string) (users.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return user, nil
}

func (s *memoryUserStore) GetByID(_ context.Context, id uuid.UUID) (users.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return users.User{}, shared.ErrNotFound
	}
	return user, nil
}

func (s *memoryUserStore) Create(_ context.Context, user users.User) (users.User, error) {
	if _, ok := s.byEmail[user.Email]; ok {
		return users.User{}, shared.ErrDuplicateEmail
	}
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return user, nil
}

type recordingNotifier struct {
	emails []string
	err    error
}

func (n *recordingNotifier) WelcomeEmail(_ context.Context, email, _ string) error {
	n.emails = append(n.emails, email)
	return n.err
}

func TestRegisterHashesPasswordAndAssignsUserRole(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store, nil, slog.Default())

	user, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, authz.RoleUser, user.Role)
	require.NotEqual(t, "s3cret-pass", user.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
}

func TestRegisterEnqueuesWelcomeEmail(t *testing.T) {
	store := newMemoryUserStore()
	notifier := &recordingNotifier{}
	service := NewService(store, notifier, slog.Default())

	_, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, []string{"ada@example.com"}, notifier.emails)
}

func TestRegisterSucceedsWhenNotifierFails(t *testing.T) {
	store := newMemoryUserStore()
	notifier := &recordingNotifier{err: errors.New("redis down")}
	service := NewService(store, notifier, slog.Default())

	_, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err, "welcome email is best effort")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store, nil, slog.Default())

	_, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, err = service.Register(context.Background(), "Eve", "ada@example.com", "other-pass")
	require.ErrorIs(t, err, shared.ErrDuplicateEmail)
}

func TestAuthenticate(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store, nil, slog.Default())

	registered, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, err := service.Authenticate(context.Background(), "ada@example.com", "s3cret-pass")
		require.NoError(t, err)
		require.Equal(t, registered.ID, user.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Authenticate(context.Background(), "ada@example.com", "wrong")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})

	t.Run("unknown email maps to invalid credentials", func(t *testing.T) {
		_, err := service.Authenticate(context.Background(), "ghost@example.com", "whatever")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	})
}

func TestLookupReturnsPersistedRole(t *testing.T) {
	store := newMemoryUserStore()
	service := NewService(store, nil, slog.Default())

	registered, err := service.Register(context.Background(), "Ada", "ada@example.com", "s3cret-pass")
	require.NoError(t, err)

	// Simulate an admin promotion after the refresh token was minted.
	promoted := registered
	promoted.Role = authz.RoleAuthor
	store.byID[registered.ID] = promoted
	store.byEmail[registered.Email] = promoted

	user, err := service.Lookup(context.Background(), registered.ID)
	require.NoError(t, err)
	require.Equal(t, authz.RoleAuthor, user.Role, "refresh must mint from the persisted role")
}

func TestLookupGoneAccount(t *testing.T) {
	service := NewService(newMemoryUserStore(), nil, slog.Default())

	_, err := service.Lookup(context.Background(), uuid.New())
	require.ErrorIs(t, err, shared.ErrNotFound)
}
