package permissions

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/factecho/factecho/internal/shared"
)

type memoryStore struct {
	flags map[uuid.UUID]Flags
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{flags: make(map[uuid.UUID]Flags)}
}

func (s *memoryStore) Get(_ context.Context, userID uuid.UUID) (Flags, error) {
	if s.err != nil {
		return Flags{}, s.err
	}
	flags, ok := s.flags[userID]
	if !ok {
		return Flags{}, shared.ErrNotFound
	}
	return flags, nil
}

func (s *memoryStore) CreateTx(_ context.Context, _ pgx.Tx, flags Flags) error {
	s.flags[flags.UserID] = flags
	return nil
}

func (s *memoryStore) DeleteTx(_ context.Context, _ pgx.Tx, userID uuid.UUID) error {
	delete(s.flags, userID)
	return nil
}

func (s *memoryStore) Update(_ context.Context, flags Flags) error {
	if _, ok := s.flags[flags.UserID]; !ok {
		return shared.ErrNotFound
	}
	s.flags[flags.UserID] = flags
	return nil
}

func TestGetMissingRowFailsClosed(t *testing.T) {
	service := NewService(newMemoryStore())
	userID := uuid.New()

	flags, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, userID, flags.UserID)
	require.False(t, flags.CanCreate)
	require.False(t, flags.CanUpdate)
	require.False(t, flags.CanDelete)
	require.False(t, flags.Allows(ActionCreate))
	require.False(t, flags.Allows(ActionUpdate))
	require.False(t, flags.Allows(ActionDelete))
}

func TestGetPropagatesStoreFaults(t *testing.T) {
	store := newMemoryStore()
	store.err = errors.New("connection refused")
	service := NewService(store)

	_, err := service.Get(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestGrantDefaultCreatesAllTrueFlags(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)
	userID := uuid.New()

	require.NoError(t, service.GrantDefaultTx(context.Background(), nil, userID))

	flags, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, flags.CanCreate)
	require.True(t, flags.CanUpdate)
	require.True(t, flags.CanDelete)
}

func TestRevokeDeletesFlagsRow(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)
	userID := uuid.New()

	require.NoError(t, service.GrantDefaultTx(context.Background(), nil, userID))
	require.NoError(t, service.RevokeTx(context.Background(), nil, userID))

	flags, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, flags.Allows(ActionCreate), "revoked author falls back to all-false")
}

func TestUpdateReplacesFlagValues(t *testing.T) {
	store := newMemoryStore()
	service := NewService(store)
	userID := uuid.New()

	require.NoError(t, service.GrantDefaultTx(context.Background(), nil, userID))
	require.NoError(t, service.Update(context.Background(), Flags{UserID: userID, CanCreate: true}))

	flags, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, flags.Allows(ActionCreate))
	require.False(t, flags.Allows(ActionUpdate))
	require.False(t, flags.Allows(ActionDelete))
}

func TestFlagsAllowsUnknownAction(t *testing.T) {
	flags := Flags{CanCreate: true, CanUpdate: true, CanDelete: true}
	require.False(t, flags.Allows("publish"), "unknown actions are denied")
}
