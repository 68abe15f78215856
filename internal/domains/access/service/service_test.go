package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

// mockRepository is an in-memory ownership mapping
type mockRepository struct {
	grants   map[int64]map[model.Kind][]int64
	users    map[int64]bool
	missing  []int64
	lookups  int
	failWith error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		grants: map[int64]map[model.Kind][]int64{},
		users:  map[int64]bool{},
	}
}

func (m *mockRepository) grant(userID int64, kind model.Kind, ids ...int64) {
	if m.grants[userID] == nil {
		m.grants[userID] = map[model.Kind][]int64{}
	}
	m.grants[userID][kind] = ids
}

func (m *mockRepository) ListResourceIDs(_ context.Context, userID int64, kind model.Kind) ([]int64, error) {
	m.lookups++
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.grants[userID][kind], nil
}

func (m *mockRepository) ListGrants(_ context.Context, userID int64) ([]model.Grant, error) {
	var out []model.Grant
	for _, kind := range []model.Kind{model.KindBook, model.KindImprint} {
		for _, id := range m.grants[userID][kind] {
			out = append(out, model.Grant{UserID: userID, Kind: kind, ResourceID: id})
		}
	}
	return out, nil
}

func (m *mockRepository) UserExists(_ context.Context, _ pgx.Tx, userID int64) (bool, error) {
	return m.users[userID], nil
}

func (m *mockRepository) MissingResources(_ context.Context, _ pgx.Tx, _ model.Kind, _ []int64) ([]int64, error) {
	return m.missing, nil
}

func (m *mockRepository) ReplaceWithTx(_ context.Context, _ pgx.Tx, userID int64, kind model.Kind, ids []int64) error {
	m.grant(userID, kind, ids...)
	return nil
}

type mockTransactor struct{ calls int }

func (m *mockTransactor) WithTransaction(_ context.Context, fn database.TxFunc) error {
	m.calls++
	return fn(nil)
}

var (
	admin  = shared.Actor{ID: 1, Email: "admin@example.com", Roles: []string{shared.RoleAdmin}}
	editor = shared.Actor{ID: 7, Email: "editor@example.com", Roles: []string{"editor"}}
)

func TestResolve_AdminBypassesLookup(t *testing.T) {
	repo := newMockRepository()
	resolver := NewResolver(repo)

	scope, err := resolver.Resolve(context.Background(), admin, model.KindImprint)

	require.NoError(t, err)
	assert.True(t, scope.IsUnrestricted())
	assert.Equal(t, 0, repo.lookups)
}

func TestResolve_DefaultDeny(t *testing.T) {
	resolver := NewResolver(newMockRepository())

	scope, err := resolver.Resolve(context.Background(), editor, model.KindImprint)

	require.NoError(t, err)
	assert.True(t, scope.IsEmpty())
	assert.False(t, scope.Allows(3))
}

func TestResolve_ReturnsGrantedIDs(t *testing.T) {
	repo := newMockRepository()
	repo.grant(editor.ID, model.KindImprint, 3)
	resolver := NewResolver(repo)

	scope, err := resolver.Resolve(context.Background(), editor, model.KindImprint)

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, scope.IDs())
	assert.False(t, scope.Allows(9))
}

func TestResolve_LookupFailureFailsClosed(t *testing.T) {
	repo := newMockRepository()
	repo.failWith = errors.New("connection reset")
	resolver := NewResolver(repo)

	scope, err := resolver.Resolve(context.Background(), editor, model.KindImprint)

	require.Error(t, err)
	assert.False(t, scope.IsUnrestricted())
	assert.True(t, scope.IsEmpty())
}

func TestResolve_InvalidKind(t *testing.T) {
	scope, err := NewResolver(newMockRepository()).Resolve(context.Background(), admin, model.Kind("warehouse"))

	assert.True(t, apperror.IsValidation(err))
	assert.True(t, scope.IsEmpty())
}

func TestResolveBooks_CombinesImprintAndBookGrants(t *testing.T) {
	repo := newMockRepository()
	repo.grant(editor.ID, model.KindImprint, 3)
	repo.grant(editor.ID, model.KindBook, 42)

	scope, err := NewResolver(repo).ResolveBooks(context.Background(), editor)

	require.NoError(t, err)
	assert.True(t, scope.Allows(1, 3))
	assert.True(t, scope.Allows(42, 9))
	assert.False(t, scope.Allows(5, 9))
}

func TestReplaceGrants_RequiresAdmin(t *testing.T) {
	svc := NewAccessService(newMockRepository(), &mockTransactor{})

	_, err := svc.ReplaceGrants(context.Background(), editor, 7, model.KindImprint, []int64{3})

	assert.Equal(t, "ADMIN_REQUIRED", apperror.CodeOf(err))
}

func TestReplaceGrants_UnknownUser(t *testing.T) {
	svc := NewAccessService(newMockRepository(), &mockTransactor{})

	_, err := svc.ReplaceGrants(context.Background(), admin, 99, model.KindImprint, []int64{3})

	assert.True(t, apperror.IsNotFound(err))
}

func TestReplaceGrants_RejectsMissingResources(t *testing.T) {
	repo := newMockRepository()
	repo.users[7] = true
	repo.missing = []int64{404}
	svc := NewAccessService(repo, &mockTransactor{})

	_, err := svc.ReplaceGrants(context.Background(), admin, 7, model.KindBook, []int64{42, 404})

	assert.Equal(t, "UNKNOWN_RESOURCE", apperror.CodeOf(err))
}

func TestReplaceGrants_DedupesAndStores(t *testing.T) {
	repo := newMockRepository()
	repo.users[7] = true
	tx := &mockTransactor{}
	svc := NewAccessService(repo, tx)

	got, err := svc.ReplaceGrants(context.Background(), admin, 7, model.KindImprint, []int64{9, 3, 9})

	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []int64{3, 9}, got.Imprints)
	assert.Empty(t, got.Books)
}
