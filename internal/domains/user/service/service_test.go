package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/user/model"
	"pubops-backend/internal/testhelpers"
)

type mockRepository struct {
	users map[int64]model.User
	err   error
}

func (m *mockRepository) FindByID(_ context.Context, id int64) (*model.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func TestMe_ScopedActor(t *testing.T) {
	repo := &mockRepository{users: map[int64]model.User{7: {ID: 7, FullName: "Eddie Tor"}}}
	svc := NewUserService(repo, &testhelpers.Resolver{Imprints: []int64{9, 3}, Books: []int64{42}})

	me, err := svc.Me(context.Background(), testhelpers.Editor)
	require.NoError(t, err)

	raw, err := json.Marshal(me)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 7,
		"email": "editor@example.com",
		"full_name": "Eddie Tor",
		"roles": [],
		"allowed_imprint_ids": [3, 9],
		"allowed_book_ids": [42]
	}`, string(raw))
}

func TestMe_AdminIsUnrestricted(t *testing.T) {
	svc := NewUserService(&mockRepository{}, &testhelpers.Resolver{})

	me, err := svc.Me(context.Background(), testhelpers.Admin)
	require.NoError(t, err)

	raw, err := json.Marshal(me)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"allowed_imprint_ids":"*"`)
	assert.Contains(t, string(raw), `"allowed_book_ids":"*"`)
	assert.Empty(t, me.FullName)
}

func TestMe_ResolverFailure(t *testing.T) {
	svc := NewUserService(&mockRepository{}, &testhelpers.Resolver{Err: errors.New("db down")})

	_, err := svc.Me(context.Background(), testhelpers.Editor)

	assert.Error(t, err)
}
