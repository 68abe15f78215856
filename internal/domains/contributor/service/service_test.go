package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/contributor/model"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/testhelpers"
)

type fixture struct {
	svc  ServiceInterface
	repo *fakeRepository
	log  *testhelpers.HistoryLog
	jobs *testhelpers.Enqueuer
}

func setup(resolver *testhelpers.Resolver) fixture {
	f := fixture{repo: newFakeRepository(), log: &testhelpers.HistoryLog{}, jobs: &testhelpers.Enqueuer{}}
	f.svc = NewContributorService(f.repo, &rollbackTransactor{repo: f.repo}, resolver, recorder.New(f.log), f.jobs)
	return f
}

func TestCreateContributor_RecordsHistory(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	email := "Ann@Example.com"

	c, err := f.svc.Create(context.Background(), testhelpers.Editor, model.CreateContributorRequest{
		PublishedName: "Ann Lee",
		Email:         &email,
	})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", *c.Email)

	var paths []string
	for _, r := range f.log.For(historyModel.EntityContributor, c.ID) {
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/email", "/legal_name", "/published_name"}, paths)
}

func TestCreateContributor_Invalid(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	bad := "not-an-email"

	_, err := f.svc.Create(context.Background(), testhelpers.Editor, model.CreateContributorRequest{PublishedName: "x", Email: &bad})

	assert.Equal(t, "VALIDATION_ERROR", apperror.CodeOf(err))
}

func TestPatchContributor_ClearsBio(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	bio := "Writes about the sea"
	f.repo.contributors[1] = model.Contributor{ID: 1, PublishedName: "Ann Lee", Bio: &bio}

	var req model.UpdateContributorRequest
	require.NoError(t, json.Unmarshal([]byte(`{"bio": null}`), &req))

	c, err := f.svc.Patch(context.Background(), testhelpers.Editor, 1, req)
	require.NoError(t, err)
	assert.Nil(t, c.Bio)

	records := f.log.For(historyModel.EntityContributor, 1)
	require.Len(t, records, 1)
	assert.Equal(t, historyModel.OpRemove, records[0].Op)
	assert.Equal(t, "/bio", records[0].Path)
}

func TestRemoveContributor_StillHoldingRoles(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	f.repo.addContributor(1, "Ann Lee", "")
	f.repo.addRole(10, 42, 1, model.RoleAuthor)

	err := f.svc.Remove(context.Background(), testhelpers.Admin, 1)

	require.Error(t, err)
	assert.Equal(t, "CONTRIBUTOR_HAS_ROLES", apperror.Translate(err).Code)
	assert.Contains(t, f.repo.contributors, int64(1))
	assert.Empty(t, f.log.Records)
}

func TestRemoveContributor_AdminOnly(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	f.repo.addContributor(1, "Ann Lee", "")

	err := f.svc.Remove(context.Background(), testhelpers.Editor, 1)

	assert.Equal(t, "ADMIN_REQUIRED", apperror.CodeOf(err))
}

func TestAssignRole(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "Ann Lee")

	role, err := f.svc.AssignRole(context.Background(), testhelpers.Editor, 42, model.CreateRoleRequest{ContributorID: 1, Role: model.RoleAuthor})
	require.NoError(t, err)

	assert.Equal(t, int64(42), role.BookID)
	assert.Len(t, f.log.For(historyModel.EntityBookContributorRole, role.ID), 3)
}

func TestAssignRole_Duplicates(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "Ann Lee")
	f.repo.addContributor(2, "ann lee", "ann lee")
	f.repo.addRole(10, 42, 1, model.RoleAuthor)

	_, err := f.svc.AssignRole(context.Background(), testhelpers.Editor, 42, model.CreateRoleRequest{ContributorID: 1, Role: model.RoleAuthor})
	assert.Equal(t, "DUPLICATE_BOOK_CONTRIBUTOR_ROLE", apperror.CodeOf(err))

	_, err = f.svc.AssignRole(context.Background(), testhelpers.Editor, 42, model.CreateRoleRequest{ContributorID: 2, Role: model.RoleAuthor})
	assert.Equal(t, "DUPLICATE_CONTRIBUTOR_ROLE", apperror.CodeOf(err))

	assert.Len(t, f.repo.roles, 1)
	assert.Empty(t, f.log.Records)
}

func TestAssignRole_Scope(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "")

	_, err := f.svc.AssignRole(context.Background(), testhelpers.Editor, 50, model.CreateRoleRequest{ContributorID: 1, Role: model.RoleAuthor})
	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))

	_, err = f.svc.AssignRole(context.Background(), testhelpers.Editor, 404, model.CreateRoleRequest{ContributorID: 1, Role: model.RoleAuthor})
	assert.Equal(t, "BOOK_NOT_FOUND", apperror.CodeOf(err))
}

func TestAssignRole_InvalidRole(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})

	_, err := f.svc.AssignRole(context.Background(), testhelpers.Editor, 42, model.CreateRoleRequest{ContributorID: 1, Role: "Ghostwriter"})

	assert.True(t, apperror.IsValidation(err))
}

func TestListRoles_OutOfScopeIsNotFound(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "")
	f.repo.addRole(10, 50, 1, model.RoleAuthor)

	_, err := f.svc.ListRoles(context.Background(), testhelpers.Editor, 50)
	assert.Equal(t, "BOOK_NOT_FOUND", apperror.CodeOf(err))

	roles, err := f.svc.ListRoles(context.Background(), testhelpers.Admin, 50)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "Ann Lee", roles[0].PublishedName)
}

func TestPatchRole_ExcludesItselfFromDuplicateCheck(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "")
	f.repo.addRole(10, 42, 1, model.RoleAuthor)

	editor := model.RoleEditor
	role, err := f.svc.PatchRole(context.Background(), testhelpers.Editor, 10, model.UpdateRoleRequest{Role: &editor})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, role.Role)

	records := f.log.For(historyModel.EntityBookContributorRole, 10)
	require.Len(t, records, 1)
	assert.Equal(t, "/role", records[0].Path)
}

func TestPatchRole_IntoExistingTriple(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})
	f.repo.addContributor(1, "Ann Lee", "")
	f.repo.addRole(10, 42, 1, model.RoleAuthor)
	f.repo.addRole(11, 42, 1, model.RoleEditor)

	author := model.RoleAuthor
	_, err := f.svc.PatchRole(context.Background(), testhelpers.Editor, 11, model.UpdateRoleRequest{Role: &author})

	assert.Equal(t, "DUPLICATE_BOOK_CONTRIBUTOR_ROLE", apperror.CodeOf(err))
	assert.Equal(t, model.RoleEditor, f.repo.roles[11].Role)
}

func TestRemoveRole(t *testing.T) {
	f := setup(&testhelpers.Resolver{Books: []int64{42}})
	f.repo.addContributor(1, "Ann Lee", "")
	f.repo.addRole(10, 42, 1, model.RoleAuthor)

	require.NoError(t, f.svc.RemoveRole(context.Background(), testhelpers.Editor, 10))

	assert.Empty(t, f.repo.roles)
	for _, r := range f.log.For(historyModel.EntityBookContributorRole, 10) {
		assert.Equal(t, historyModel.OpRemove, r.Op)
	}
}

func TestEnqueueConsolidation(t *testing.T) {
	f := setup(&testhelpers.Resolver{})
	req := model.ConsolidateRequest{
		Plan:   model.Plan{Pairs: []model.Pair{{Preferred: "Ann Lee", MergeFrom: []string{"A. Lee"}}}},
		DryRun: true,
	}

	_, err := f.svc.EnqueueConsolidation(context.Background(), testhelpers.Editor, req)
	assert.Equal(t, "ADMIN_REQUIRED", apperror.CodeOf(err))

	_, err = f.svc.EnqueueConsolidation(context.Background(), testhelpers.Admin, model.ConsolidateRequest{})
	assert.True(t, apperror.IsValidation(err))

	taskID, err := f.svc.EnqueueConsolidation(context.Background(), testhelpers.Admin, req)
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)

	require.Len(t, f.jobs.Tasks, 1)
	assert.Equal(t, shared.TypeConsolidateContributors, f.jobs.Tasks[0].Type())

	var payload model.ConsolidateTask
	require.NoError(t, json.Unmarshal(f.jobs.Tasks[0].Payload(), &payload))
	assert.Equal(t, testhelpers.Admin.ID, payload.RequestedBy)
	assert.True(t, payload.DryRun)
	assert.Equal(t, req.Plan, payload.Plan)
}
