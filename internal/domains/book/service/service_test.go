package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessModel "pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/domains/book/repository"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
	"pubops-backend/internal/testhelpers"
)

type mockRepository struct {
	books      map[int64]model.Book
	imprints   map[int64]string
	dependents map[int64][]repository.Dependent
	nextID     int64
}

func newMockRepository(books ...model.Book) *mockRepository {
	m := &mockRepository{
		books:    map[int64]model.Book{},
		imprints: map[int64]string{3: "Ace", 9: "Nine"},
		nextID:   100,
	}
	for _, b := range books {
		m.books[b.ID] = b
	}
	return m
}

func (m *mockRepository) Find(_ context.Context, filter model.Filter, scope accessModel.BookScope) ([]model.BookDetail, int64, error) {
	out := []model.BookDetail{}
	for _, b := range m.books {
		if !scope.Allows(b.ID, b.ImprintID) {
			continue
		}
		if filter.ImprintID > 0 && b.ImprintID != filter.ImprintID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, model.BookDetail{Book: b, ImprintName: m.imprints[b.ImprintID]})
	}
	return out, int64(len(out)), nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*model.BookDetail, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return &model.BookDetail{Book: b, ImprintName: m.imprints[b.ImprintID]}, nil
}

func (m *mockRepository) GetForUpdateWithTx(_ context.Context, _ pgx.Tx, id int64) (*model.Book, error) {
	b, ok := m.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *mockRepository) BookImprint(_ context.Context, bookID int64) (int64, bool, error) {
	b, ok := m.books[bookID]
	return b.ImprintID, ok, nil
}

func (m *mockRepository) LockImprintWithTx(_ context.Context, _ pgx.Tx, imprintID int64) (bool, error) {
	_, ok := m.imprints[imprintID]
	return ok, nil
}

func (m *mockRepository) CreateWithTx(_ context.Context, _ pgx.Tx, b *model.Book) error {
	m.nextID++
	b.ID = m.nextID
	m.books[b.ID] = *b
	return nil
}

func (m *mockRepository) UpdateWithTx(_ context.Context, _ pgx.Tx, b *model.Book) error {
	m.books[b.ID] = *b
	return nil
}

func (m *mockRepository) ListDependentsWithTx(_ context.Context, _ pgx.Tx, bookID int64) ([]repository.Dependent, error) {
	return m.dependents[bookID], nil
}

func (m *mockRepository) DeleteWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	delete(m.books, id)
	delete(m.dependents, id)
	return nil
}

type fixture struct {
	svc  ServiceInterface
	repo *mockRepository
	log  *testhelpers.HistoryLog
	jobs *testhelpers.Enqueuer
}

func setup(resolver *testhelpers.Resolver, books ...model.Book) fixture {
	f := fixture{
		repo: newMockRepository(books...),
		log:  &testhelpers.HistoryLog{},
		jobs: &testhelpers.Enqueuer{},
	}
	f.svc = NewBookService(f.repo, &testhelpers.Transactor{}, resolver, recorder.New(f.log), f.jobs)
	return f
}

func strPtr(s string) *string { return &s }

func book42() model.Book {
	return model.Book{ID: 42, Title: "Old Title", ImprintID: 3, Status: model.StatusPlanned, Keywords: []string{"sea"}}
}

func TestFind_ImprintOutsideScopeIsEmpty(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}},
		book42(), model.Book{ID: 50, Title: "Other", ImprintID: 9, Keywords: []string{}})

	books, total, err := f.svc.Find(context.Background(), testhelpers.Editor,
		model.Filter{ImprintID: 9, Page: utils.Page{Page: 1, Limit: 20}})

	require.NoError(t, err)
	assert.Empty(t, books)
	assert.Zero(t, total)
}

func TestFind_NoGrantsSeesNothing(t *testing.T) {
	f := setup(&testhelpers.Resolver{}, book42())

	books, _, err := f.svc.Find(context.Background(), testhelpers.Editor, model.Filter{Page: utils.Page{Page: 1, Limit: 20}})

	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestFind_AdminSeesEverything(t *testing.T) {
	f := setup(&testhelpers.Resolver{},
		book42(), model.Book{ID: 50, Title: "Other", ImprintID: 9, Keywords: []string{}})

	books, total, err := f.svc.Find(context.Background(), testhelpers.Admin, model.Filter{Page: utils.Page{Page: 1, Limit: 20}})

	require.NoError(t, err)
	assert.Len(t, books, 2)
	assert.Equal(t, int64(2), total)
}

func TestFind_BadStatus(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})

	_, _, err := f.svc.Find(context.Background(), testhelpers.Editor, model.Filter{Status: "lost"})

	assert.True(t, apperror.IsValidation(err))
}

func TestGet_BookGrantWithoutImprintGrant(t *testing.T) {
	f := setup(&testhelpers.Resolver{Books: []int64{50}},
		book42(), model.Book{ID: 50, Title: "Other", ImprintID: 9, Keywords: []string{}})

	b, err := f.svc.Get(context.Background(), testhelpers.Editor, 50)
	require.NoError(t, err)
	assert.Equal(t, "Nine", b.ImprintName)

	_, err = f.svc.Get(context.Background(), testhelpers.Editor, 42)
	assert.Equal(t, "BOOK_NOT_FOUND", apperror.CodeOf(err))
}

func TestCreate_RequiresWritableImprint(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})

	_, err := f.svc.Create(context.Background(), testhelpers.Editor, model.CreateBookRequest{Title: "New", ImprintID: 9})

	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))
	assert.Empty(t, f.repo.books)
	assert.Empty(t, f.log.Records)
}

func TestCreate_UnknownImprint(t *testing.T) {
	f := setup(&testhelpers.Resolver{})

	_, err := f.svc.Create(context.Background(), testhelpers.Admin, model.CreateBookRequest{Title: "New", ImprintID: 77})

	assert.Equal(t, "UNKNOWN_IMPRINT", apperror.CodeOf(err))
}

func TestCreate_RecordsNonNullFields(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}})

	b, err := f.svc.Create(context.Background(), testhelpers.Editor, model.CreateBookRequest{
		Title:     "New",
		ImprintID: 3,
		Keywords:  []string{"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPlanned, b.Status)

	var paths []string
	for _, r := range f.log.For(historyModel.EntityBook, b.ID) {
		assert.Equal(t, historyModel.OpAdd, r.Op)
		assert.Equal(t, testhelpers.Editor.ID, r.ActorID)
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/fk_imprint", "/keywords", "/status", "/title"}, paths)
}

func TestPatch_TitleRecordsOneReplace(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())

	b, err := f.svc.Patch(context.Background(), shared.Actor{ID: 7}, 42, model.UpdateBookRequest{Title: strPtr("New Title")})
	require.NoError(t, err)
	assert.Equal(t, "New Title", b.Title)

	records := f.log.For(historyModel.EntityBook, 42)
	require.Len(t, records, 1)
	assert.Equal(t, historyModel.OpReplace, records[0].Op)
	assert.Equal(t, "/title", records[0].Path)
	assert.Equal(t, int64(7), records[0].ActorID)
	assert.JSONEq(t, `"New Title"`, string(records[0].Value))
}

func TestPatch_NoChangeRecordsNothing(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())

	_, err := f.svc.Patch(context.Background(), testhelpers.Editor, 42, model.UpdateBookRequest{Title: strPtr("Old Title")})

	require.NoError(t, err)
	assert.Empty(t, f.log.Records)
}

func TestPatch_KeywordsAndNullClear(t *testing.T) {
	existing := book42()
	existing.Subtitle = strPtr("A tale")
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, existing)

	var req model.UpdateBookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"subtitle": null, "keywords": ["sea", "salt"]}`), &req))

	_, err := f.svc.Patch(context.Background(), testhelpers.Editor, 42, req)
	require.NoError(t, err)

	records := f.log.For(historyModel.EntityBook, 42)
	require.Len(t, records, 2)
	assert.Equal(t, historyModel.OpAdd, records[0].Op)
	assert.Equal(t, "/keywords/1", records[0].Path)
	assert.Equal(t, historyModel.OpRemove, records[1].Op)
	assert.Equal(t, "/subtitle", records[1].Path)
	assert.Nil(t, f.repo.books[42].Subtitle)
}

func TestPatch_OutOfScopeIsDenied(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{9}}, book42())

	_, err := f.svc.Patch(context.Background(), testhelpers.Editor, 42, model.UpdateBookRequest{Title: strPtr("x")})

	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))
	assert.Equal(t, "Old Title", f.repo.books[42].Title)
}

func TestPatch_MoveNeedsBothImprints(t *testing.T) {
	target := int64(9)

	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())
	_, err := f.svc.Patch(context.Background(), testhelpers.Editor, 42, model.UpdateBookRequest{ImprintID: &target})
	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))

	f = setup(&testhelpers.Resolver{Books: []int64{42}, Imprints: []int64{9}}, book42())
	_, err = f.svc.Patch(context.Background(), testhelpers.Editor, 42, model.UpdateBookRequest{ImprintID: &target})
	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))

	f = setup(&testhelpers.Resolver{Imprints: []int64{3, 9}}, book42())
	b, err := f.svc.Patch(context.Background(), testhelpers.Editor, 42, model.UpdateBookRequest{ImprintID: &target})
	require.NoError(t, err)
	assert.Equal(t, int64(9), b.ImprintID)
}

func TestRemove_RecordsAndQueuesCleanup(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())

	require.NoError(t, f.svc.Remove(context.Background(), testhelpers.Editor, 42))

	assert.NotContains(t, f.repo.books, int64(42))
	for _, r := range f.log.For(historyModel.EntityBook, 42) {
		assert.Equal(t, historyModel.OpRemove, r.Op)
	}
	require.Len(t, f.jobs.Tasks, 1)
	assert.Equal(t, shared.TypeDeleteAttachmentObject, f.jobs.Tasks[0].Type())
	assert.JSONEq(t, `{"prefix":"books/42/"}`, string(f.jobs.Tasks[0].Payload()))
}

func TestRemove_RecordsCascadedRows(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())
	f.repo.dependents = map[int64][]repository.Dependent{42: {
		{EntityType: historyModel.EntityPrice, ID: 8, Row: map[string]any{
			"id": 8, "release_id": 5, "currency": "USD", "amount": "25.00", "created_at": "2026-01-01T00:00:00Z",
		}},
		{EntityType: historyModel.EntityRelease, ID: 5, Row: map[string]any{"id": 5, "book_id": 42, "format": "ebook"}},
		{EntityType: historyModel.EntityChecklistItem, ID: 11, Row: map[string]any{"id": 11, "book_id": 42, "task": "Galleys"}},
	}}

	require.NoError(t, f.svc.Remove(context.Background(), testhelpers.Editor, 42))

	prices := f.log.For(historyModel.EntityPrice, 8)
	require.NotEmpty(t, prices)
	paths := map[string]bool{}
	for _, r := range prices {
		assert.Equal(t, historyModel.OpRemove, r.Op)
		assert.Equal(t, testhelpers.Editor.ID, r.ActorID)
		paths[r.Path] = true
	}
	assert.True(t, paths["/amount"])
	assert.True(t, paths["/currency"])
	assert.False(t, paths["/created_at"])

	for _, r := range f.log.For(historyModel.EntityRelease, 5) {
		assert.Equal(t, historyModel.OpRemove, r.Op)
	}
	assert.NotEmpty(t, f.log.For(historyModel.EntityRelease, 5))
	assert.NotEmpty(t, f.log.For(historyModel.EntityChecklistItem, 11))
	assert.NotEmpty(t, f.log.For(historyModel.EntityBook, 42))
}

func TestRemove_EnqueueFailureDoesNotFailRemove(t *testing.T) {
	f := setup(&testhelpers.Resolver{Imprints: []int64{3}}, book42())
	f.jobs.Err = assert.AnError

	require.NoError(t, f.svc.Remove(context.Background(), testhelpers.Editor, 42))
	assert.NotContains(t, f.repo.books, int64(42))
}
