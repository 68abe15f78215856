package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
)

type mockAppender struct {
	records []model.ChangeRecord
	calls   int
	err     error
}

func (m *mockAppender) AppendWithTx(_ context.Context, _ pgx.Tx, records []model.ChangeRecord) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

var actor7 = shared.Actor{ID: 7, Email: "editor@example.com"}

type book struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Subtitle  *string  `json:"subtitle"`
	Keywords  []string `json:"keywords"`
	FkImprint int64    `json:"fk_imprint"`
}

func TestRecordDiff_TitlePatchProducesSingleReplace(t *testing.T) {
	repo := &mockAppender{}
	rec := New(repo)

	before := book{ID: 42, Title: "Old Title", Keywords: []string{"a"}, FkImprint: 3}
	after := before
	after.Title = "New Title"

	err := rec.RecordDiff(context.Background(), nil, model.EntityBook, 42, actor7, before, after)
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	r := repo.records[0]
	assert.Equal(t, model.EntityBook, r.EntityType)
	assert.Equal(t, int64(42), r.EntityID)
	assert.Equal(t, int64(7), r.ActorID)
	assert.Equal(t, "editor@example.com", r.ActorEmail)
	assert.Equal(t, model.OpReplace, r.Op)
	assert.Equal(t, "/title", r.Path)
	assert.JSONEq(t, `"New Title"`, string(r.Value))
}

func TestRecord_NoEditsNoRows(t *testing.T) {
	repo := &mockAppender{}
	err := New(repo).Record(context.Background(), nil, model.EntityBook, 42, actor7, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, repo.calls)
}

func TestRecordDiff_IdenticalSnapshotsNoRows(t *testing.T) {
	repo := &mockAppender{}
	b := book{ID: 1, Title: "Same"}

	require.NoError(t, New(repo).RecordDiff(context.Background(), nil, model.EntityBook, 1, actor7, b, b))
	assert.Equal(t, 0, repo.calls)
}

func TestRecordCreate_OneAddPerNonNullField(t *testing.T) {
	repo := &mockAppender{}
	err := New(repo).RecordCreate(context.Background(), nil, model.EntityBook, 42, actor7,
		book{ID: 42, Title: "Dune", Keywords: []string{"sf"}, FkImprint: 3})
	require.NoError(t, err)

	paths := make([]string, 0, len(repo.records))
	for _, r := range repo.records {
		assert.Equal(t, model.OpAdd, r.Op)
		paths = append(paths, r.Path)
	}
	assert.Equal(t, []string{"/fk_imprint", "/keywords", "/title"}, paths)
}

func TestRecordDelete_RemovesStoreNull(t *testing.T) {
	repo := &mockAppender{}
	err := New(repo).RecordDelete(context.Background(), nil, model.EntityBook, 42, actor7,
		book{ID: 42, Title: "Dune", FkImprint: 3})
	require.NoError(t, err)

	require.Len(t, repo.records, 2)
	for _, r := range repo.records {
		assert.Equal(t, model.OpRemove, r.Op)
		assert.Nil(t, r.Value)
	}
}

func TestRecord_Validation(t *testing.T) {
	tests := []struct {
		name  string
		typ   model.EntityType
		id    int64
		actor shared.Actor
		edit  model.FieldEdit
		code  string
	}{
		{"unknown entity type", "warehouse", 1, actor7, model.FieldEdit{Path: "/a", Op: model.OpAdd, Value: 1}, "INVALID_ENTITY_TYPE"},
		{"bad op", model.EntityBook, 1, actor7, model.FieldEdit{Path: "/a", Op: "move"}, "INVALID_CHANGE_RECORD"},
		{"path without slash", model.EntityBook, 1, actor7, model.FieldEdit{Path: "title", Op: model.OpAdd, Value: 1}, "INVALID_CHANGE_RECORD"},
		{"unserializable value", model.EntityBook, 1, actor7, model.FieldEdit{Path: "/a", Op: model.OpAdd, Value: math.Inf(1)}, "INVALID_CHANGE_RECORD"},
		{"no actor", model.EntityBook, 1, shared.Actor{}, model.FieldEdit{Path: "/a", Op: model.OpAdd, Value: 1}, "INVALID_CHANGE_RECORD"},
		{"no entity id", model.EntityBook, 0, actor7, model.FieldEdit{Path: "/a", Op: model.OpAdd, Value: 1}, "INVALID_CHANGE_RECORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockAppender{}
			err := New(repo).Record(context.Background(), nil, tt.typ, tt.id, tt.actor, []model.FieldEdit{tt.edit})

			assert.True(t, apperror.IsValidation(err))
			assert.Equal(t, tt.code, apperror.CodeOf(err))
			assert.Equal(t, 0, repo.calls)
		})
	}
}

func TestRecord_AppendFailurePropagates(t *testing.T) {
	repo := &mockAppender{err: errors.New("disk full")}
	err := New(repo).Record(context.Background(), nil, model.EntityBook, 1, actor7,
		[]model.FieldEdit{{Path: "/title", Op: model.OpReplace, Value: "x"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, repo.err)
}

func TestRecord_ValueIsOpaqueJSON(t *testing.T) {
	repo := &mockAppender{}
	value := map[string]any{"nested": []any{1, "two", nil}}

	err := New(repo).Record(context.Background(), nil, model.EntityBook, 1, actor7,
		[]model.FieldEdit{{Path: "/meta", Op: model.OpAdd, Value: value}})
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, json.Unmarshal(repo.records[0].Value, &back))
	assert.Equal(t, map[string]any{"nested": []any{float64(1), "two", nil}}, back)
}
