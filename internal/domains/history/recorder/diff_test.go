package recorder

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/history/model"
)

func TestDiff_ScalarChanges(t *testing.T) {
	before := map[string]any{"title": "Old", "subtitle": "Sub", "status": "planned"}
	after := map[string]any{"title": "New", "status": "planned", "isbn": "978"}

	edits := Diff(before, after)

	assert.Equal(t, []model.FieldEdit{
		{Path: "/isbn", Op: model.OpAdd, Value: "978"},
		{Path: "/subtitle", Op: model.OpRemove},
		{Path: "/title", Op: model.OpReplace, Value: "New"},
	}, edits)
}

func TestDiff_NoChangeNoEdits(t *testing.T) {
	m := map[string]any{"title": "Same", "keywords": []any{"a", "b"}}
	assert.Empty(t, Diff(m, map[string]any{"title": "Same", "keywords": []any{"a", "b"}}))
}

func TestDiff_NullIsAbsent(t *testing.T) {
	edits := Diff(
		map[string]any{"subtitle": nil, "description": "x"},
		map[string]any{"subtitle": "now set", "description": nil},
	)

	assert.Equal(t, []model.FieldEdit{
		{Path: "/description", Op: model.OpRemove},
		{Path: "/subtitle", Op: model.OpAdd, Value: "now set"},
	}, edits)
}

func TestDiff_ArraysElementWise(t *testing.T) {
	t.Run("same length", func(t *testing.T) {
		edits := Diff(
			map[string]any{"keywords": []any{"a", "b"}},
			map[string]any{"keywords": []any{"a", "c"}},
		)
		assert.Equal(t, []model.FieldEdit{{Path: "/keywords/1", Op: model.OpReplace, Value: "c"}}, edits)
	})

	t.Run("appended", func(t *testing.T) {
		edits := Diff(
			map[string]any{"keywords": []any{"a"}},
			map[string]any{"keywords": []any{"a", "b", "c"}},
		)
		assert.Equal(t, []model.FieldEdit{
			{Path: "/keywords/1", Op: model.OpAdd, Value: "b"},
			{Path: "/keywords/2", Op: model.OpAdd, Value: "c"},
		}, edits)
	})

	t.Run("truncated removes from the end", func(t *testing.T) {
		edits := Diff(
			map[string]any{"keywords": []any{"a", "b", "c"}},
			map[string]any{"keywords": []any{"x"}},
		)
		assert.Equal(t, []model.FieldEdit{
			{Path: "/keywords/0", Op: model.OpReplace, Value: "x"},
			{Path: "/keywords/2", Op: model.OpRemove},
			{Path: "/keywords/1", Op: model.OpRemove},
		}, edits)
	})

	t.Run("null element is replaced in place", func(t *testing.T) {
		edits := Diff(
			map[string]any{"keywords": []any{"a", nil}},
			map[string]any{"keywords": []any{"a", "b"}},
		)
		assert.Equal(t, []model.FieldEdit{{Path: "/keywords/1", Op: model.OpReplace, Value: "b"}}, edits)
	})
}

func TestDiff_TypeChangeIsReplace(t *testing.T) {
	edits := Diff(
		map[string]any{"meta": []any{"a"}},
		map[string]any{"meta": "a"},
	)
	assert.Equal(t, []model.FieldEdit{{Path: "/meta", Op: model.OpReplace, Value: "a"}}, edits)
}

func TestDiff_NestedObjectsEscapePointers(t *testing.T) {
	edits := Diff(
		map[string]any{"attrs": map[string]any{"a/b": 1, "m~n": 1}},
		map[string]any{"attrs": map[string]any{"a/b": 2, "m~n": 1, "new": true}},
	)

	assert.Equal(t, []model.FieldEdit{
		{Path: "/attrs/a~1b", Op: model.OpReplace, Value: 2},
		{Path: "/attrs/new", Op: model.OpAdd, Value: true},
	}, edits)
}

type sampleBook struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Subtitle  *string   `json:"subtitle"`
	PageCount *int      `json:"page_count"`
	Keywords  []string  `json:"keywords"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedBy int64     `json:"updated_by"`
	UpdatedAt time.Time `json:"updated_at"`
	Virtual   string    `json:"imprint_name,omitempty"`
}

func TestSnapshot_DropsAuditFields(t *testing.T) {
	pages := 320
	snap, err := Snapshot(sampleBook{
		ID:        42,
		Title:     "Dune",
		PageCount: &pages,
		Keywords:  []string{"sf"},
		CreatedBy: 7,
		CreatedAt: time.Now(),
		Virtual:   "Ace",
	}, "imprint_name")
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"title":      "Dune",
		"subtitle":   nil,
		"page_count": json.Number("320"),
		"keywords":   []any{"sf"},
	}, snap)
}

func TestSnapshot_RejectsNonObjects(t *testing.T) {
	_, err := Snapshot([]int{1, 2})
	assert.Error(t, err)
}

func TestEscapePointer(t *testing.T) {
	assert.Equal(t, "a~1b~0c", EscapePointer("a/b~c"))
	assert.Equal(t, "plain", EscapePointer("plain"))
}
