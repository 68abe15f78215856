package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"pubops-backend/internal/shared/apperror"
)

func TestScope_ZeroValueDeniesEverything(t *testing.T) {
	var s Scope
	assert.True(t, s.IsEmpty())
	assert.False(t, s.IsUnrestricted())
	assert.False(t, s.Allows(1))

	clause, args := s.SQL("b.fk_imprint", 1)
	assert.Equal(t, "FALSE", clause)
	assert.Nil(t, args)
}

func TestScope_Unrestricted(t *testing.T) {
	s := Unrestricted()
	assert.True(t, s.Allows(999))
	assert.Nil(t, s.IDs())

	clause, args := s.SQL("id", 3)
	assert.Equal(t, "TRUE", clause)
	assert.Nil(t, args)
}

func TestScope_Restricted(t *testing.T) {
	s := NewScope([]int64{9, 3, 3})
	assert.Equal(t, []int64{3, 9}, s.IDs())
	assert.True(t, s.Allows(3))
	assert.False(t, s.Allows(4))

	clause, args := s.SQL("b.fk_imprint", 2)
	assert.Equal(t, "b.fk_imprint = ANY($2)", clause)
	assert.Equal(t, []any{[]int64{3, 9}}, args)
}

func TestScope_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Scope{
		"all":  Unrestricted(),
		"none": Deny(),
		"some": NewScope([]int64{2, 1}),
	})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"all":"*","none":[],"some":[1,2]}`, string(out))
}

func TestBookScope_SQL(t *testing.T) {
	tests := []struct {
		name     string
		scope    BookScope
		wantSQL  string
		wantArgs []any
	}{
		{"admin", BookScope{Imprints: Unrestricted(), Books: Unrestricted()}, "TRUE", nil},
		{"nothing", BookScope{}, "FALSE", nil},
		{"imprints only", BookScope{Imprints: NewScope([]int64{3})}, "b.fk_imprint = ANY($1)", []any{[]int64{3}}},
		{"books only", BookScope{Books: NewScope([]int64{42})}, "b.id = ANY($1)", []any{[]int64{42}}},
		{
			"both",
			BookScope{Imprints: NewScope([]int64{3}), Books: NewScope([]int64{42})},
			"(b.fk_imprint = ANY($1) OR b.id = ANY($2))",
			[]any{[]int64{3}, []int64{42}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.scope.SQL("b.fk_imprint", "b.id", 1)
			assert.Equal(t, tt.wantSQL, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBookScope_Allows(t *testing.T) {
	s := BookScope{Imprints: NewScope([]int64{3}), Books: NewScope([]int64{42})}

	assert.True(t, s.Allows(1, 3), "book in allowed imprint")
	assert.True(t, s.Allows(42, 9), "explicitly granted book")
	assert.False(t, s.Allows(7, 9))
}

func TestGuards(t *testing.T) {
	notFound := apperror.NotFound("BOOK_NOT_FOUND", "Book not found")

	assert.NoError(t, CheckRead(true, notFound))
	assert.Same(t, notFound, CheckRead(false, notFound))

	assert.NoError(t, CheckWrite(true))
	err := CheckWrite(false)
	assert.True(t, apperror.IsPermission(err))
	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))
}
