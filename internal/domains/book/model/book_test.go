package model

import (
	"encoding/json"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	errs, ok := err.(validation.Errors)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	assert.Contains(t, errs, field)
}

func TestCreateBookRequest_RejectsBlankTitle(t *testing.T) {
	fieldError(t, CreateBookRequest{Title: "   ", ImprintID: 1}.Validate(), "title")
	assert.NoError(t, CreateBookRequest{Title: "Dune", ImprintID: 1}.Validate())
}

func TestUpdateBookRequest_RejectsBlankTitle(t *testing.T) {
	var req UpdateBookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"   "}`), &req))

	fieldError(t, req.Validate(), "title")
}

func TestUpdateBookRequest_ISBN(t *testing.T) {
	var empty UpdateBookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isbn":""}`), &empty))
	fieldError(t, empty.Validate(), "isbn")

	var cleared UpdateBookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isbn":null}`), &cleared))
	require.NoError(t, cleared.Validate())

	isbn := "978-0441013593"
	b := &Book{ISBN: &isbn}
	cleared.ApplyTo(b)
	assert.Nil(t, b.ISBN)
}
