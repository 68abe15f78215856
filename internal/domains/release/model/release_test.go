package model

import (
	"encoding/json"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateReleaseRequest_RejectsEmptyISBN(t *testing.T) {
	var req UpdateReleaseRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isbn":""}`), &req))

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "isbn")
}

func TestUpdateReleaseRequest_NullISBNClears(t *testing.T) {
	var req UpdateReleaseRequest
	require.NoError(t, json.Unmarshal([]byte(`{"isbn":null}`), &req))
	require.NoError(t, req.Validate())

	isbn := "978-0441013593"
	rel := &Release{ISBN: &isbn, Format: FormatEbook}
	req.ApplyTo(rel)
	assert.Nil(t, rel.ISBN)
}

func TestCreateReleaseRequest_RejectsEmptyISBN(t *testing.T) {
	empty := ""
	err := CreateReleaseRequest{Format: FormatEbook, ISBN: &empty}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "isbn")
}
