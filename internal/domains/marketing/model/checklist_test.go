package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemRequest_RejectsBlankTask(t *testing.T) {
	err := CreateItemRequest{Task: "\t  "}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "task")
	assert.NoError(t, CreateItemRequest{Task: "Send review copies"}.Validate())
}

func TestUpdateItemRequest_RejectsBlankTask(t *testing.T) {
	blank := "  "
	err := UpdateItemRequest{Task: &blank}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "task")
}
