package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateContributorRequest_RejectsBlankPublishedName(t *testing.T) {
	err := CreateContributorRequest{PublishedName: "   ", LegalName: "   "}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "published_name")
}

func TestUpdateContributorRequest_RejectsBlankPublishedName(t *testing.T) {
	blank := " "
	err := UpdateContributorRequest{PublishedName: &blank}.Validate()

	require.Error(t, err)
	assert.Contains(t, err.(validation.Errors), "published_name")

	name := "Ann Lee"
	assert.NoError(t, UpdateContributorRequest{PublishedName: &name}.Validate())
}

func TestPair_RejectsBlankNames(t *testing.T) {
	assert.Error(t, Pair{Preferred: "  ", MergeFrom: []string{"A. Lee"}}.Validate())
	assert.Error(t, Pair{Preferred: "Ann Lee", MergeFrom: []string{" "}}.Validate())
	assert.NoError(t, Pair{Preferred: "Ann Lee", MergeFrom: []string{"A. Lee"}}.Validate())
}
