package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/shared/apperror"
)

func TestCheckAssignment(t *testing.T) {
	repo := newFakeRepository()
	repo.addContributor(1, "Ann Lee", "Ann Marie Lee")
	repo.addContributor(2, "  ann lee ", "ANN MARIE LEE") // same person, second profile
	repo.addContributor(3, "Ann Lee", "Ann Lee")          // same pen name, different legal name
	repo.addContributor(4, "Bo Chen", "Bo Chen")
	repo.addRole(10, 42, 1, model.RoleAuthor)

	rules := NewRules(repo)

	tests := []struct {
		name      string
		candidate model.Assignment
		excludeID int64
		code      string
	}{
		{"exact triple", model.Assignment{BookID: 42, ContributorID: 1, Role: model.RoleAuthor}, 0, "DUPLICATE_BOOK_CONTRIBUTOR_ROLE"},
		{"exact triple excluding itself", model.Assignment{BookID: 42, ContributorID: 1, Role: model.RoleAuthor}, 10, ""},
		{"same names different record", model.Assignment{BookID: 42, ContributorID: 2, Role: model.RoleAuthor}, 0, "DUPLICATE_CONTRIBUTOR_ROLE"},
		{"same names different role", model.Assignment{BookID: 42, ContributorID: 2, Role: model.RoleEditor}, 0, ""},
		{"same names different book", model.Assignment{BookID: 50, ContributorID: 2, Role: model.RoleAuthor}, 0, ""},
		{"legal name differs", model.Assignment{BookID: 42, ContributorID: 3, Role: model.RoleAuthor}, 0, ""},
		{"unrelated person", model.Assignment{BookID: 42, ContributorID: 4, Role: model.RoleAuthor}, 0, ""},
		{"unknown contributor", model.Assignment{BookID: 42, ContributorID: 99, Role: model.RoleAuthor}, 0, "UNKNOWN_CONTRIBUTOR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.CheckAssignment(context.Background(), nil, tt.candidate, tt.excludeID)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.CodeOf(err))
		})
	}
}

func TestCheckAssignment_DirectDuplicateWinsOverNameDuplicate(t *testing.T) {
	repo := newFakeRepository()
	repo.addContributor(1, "Ann Lee", "Ann Lee")
	repo.addContributor(2, "Ann Lee", "Ann Lee")
	repo.addRole(10, 42, 1, model.RoleAuthor)
	repo.addRole(11, 42, 2, model.RoleAuthor)

	err := NewRules(repo).CheckAssignment(context.Background(), nil,
		model.Assignment{BookID: 42, ContributorID: 2, Role: model.RoleAuthor}, 0)

	assert.Equal(t, "DUPLICATE_BOOK_CONTRIBUTOR_ROLE", apperror.CodeOf(err))
	assert.True(t, apperror.IsConflict(err))
}
