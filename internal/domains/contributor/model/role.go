package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type Role string

const (
	RoleAuthor       Role = "Author"
	RoleEditor       Role = "Editor"
	RoleIllustrator  Role = "Illustrator"
	RoleTranslator   Role = "Translator"
	RoleNarrator     Role = "Narrator"
	RoleForeword     Role = "Foreword"
	RolePhotographer Role = "Photographer"
	RoleContributor  Role = "Contributor"
)

var roles = []any{
	RoleAuthor, RoleEditor, RoleIllustrator, RoleTranslator,
	RoleNarrator, RoleForeword, RolePhotographer, RoleContributor,
}

// BookContributorRole says a contributor holds role on a book.
// (BookID, ContributorID, Role) is unique.
type BookContributorRole struct {
	ID            int64     `json:"id"`
	BookID        int64     `json:"book_id"`
	ContributorID int64     `json:"contributor_id"`
	Role          Role      `json:"role"`
	CreatedBy     *int64    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedBy     *int64    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// RoleDetail adds the contributor's names resolved by join
type RoleDetail struct {
	BookContributorRole
	PublishedName string `json:"published_name"`
	LegalName     string `json:"legal_name"`
}

// Assignment is the triple the uniqueness rules check
type Assignment struct {
	BookID        int64
	ContributorID int64
	Role          Role
}

type CreateRoleRequest struct {
	ContributorID int64 `json:"contributor_id"`
	Role          Role  `json:"role"`
}

func (r CreateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ContributorID, validation.Required, validation.Min(int64(1))),
		validation.Field(&r.Role, validation.Required, validation.In(roles...)),
	)
}

type UpdateRoleRequest struct {
	ContributorID *int64 `json:"contributor_id"`
	Role          *Role  `json:"role"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ContributorID, validation.NilOrNotEmpty, validation.Min(int64(1))),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.In(roles...)),
	)
}

func (r UpdateRoleRequest) ApplyTo(role *BookContributorRole) {
	if r.ContributorID != nil {
		role.ContributorID = *r.ContributorID
	}
	if r.Role != nil {
		role.Role = *r.Role
	}
}
