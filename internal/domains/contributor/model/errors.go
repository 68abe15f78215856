package model

import "pubops-backend/internal/shared/apperror"

func NewContributorNotFound(id int64) *apperror.Error {
	return apperror.NotFound("CONTRIBUTOR_NOT_FOUND", "Contributor not found").WithDetail("contributor_id", id)
}

func NewRoleNotFound(id int64) *apperror.Error {
	return apperror.NotFound("ROLE_NOT_FOUND", "Role assignment not found").WithDetail("role_id", id)
}

func NewUnknownContributor(id int64) *apperror.Error {
	return apperror.Validation("UNKNOWN_CONTRIBUTOR", "Contributor does not exist").WithDetail("contributor_id", id)
}

// NewDuplicateBookContributorRole is the exact (book, contributor, role) duplicate
func NewDuplicateBookContributorRole(a Assignment) *apperror.Error {
	return apperror.Conflict("DUPLICATE_BOOK_CONTRIBUTOR_ROLE", "This contributor already holds this role on this book").
		WithDetail("book_id", a.BookID).
		WithDetail("contributor_id", a.ContributorID).
		WithDetail("role", a.Role)
}

// NewDuplicateContributorRole is a different contributor record with the
// same names holding the same role on the same book
func NewDuplicateContributorRole(a Assignment, existingID int64) *apperror.Error {
	return apperror.Conflict("DUPLICATE_CONTRIBUTOR_ROLE",
		"A contributor with the same published and legal name already holds this role on this book; reuse that profile").
		WithDetail("book_id", a.BookID).
		WithDetail("contributor_id", a.ContributorID).
		WithDetail("existing_contributor_id", existingID).
		WithDetail("role", a.Role)
}

func NewConsolidationTargetNotFound(name string) *apperror.Error {
	return apperror.Validation("CONSOLIDATION_TARGET_NOT_FOUND", "No contributor is published under the preferred name").
		WithDetail("preferred", name)
}

func NewConsolidationTargetAmbiguous(name string, ids []int64) *apperror.Error {
	return apperror.Validation("CONSOLIDATION_TARGET_AMBIGUOUS", "Several contributors are published under the preferred name").
		WithDetail("preferred", name).
		WithDetail("contributor_ids", ids)
}

func NewConsolidationInProgress() *apperror.Error {
	return apperror.Conflict("CONSOLIDATION_IN_PROGRESS", "Another consolidation run is active")
}

func init() {
	apperror.RegisterConstraint("contributors_email_key", "DUPLICATE_EMAIL", "A contributor with this email already exists")
	apperror.RegisterConstraint("book_contributor_roles_book_contributor_role_key", "DUPLICATE_BOOK_CONTRIBUTOR_ROLE", "This contributor already holds this role on this book")
	apperror.RegisterConstraint("book_contributor_roles_contributor_id_fkey", "CONTRIBUTOR_HAS_ROLES", "Contributor still holds roles on books")
}
