package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/contributor/model"
)

type RepositoryInterface interface {
	ContributorRepository
	RoleRepository
}

type ContributorRepository interface {
	Find(ctx context.Context, filter model.Filter) ([]model.Contributor, int64, error)
	// GetByID returns nil when the contributor does not exist
	GetByID(ctx context.Context, id int64) (*model.Contributor, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Contributor, error)
	// FindByPublishedNameWithTx matches lower(btrim(published_name)) and locks the rows
	FindByPublishedNameWithTx(ctx context.Context, tx pgx.Tx, normalized string) ([]model.Contributor, error)

	CreateWithTx(ctx context.Context, tx pgx.Tx, c *model.Contributor) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, c *model.Contributor) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type RoleRepository interface {
	ListRolesByBook(ctx context.Context, bookID int64) ([]model.RoleDetail, error)
	GetRoleForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.BookContributorRole, error)
	// ListRolesByContributorWithTx locks and returns every assignment of contributorID
	ListRolesByContributorWithTx(ctx context.Context, tx pgx.Tx, contributorID int64) ([]model.BookContributorRole, error)

	// RoleExistsWithTx reports whether the triple exists on a row other than excludeID
	RoleExistsWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) (bool, error)
	// RoleHoldersWithTx returns the contributors other than a.ContributorID holding
	// a.Role on a.BookID, ignoring row excludeID
	RoleHoldersWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) ([]model.Contributor, error)

	CreateRoleWithTx(ctx context.Context, tx pgx.Tx, role *model.BookContributorRole) error
	UpdateRoleWithTx(ctx context.Context, tx pgx.Tx, role *model.BookContributorRole) error
	DeleteRoleWithTx(ctx context.Context, tx pgx.Tx, id int64) error

	// BookImprint returns the imprint of bookID, found is false when the book does not exist
	BookImprint(ctx context.Context, bookID int64) (imprintID int64, found bool, err error)
}
