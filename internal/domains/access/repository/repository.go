package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/access/model"
)

// RepositoryInterface reads and maintains the ownership mapping
type RepositoryInterface interface {
	// ListResourceIDs returns the ids userID owns for kind. No rows is not an error.
	ListResourceIDs(ctx context.Context, userID int64, kind model.Kind) ([]int64, error)
	ListGrants(ctx context.Context, userID int64) ([]model.Grant, error)

	UserExists(ctx context.Context, tx pgx.Tx, userID int64) (bool, error)
	// MissingResources returns the ids in ids that have no row in the kind's table
	MissingResources(ctx context.Context, tx pgx.Tx, kind model.Kind, ids []int64) ([]int64, error)
	ReplaceWithTx(ctx context.Context, tx pgx.Tx, userID int64, kind model.Kind, ids []int64) error
}
