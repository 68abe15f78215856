package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/shared/utils"
)

// RepositoryInterface is the storage of the history table
type RepositoryInterface interface {
	AppendWithTx(ctx context.Context, tx pgx.Tx, records []model.ChangeRecord) error

	// ListByEntity returns one page in (timestamp, id) order plus the total count
	ListByEntity(ctx context.Context, entityType model.EntityType, entityID int64, page utils.Page) ([]model.ChangeRecord, int64, error)
	// ListAllByEntity returns up to limit records in (timestamp, id) order
	ListAllByEntity(ctx context.Context, entityType model.EntityType, entityID int64, limit int) ([]model.ChangeRecord, error)

	// ReassignWithTx moves every record of (entityType, fromID) to toID.
	// This is the only write besides append the table accepts.
	ReassignWithTx(ctx context.Context, tx pgx.Tx, entityType model.EntityType, fromID, toID int64) (int64, error)
}

// OwnerLookup finds which book or imprint an entity hangs off, for visibility checks
type OwnerLookup interface {
	// BookOwner returns the owning book and its imprint. found is false when the entity no longer exists.
	BookOwner(ctx context.Context, entityType model.EntityType, entityID int64) (bookID, imprintID int64, found bool, err error)
	ImprintExists(ctx context.Context, imprintID int64) (bool, error)
}
