package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	accessModel "pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/imprint/model"
)

type RepositoryInterface interface {
	// Find returns one page of imprints inside scope plus the total
	Find(ctx context.Context, filter model.Filter, scope accessModel.Scope) ([]model.Imprint, int64, error)
	// GetByID returns nil when the imprint does not exist
	GetByID(ctx context.Context, id int64) (*model.Imprint, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Imprint, error)

	CreateWithTx(ctx context.Context, tx pgx.Tx, imp *model.Imprint) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, imp *model.Imprint) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}
