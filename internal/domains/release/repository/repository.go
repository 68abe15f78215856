package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/release/model"
)

type RepositoryInterface interface {
	ReleaseRepository
	PriceRepository
}

type ReleaseRepository interface {
	// ListByBook returns the book's releases with their prices, ordered by date
	ListByBook(ctx context.Context, bookID int64) ([]model.ReleaseDetail, error)
	// GetByID returns nil when the release does not exist
	GetByID(ctx context.Context, id int64) (*model.ReleaseDetail, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Release, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, r *model.Release) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, r *model.Release) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type PriceRepository interface {
	ListPricesWithTx(ctx context.Context, tx pgx.Tx, releaseID int64) ([]model.Price, error)
	GetPriceForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Price, error)
	CreatePriceWithTx(ctx context.Context, tx pgx.Tx, p *model.Price) error
	UpdatePriceWithTx(ctx context.Context, tx pgx.Tx, p *model.Price) error
	DeletePriceWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}
