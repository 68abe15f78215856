package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/attachment/model"
)

type RepositoryInterface interface {
	ListByBook(ctx context.Context, bookID int64) ([]model.Attachment, error)
	// GetByID returns nil when the attachment does not exist
	GetByID(ctx context.Context, id int64) (*model.Attachment, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Attachment, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, a *model.Attachment) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}
