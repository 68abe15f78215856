package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/marketing/model"
)

type RepositoryInterface interface {
	// ListByBook orders open items first, then by due date
	ListByBook(ctx context.Context, bookID int64) ([]model.ChecklistItem, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.ChecklistItem, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}
