package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	accessModel "pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/book/model"
	historyModel "pubops-backend/internal/domains/history/model"
)

// Dependent is a row removed by cascade when its book is deleted
type Dependent struct {
	EntityType historyModel.EntityType
	ID         int64
	Row        map[string]any
}

type RepositoryInterface interface {
	// Find returns one page of books inside scope plus the total
	Find(ctx context.Context, filter model.Filter, scope accessModel.BookScope) ([]model.BookDetail, int64, error)
	// GetByID returns nil when the book does not exist
	GetByID(ctx context.Context, id int64) (*model.BookDetail, error)
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error)
	// BookImprint returns the owning imprint; found is false for an unknown book
	BookImprint(ctx context.Context, bookID int64) (imprintID int64, found bool, err error)

	// LockImprintWithTx share-locks the imprint row so it cannot be removed
	// before the transaction commits. Returns false when it does not exist.
	LockImprintWithTx(ctx context.Context, tx pgx.Tx, imprintID int64) (bool, error)

	CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error
	// ListDependentsWithTx returns the rows a delete of the book cascades to,
	// prices first so they precede their release.
	ListDependentsWithTx(ctx context.Context, tx pgx.Tx, bookID int64) ([]Dependent, error)
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error
}
