package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/marketing/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const itemColumns = `id, book_id, task, due_date, completed, completed_at, notes,
	created_by, created_at, updated_by, updated_at`

func scanItem(row pgx.Row) (*model.ChecklistItem, error) {
	var i model.ChecklistItem
	err := row.Scan(
		&i.ID, &i.BookID, &i.Task, &i.DueDate, &i.Completed, &i.CompletedAt, &i.Notes,
		&i.CreatedBy, &i.CreatedAt, &i.UpdatedBy, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID int64) ([]model.ChecklistItem, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM marketing_checklist_items
		WHERE book_id = $1
		ORDER BY completed, due_date NULLS LAST, id
	`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("query checklist: %w", err)
	}
	defer rows.Close()

	items := []model.ChecklistItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.ChecklistItem, error) {
	item, err := scanItem(tx.QueryRow(ctx, `SELECT `+itemColumns+` FROM marketing_checklist_items WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock checklist item: %w", err)
	}
	return item, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) error {
	query := `
		INSERT INTO marketing_checklist_items (book_id, task, due_date, completed, completed_at, notes, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		item.BookID, item.Task, item.DueDate, item.Completed, item.CompletedAt, item.Notes, item.CreatedBy,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert checklist item: %w", err)
	}
	item.UpdatedBy = item.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, item *model.ChecklistItem) error {
	query := `
		UPDATE marketing_checklist_items
		SET task = $2, due_date = $3, completed = $4, completed_at = $5, notes = $6,
		    updated_by = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		item.ID, item.Task, item.DueDate, item.Completed, item.CompletedAt, item.Notes, item.UpdatedBy,
	).Scan(&item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update checklist item: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM marketing_checklist_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete checklist item: %w", err)
	}
	return nil
}
