package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/attachment/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const attachmentColumns = `id, book_id, file_name, content_type, size_bytes, object_key,
	created_by, created_at, updated_by, updated_at`

func scanAttachment(row pgx.Row) (*model.Attachment, error) {
	var a model.Attachment
	err := row.Scan(
		&a.ID, &a.BookID, &a.FileName, &a.ContentType, &a.SizeBytes, &a.ObjectKey,
		&a.CreatedBy, &a.CreatedAt, &a.UpdatedBy, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID int64) ([]model.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE book_id = $1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("query attachments: %w", err)
	}
	defer rows.Close()

	out := []model.Attachment{}
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Attachment, error) {
	a, err := scanAttachment(r.pool.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Attachment, error) {
	a, err := scanAttachment(tx.QueryRow(ctx, `SELECT `+attachmentColumns+` FROM attachments WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock attachment: %w", err)
	}
	return a, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, a *model.Attachment) error {
	query := `
		INSERT INTO attachments (book_id, file_name, content_type, size_bytes, object_key, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, a.BookID, a.FileName, a.ContentType, a.SizeBytes, a.ObjectKey, a.CreatedBy).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert attachment: %w", err)
	}
	a.UpdatedBy = a.CreatedBy
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	return nil
}
