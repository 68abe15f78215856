package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/release/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const releaseColumns = `r.id, r.book_id, r.format, r.isbn, r.release_date, r.status,
	r.created_by, r.created_at, r.updated_by, r.updated_at`

const priceColumns = `id, release_id, currency, amount, created_by, created_at, updated_by, updated_at`

func scanRelease(row pgx.Row, extra ...any) (*model.Release, error) {
	var r model.Release
	dest := []any{
		&r.ID, &r.BookID, &r.Format, &r.ISBN, &r.ReleaseDate, &r.Status,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedBy, &r.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanPrice(row pgx.Row) (*model.Price, error) {
	var p model.Price
	err := row.Scan(&p.ID, &p.ReleaseID, &p.Currency, &p.Amount, &p.CreatedBy, &p.CreatedAt, &p.UpdatedBy, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// querier is satisfied by both the pool and a transaction
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *postgresRepository) ListByBook(ctx context.Context, bookID int64) ([]model.ReleaseDetail, error) {
	query := `
		SELECT ` + releaseColumns + `, b.title
		FROM releases r
		JOIN books b ON b.id = r.book_id
		WHERE r.book_id = $1
		ORDER BY r.release_date NULLS LAST, r.id
	`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("query releases: %w", err)
	}
	defer rows.Close()

	releases := []model.ReleaseDetail{}
	byID := map[int64]int{}
	for rows.Next() {
		var title string
		rel, err := scanRelease(rows, &title)
		if err != nil {
			return nil, fmt.Errorf("scan release: %w", err)
		}
		byID[rel.ID] = len(releases)
		releases = append(releases, model.ReleaseDetail{Release: *rel, BookTitle: title, Prices: []model.Price{}})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(releases) == 0 {
		return releases, nil
	}

	ids := make([]int64, 0, len(releases))
	for _, rel := range releases {
		ids = append(ids, rel.ID)
	}
	prices, err := listPrices(ctx, r.pool, `release_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range prices {
		i := byID[p.ReleaseID]
		releases[i].Prices = append(releases[i].Prices, p)
	}
	return releases, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.ReleaseDetail, error) {
	query := `
		SELECT ` + releaseColumns + `, b.title
		FROM releases r
		JOIN books b ON b.id = r.book_id
		WHERE r.id = $1
	`
	var title string
	rel, err := scanRelease(r.pool.QueryRow(ctx, query, id), &title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get release: %w", err)
	}

	prices, err := listPrices(ctx, r.pool, `release_id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &model.ReleaseDetail{Release: *rel, BookTitle: title, Prices: prices}, nil
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Release, error) {
	query := `SELECT ` + releaseColumns + ` FROM releases r WHERE r.id = $1 FOR UPDATE`
	rel, err := scanRelease(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock release: %w", err)
	}
	return rel, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, rel *model.Release) error {
	query := `
		INSERT INTO releases (book_id, format, isbn, release_date, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		rel.BookID, string(rel.Format), rel.ISBN, rel.ReleaseDate, string(rel.Status), rel.CreatedBy,
	).Scan(&rel.ID, &rel.CreatedAt, &rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert release: %w", err)
	}
	rel.UpdatedBy = rel.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, rel *model.Release) error {
	query := `
		UPDATE releases
		SET format = $2, isbn = $3, release_date = $4, status = $5, updated_by = $6, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		rel.ID, string(rel.Format), rel.ISBN, rel.ReleaseDate, string(rel.Status), rel.UpdatedBy,
	).Scan(&rel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update release: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM releases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete release: %w", err)
	}
	return nil
}

// ============================================
// Prices
// ============================================

func listPrices(ctx context.Context, q querier, where string, arg any) ([]model.Price, error) {
	query := `SELECT ` + priceColumns + ` FROM release_prices WHERE ` + where + ` ORDER BY currency, id`
	rows, err := q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	prices := []model.Price{}
	for rows.Next() {
		p, err := scanPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, *p)
	}
	return prices, rows.Err()
}

func (r *postgresRepository) ListPricesWithTx(ctx context.Context, tx pgx.Tx, releaseID int64) ([]model.Price, error) {
	return listPrices(ctx, tx, `release_id = $1`, releaseID)
}

func (r *postgresRepository) GetPriceForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Price, error) {
	query := `SELECT ` + priceColumns + ` FROM release_prices WHERE id = $1 FOR UPDATE`
	p, err := scanPrice(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock price: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) CreatePriceWithTx(ctx context.Context, tx pgx.Tx, p *model.Price) error {
	query := `
		INSERT INTO release_prices (release_id, currency, amount, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, p.ReleaseID, p.Currency, p.Amount, p.CreatedBy).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert price: %w", err)
	}
	p.UpdatedBy = p.CreatedBy
	return nil
}

func (r *postgresRepository) UpdatePriceWithTx(ctx context.Context, tx pgx.Tx, p *model.Price) error {
	query := `
		UPDATE release_prices
		SET currency = $2, amount = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	if err := tx.QueryRow(ctx, query, p.ID, p.Currency, p.Amount, p.UpdatedBy).Scan(&p.UpdatedAt); err != nil {
		return fmt.Errorf("update price: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeletePriceWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM release_prices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete price: %w", err)
	}
	return nil
}
