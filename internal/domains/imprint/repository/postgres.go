package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	accessModel "pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/imprint/model"
	"pubops-backend/internal/shared/utils"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const imprintColumns = `id, name, accounting_code, is_active, created_by, created_at, updated_by, updated_at`

func scanImprint(row pgx.Row) (*model.Imprint, error) {
	var imp model.Imprint
	err := row.Scan(
		&imp.ID, &imp.Name, &imp.AccountingCode, &imp.IsActive,
		&imp.CreatedBy, &imp.CreatedAt, &imp.UpdatedBy, &imp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

func (r *postgresRepository) Find(ctx context.Context, filter model.Filter, scope accessModel.Scope) ([]model.Imprint, int64, error) {
	var where utils.Where

	clause, args := scope.SQL("id", where.NextArg())
	where.AddRaw(clause, args...)

	if filter.Q != "" {
		where.Add(`(name ILIKE $%d ESCAPE '\' OR accounting_code ILIKE $%[1]d ESCAPE '\')`, utils.ContainsPattern(filter.Q))
	}
	if filter.Active != nil {
		where.Add("is_active = $%d", *filter.Active)
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM imprints WHERE ` + where.SQL()
	if err := r.pool.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count imprints: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM imprints
		WHERE %s
		ORDER BY name, id
		LIMIT $%d OFFSET $%d
	`, imprintColumns, where.SQL(), where.NextArg(), where.NextArg()+1)

	rows, err := r.pool.Query(ctx, query, append(where.Args(), filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("query imprints: %w", err)
	}
	defer rows.Close()

	imprints := []model.Imprint{}
	for rows.Next() {
		imp, err := scanImprint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan imprint: %w", err)
		}
		imprints = append(imprints, *imp)
	}
	return imprints, total, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Imprint, error) {
	query := `SELECT ` + imprintColumns + ` FROM imprints WHERE id = $1`
	imp, err := scanImprint(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get imprint: %w", err)
	}
	return imp, nil
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Imprint, error) {
	query := `SELECT ` + imprintColumns + ` FROM imprints WHERE id = $1 FOR UPDATE`
	imp, err := scanImprint(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock imprint: %w", err)
	}
	return imp, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, imp *model.Imprint) error {
	query := `
		INSERT INTO imprints (name, accounting_code, is_active, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, imp.Name, imp.AccountingCode, imp.IsActive, imp.CreatedBy).
		Scan(&imp.ID, &imp.CreatedAt, &imp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert imprint: %w", err)
	}
	imp.UpdatedBy = imp.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, imp *model.Imprint) error {
	query := `
		UPDATE imprints
		SET name = $2, accounting_code = $3, is_active = $4, updated_by = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, imp.ID, imp.Name, imp.AccountingCode, imp.IsActive, imp.UpdatedBy).
		Scan(&imp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update imprint: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM imprints WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete imprint: %w", err)
	}
	return nil
}
