package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/access/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ListResourceIDs(ctx context.Context, userID int64, kind model.Kind) ([]int64, error) {
	query := `
		SELECT resource_id
		FROM user_resource_access
		WHERE user_id = $1 AND resource_kind = $2
		ORDER BY resource_id
	`

	rows, err := r.pool.Query(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("query resource access: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan resource access: %w", err)
	}
	return ids, nil
}

func (r *postgresRepository) ListGrants(ctx context.Context, userID int64) ([]model.Grant, error) {
	query := `
		SELECT user_id, resource_kind, resource_id, created_at
		FROM user_resource_access
		WHERE user_id = $1
		ORDER BY resource_kind, resource_id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer rows.Close()

	var grants []model.Grant
	for rows.Next() {
		var g model.Grant
		var kind string
		if err := rows.Scan(&g.UserID, &kind, &g.ResourceID, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan grant: %w", err)
		}
		g.Kind = model.Kind(kind)
		grants = append(grants, g)
	}
	return grants, rows.Err()
}

func (r *postgresRepository) UserExists(ctx context.Context, tx pgx.Tx, userID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	return exists, nil
}

var kindTables = map[model.Kind]string{
	model.KindImprint: "imprints",
	model.KindBook:    "books",
}

func (r *postgresRepository) MissingResources(ctx context.Context, tx pgx.Tx, kind model.Kind, ids []int64) ([]int64, error) {
	table, ok := kindTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT want.id
		FROM unnest($1::bigint[]) AS want(id)
		LEFT JOIN %s t ON t.id = want.id
		WHERE t.id IS NULL
		ORDER BY want.id
	`, table)

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("check resources: %w", err)
	}

	missing, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan missing resources: %w", err)
	}
	return missing, nil
}

// ReplaceWithTx swaps the user's whole id set for kind
func (r *postgresRepository) ReplaceWithTx(ctx context.Context, tx pgx.Tx, userID int64, kind model.Kind, ids []int64) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM user_resource_access WHERE user_id = $1 AND resource_kind = $2`,
		userID, string(kind),
	); err != nil {
		return fmt.Errorf("clear grants: %w", err)
	}

	if len(ids) == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO user_resource_access (user_id, resource_kind, resource_id)
		SELECT $1, $2, unnest($3::bigint[])
		ON CONFLICT DO NOTHING
	`, userID, string(kind), ids)
	if err != nil {
		return fmt.Errorf("insert grants: %w", err)
	}
	return nil
}
