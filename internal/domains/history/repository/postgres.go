package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/shared/utils"
)

// PostgresRepository implements RepositoryInterface and OwnerLookup
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const historyColumns = `id, entity_type, entity_id, actor_id, actor_email, created_at, op, path, value`

// AppendWithTx inserts records in order. created_at defaults to
// clock_timestamp(), so records of one write keep their relative order.
func (r *PostgresRepository) AppendWithTx(ctx context.Context, tx pgx.Tx, records []model.ChangeRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO history (entity_type, entity_id, actor_id, actor_email, op, path, value)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		var value any
		if rec.Value != nil {
			value = string(rec.Value)
		}
		batch.Queue(query,
			string(rec.EntityType), rec.EntityID, rec.ActorID, rec.ActorEmail,
			string(rec.Op), rec.Path, value,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("insert history record: %w", err)
		}
	}
	return results.Close()
}

func (r *PostgresRepository) ListByEntity(ctx context.Context, entityType model.EntityType, entityID int64, page utils.Page) ([]model.ChangeRecord, int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM history WHERE entity_type = $1 AND entity_id = $2`,
		string(entityType), entityID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	query := `
		SELECT ` + historyColumns + `
		FROM history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, string(entityType), entityID, page.Limit, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("query history: %w", err)
	}

	records, err := scanRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *PostgresRepository) ListAllByEntity(ctx context.Context, entityType model.EntityType, entityID int64, limit int) ([]model.ChangeRecord, error) {
	query := `
		SELECT ` + historyColumns + `
		FROM history
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at, id
		LIMIT $3
	`
	rows, err := r.pool.Query(ctx, query, string(entityType), entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return scanRecords(rows)
}

func scanRecords(rows pgx.Rows) ([]model.ChangeRecord, error) {
	defer rows.Close()

	records := []model.ChangeRecord{}
	for rows.Next() {
		var rec model.ChangeRecord
		var entityType, op string
		var value []byte
		if err := rows.Scan(
			&rec.ID, &entityType, &rec.EntityID, &rec.ActorID, &rec.ActorEmail,
			&rec.Timestamp, &op, &rec.Path, &value,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.EntityType = model.EntityType(entityType)
		rec.Op = model.Op(op)
		if value != nil {
			rec.Value = value
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ReassignWithTx flips the transaction-local rewrite flag the
// history_append_only trigger checks, updates, and clears it again.
func (r *PostgresRepository) ReassignWithTx(ctx context.Context, tx pgx.Tx, entityType model.EntityType, fromID, toID int64) (int64, error) {
	if _, err := tx.Exec(ctx, `SELECT set_config('pubops.history_rewrite', 'on', true)`); err != nil {
		return 0, fmt.Errorf("enable history rewrite: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE history SET entity_id = $3 WHERE entity_type = $1 AND entity_id = $2`,
		string(entityType), fromID, toID,
	)
	if err != nil {
		return 0, fmt.Errorf("reassign history: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT set_config('pubops.history_rewrite', 'off', true)`); err != nil {
		return 0, fmt.Errorf("disable history rewrite: %w", err)
	}
	return tag.RowsAffected(), nil
}

var bookOwnerQueries = map[model.EntityType]string{
	model.EntityBook: `SELECT b.id, b.fk_imprint FROM books b WHERE b.id = $1`,
	model.EntityRelease: `
		SELECT b.id, b.fk_imprint FROM releases r
		JOIN books b ON b.id = r.book_id WHERE r.id = $1`,
	model.EntityPrice: `
		SELECT b.id, b.fk_imprint FROM release_prices p
		JOIN releases r ON r.id = p.release_id
		JOIN books b ON b.id = r.book_id WHERE p.id = $1`,
	model.EntityChecklistItem: `
		SELECT b.id, b.fk_imprint FROM marketing_checklist_items m
		JOIN books b ON b.id = m.book_id WHERE m.id = $1`,
	model.EntityBookContributorRole: `
		SELECT b.id, b.fk_imprint FROM book_contributor_roles bcr
		JOIN books b ON b.id = bcr.book_id WHERE bcr.id = $1`,
	model.EntityAttachment: `
		SELECT b.id, b.fk_imprint FROM attachments a
		JOIN books b ON b.id = a.book_id WHERE a.id = $1`,
}

func (r *PostgresRepository) BookOwner(ctx context.Context, entityType model.EntityType, entityID int64) (int64, int64, bool, error) {
	query, ok := bookOwnerQueries[entityType]
	if !ok {
		return 0, 0, false, fmt.Errorf("entity type %q is not owned by a book", entityType)
	}

	var bookID, imprintID int64
	err := r.pool.QueryRow(ctx, query, entityID).Scan(&bookID, &imprintID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("lookup %s owner: %w", entityType, err)
	}
	return bookID, imprintID, true, nil
}

func (r *PostgresRepository) ImprintExists(ctx context.Context, imprintID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM imprints WHERE id = $1)`, imprintID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check imprint: %w", err)
	}
	return exists, nil
}
