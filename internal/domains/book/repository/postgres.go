package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	accessModel "pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/book/model"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/shared/utils"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

const bookColumns = `b.id, b.title, b.subtitle, b.isbn, b.fk_imprint, b.status, b.pub_date, b.page_count,
	b.keywords, b.description, b.created_by, b.created_at, b.updated_by, b.updated_at`

func scanBook(row pgx.Row, extra ...any) (*model.Book, error) {
	var b model.Book
	var keywords pq.StringArray
	dest := []any{
		&b.ID, &b.Title, &b.Subtitle, &b.ISBN, &b.ImprintID, &b.Status, &b.PubDate, &b.PageCount,
		&keywords, &b.Description, &b.CreatedBy, &b.CreatedAt, &b.UpdatedBy, &b.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	b.Keywords = []string(keywords)
	if b.Keywords == nil {
		b.Keywords = []string{}
	}
	return &b, nil
}

func scanDetail(row pgx.Row) (*model.BookDetail, error) {
	var imprintName string
	b, err := scanBook(row, &imprintName)
	if err != nil {
		return nil, err
	}
	return &model.BookDetail{Book: *b, ImprintName: imprintName}, nil
}

func (r *postgresRepository) Find(ctx context.Context, filter model.Filter, scope accessModel.BookScope) ([]model.BookDetail, int64, error) {
	var where utils.Where

	clause, args := scope.SQL("b.fk_imprint", "b.id", where.NextArg())
	where.AddRaw(clause, args...)

	if filter.ImprintID > 0 {
		where.Add("b.fk_imprint = $%d", filter.ImprintID)
	}
	if filter.Status != "" {
		where.Add("b.status = $%d", string(filter.Status))
	}
	if filter.Q != "" {
		where.Add(`b.title ILIKE $%d ESCAPE '\'`, utils.ContainsPattern(filter.Q))
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM books b WHERE ` + where.SQL()
	if err := r.pool.QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s, i.name
		FROM books b
		JOIN imprints i ON i.id = b.fk_imprint
		WHERE %s
		ORDER BY b.title, b.id
		LIMIT $%d OFFSET $%d
	`, bookColumns, where.SQL(), where.NextArg(), where.NextArg()+1)

	rows, err := r.pool.Query(ctx, query, append(where.Args(), filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := []model.BookDetail{}
	for rows.Next() {
		b, err := scanDetail(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, *b)
	}
	return books, total, rows.Err()
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.BookDetail, error) {
	query := `
		SELECT ` + bookColumns + `, i.name
		FROM books b
		JOIN imprints i ON i.id = b.fk_imprint
		WHERE b.id = $1
	`
	b, err := scanDetail(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b WHERE b.id = $1 FOR UPDATE`
	b, err := scanBook(tx.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock book: %w", err)
	}
	return b, nil
}

func (r *postgresRepository) BookImprint(ctx context.Context, bookID int64) (int64, bool, error) {
	var imprintID int64
	err := r.pool.QueryRow(ctx, `SELECT fk_imprint FROM books WHERE id = $1`, bookID).Scan(&imprintID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get book imprint: %w", err)
	}
	return imprintID, true, nil
}

func (r *postgresRepository) LockImprintWithTx(ctx context.Context, tx pgx.Tx, imprintID int64) (bool, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM imprints WHERE id = $1 FOR SHARE`, imprintID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lock imprint: %w", err)
	}
	return true, nil
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error {
	query := `
		INSERT INTO books (title, subtitle, isbn, fk_imprint, status, pub_date, page_count,
		                   keywords, description, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query,
		b.Title, b.Subtitle, b.ISBN, b.ImprintID, string(b.Status), b.PubDate, b.PageCount,
		pq.Array(b.Keywords), b.Description, b.CreatedBy,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	b.UpdatedBy = b.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Book) error {
	query := `
		UPDATE books
		SET title = $2, subtitle = $3, isbn = $4, fk_imprint = $5, status = $6, pub_date = $7,
		    page_count = $8, keywords = $9, description = $10, updated_by = $11, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query,
		b.ID, b.Title, b.Subtitle, b.ISBN, b.ImprintID, string(b.Status), b.PubDate,
		b.PageCount, pq.Array(b.Keywords), b.Description, b.UpdatedBy,
	).Scan(&b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	return nil
}

const dependentsQuery = `
	SELECT 'price', p.id, to_jsonb(p) || jsonb_build_object('amount', p.amount::text)
	FROM release_prices p JOIN releases rl ON rl.id = p.release_id
	WHERE rl.book_id = $1
	UNION ALL
	SELECT 'release', rl.id, to_jsonb(rl) FROM releases rl WHERE rl.book_id = $1
	UNION ALL
	SELECT 'book_contributor_role', c.id, to_jsonb(c) FROM book_contributor_roles c WHERE c.book_id = $1
	UNION ALL
	SELECT 'checklist_item', m.id, to_jsonb(m) FROM marketing_checklist_items m WHERE m.book_id = $1
	UNION ALL
	SELECT 'attachment', a.id, to_jsonb(a) FROM attachments a WHERE a.book_id = $1`

func (r *postgresRepository) ListDependentsWithTx(ctx context.Context, tx pgx.Tx, bookID int64) ([]Dependent, error) {
	rows, err := tx.Query(ctx, dependentsQuery, bookID)
	if err != nil {
		return nil, fmt.Errorf("list book dependents: %w", err)
	}
	defer rows.Close()

	var out []Dependent
	for rows.Next() {
		var d Dependent
		var entityType string
		if err := rows.Scan(&entityType, &d.ID, &d.Row); err != nil {
			return nil, fmt.Errorf("scan book dependent: %w", err)
		}
		d.EntityType = historyModel.EntityType(entityType)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
