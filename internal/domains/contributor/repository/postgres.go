package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/shared/utils"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{pool: pool}
}

// ============================================
// Contributors
// ============================================

const contributorColumns = `c.id, c.published_name, c.legal_name, c.email, c.bio, c.website,
	c.created_by, c.created_at, c.updated_by, c.updated_at`

func scanContributor(row pgx.Row) (*model.Contributor, error) {
	var c model.Contributor
	err := row.Scan(
		&c.ID, &c.PublishedName, &c.LegalName, &c.Email, &c.Bio, &c.Website,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedBy, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func collectContributors(rows pgx.Rows) ([]model.Contributor, error) {
	defer rows.Close()
	out := []model.Contributor{}
	for rows.Next() {
		c, err := scanContributor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contributor: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *postgresRepository) Find(ctx context.Context, filter model.Filter) ([]model.Contributor, int64, error) {
	var where utils.Where
	if filter.Q != "" {
		where.Add(`(c.published_name ILIKE $%d ESCAPE '\' OR c.legal_name ILIKE $%[1]d ESCAPE '\')`, utils.ContainsPattern(filter.Q))
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contributors c WHERE `+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contributors: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM contributors c
		WHERE %s
		ORDER BY c.published_name, c.id
		LIMIT $%d OFFSET $%d
	`, contributorColumns, where.SQL(), where.NextArg(), where.NextArg()+1)

	rows, err := r.pool.Query(ctx, query, append(where.Args(), filter.Page.Limit, filter.Page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("query contributors: %w", err)
	}
	contributors, err := collectContributors(rows)
	if err != nil {
		return nil, 0, err
	}
	return contributors, total, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*model.Contributor, error) {
	c, err := scanContributor(r.pool.QueryRow(ctx, `SELECT `+contributorColumns+` FROM contributors c WHERE c.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contributor: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Contributor, error) {
	c, err := scanContributor(tx.QueryRow(ctx, `SELECT `+contributorColumns+` FROM contributors c WHERE c.id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock contributor: %w", err)
	}
	return c, nil
}

func (r *postgresRepository) FindByPublishedNameWithTx(ctx context.Context, tx pgx.Tx, normalized string) ([]model.Contributor, error) {
	query := `
		SELECT ` + contributorColumns + `
		FROM contributors c
		WHERE lower(btrim(c.published_name)) = $1
		ORDER BY c.id
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, normalized)
	if err != nil {
		return nil, fmt.Errorf("find contributors by name: %w", err)
	}
	return collectContributors(rows)
}

func (r *postgresRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, c *model.Contributor) error {
	query := `
		INSERT INTO contributors (published_name, legal_name, email, bio, website, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, c.PublishedName, c.LegalName, c.Email, c.Bio, c.Website, c.CreatedBy).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contributor: %w", err)
	}
	c.UpdatedBy = c.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateWithTx(ctx context.Context, tx pgx.Tx, c *model.Contributor) error {
	query := `
		UPDATE contributors
		SET published_name = $2, legal_name = $3, email = $4, bio = $5, website = $6,
		    updated_by = $7, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, c.ID, c.PublishedName, c.LegalName, c.Email, c.Bio, c.Website, c.UpdatedBy).
		Scan(&c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update contributor: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM contributors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete contributor: %w", err)
	}
	return nil
}

// ============================================
// Role assignments
// ============================================

const roleColumns = `r.id, r.book_id, r.contributor_id, r.role, r.created_by, r.created_at, r.updated_by, r.updated_at`

func scanRole(row pgx.Row, extra ...any) (*model.BookContributorRole, error) {
	var role model.BookContributorRole
	dest := []any{
		&role.ID, &role.BookID, &role.ContributorID, &role.Role,
		&role.CreatedBy, &role.CreatedAt, &role.UpdatedBy, &role.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *postgresRepository) ListRolesByBook(ctx context.Context, bookID int64) ([]model.RoleDetail, error) {
	query := `
		SELECT ` + roleColumns + `, c.published_name, c.legal_name
		FROM book_contributor_roles r
		JOIN contributors c ON c.id = r.contributor_id
		WHERE r.book_id = $1
		ORDER BY r.role, c.published_name, r.id
	`
	rows, err := r.pool.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	out := []model.RoleDetail{}
	for rows.Next() {
		var d model.RoleDetail
		role, err := scanRole(rows, &d.PublishedName, &d.LegalName)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		d.BookContributorRole = *role
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepository) GetRoleForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.BookContributorRole, error) {
	role, err := scanRole(tx.QueryRow(ctx, `SELECT `+roleColumns+` FROM book_contributor_roles r WHERE r.id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock role: %w", err)
	}
	return role, nil
}

func (r *postgresRepository) ListRolesByContributorWithTx(ctx context.Context, tx pgx.Tx, contributorID int64) ([]model.BookContributorRole, error) {
	query := `
		SELECT ` + roleColumns + `
		FROM book_contributor_roles r
		WHERE r.contributor_id = $1
		ORDER BY r.book_id, r.role, r.id
		FOR UPDATE
	`
	rows, err := tx.Query(ctx, query, contributorID)
	if err != nil {
		return nil, fmt.Errorf("query contributor roles: %w", err)
	}
	defer rows.Close()

	out := []model.BookContributorRole{}
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, *role)
	}
	return out, rows.Err()
}

func (r *postgresRepository) RoleExistsWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM book_contributor_roles
			WHERE book_id = $1 AND contributor_id = $2 AND role = $3 AND id <> $4
		)
	`
	var exists bool
	if err := tx.QueryRow(ctx, query, a.BookID, a.ContributorID, string(a.Role), excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check role triple: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) RoleHoldersWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) ([]model.Contributor, error) {
	query := `
		SELECT ` + contributorColumns + `
		FROM book_contributor_roles r
		JOIN contributors c ON c.id = r.contributor_id
		WHERE r.book_id = $1 AND r.role = $2 AND r.contributor_id <> $3 AND r.id <> $4
		ORDER BY c.id
	`
	rows, err := tx.Query(ctx, query, a.BookID, string(a.Role), a.ContributorID, excludeID)
	if err != nil {
		return nil, fmt.Errorf("query role holders: %w", err)
	}
	return collectContributors(rows)
}

func (r *postgresRepository) CreateRoleWithTx(ctx context.Context, tx pgx.Tx, role *model.BookContributorRole) error {
	query := `
		INSERT INTO book_contributor_roles (book_id, contributor_id, role, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $4)
		RETURNING id, created_at, updated_at
	`
	err := tx.QueryRow(ctx, query, role.BookID, role.ContributorID, string(role.Role), role.CreatedBy).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert role: %w", err)
	}
	role.UpdatedBy = role.CreatedBy
	return nil
}

func (r *postgresRepository) UpdateRoleWithTx(ctx context.Context, tx pgx.Tx, role *model.BookContributorRole) error {
	query := `
		UPDATE book_contributor_roles
		SET contributor_id = $2, role = $3, updated_by = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := tx.QueryRow(ctx, query, role.ID, role.ContributorID, string(role.Role), role.UpdatedBy).
		Scan(&role.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteRoleWithTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_contributor_roles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return nil
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
