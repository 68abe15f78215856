package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/domains/user/model"
	"pubops-backend/pkg/cache"
)

const profileTTL = 5 * time.Minute

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository reads profiles through cache. A nil cache disables caching.
func NewPostgresRepository(pool *pgxpool.Pool, c cache.Cache) RepositoryInterface {
	return &postgresRepository{pool: pool, cache: c}
}

func profileKey(id int64) string {
	return fmt.Sprintf("pubops:user:%d", id)
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	key := profileKey(id)
	if r.cache != nil {
		var u model.User
		found, err := r.cache.Get(ctx, key, &u)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("user cache read failed")
		}
		if found {
			return &u, nil
		}
	}

	query := `SELECT id, email, full_name, roles, created_at, updated_at FROM users WHERE id = $1`

	var u model.User
	var roles pq.StringArray
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.FullName, &roles, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	u.Roles = []string(roles)
	if u.Roles == nil {
		u.Roles = []string{}
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, u, profileTTL); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("user cache write failed")
		}
	}
	return &u, nil
}
