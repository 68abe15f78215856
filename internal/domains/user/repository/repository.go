package repository

import (
	"context"

	"pubops-backend/internal/domains/user/model"
)

type RepositoryInterface interface {
	// FindByID returns nil when the user does not exist
	FindByID(ctx context.Context, id int64) (*model.User, error)
}
