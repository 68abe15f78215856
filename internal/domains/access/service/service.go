package service

import (
	"context"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/domains/access/repository"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

// ServiceInterface maintains the ownership mapping
type ServiceInterface interface {
	Grants(ctx context.Context, actor shared.Actor, userID int64) (*model.UserGrants, error)
	ReplaceGrants(ctx context.Context, actor shared.Actor, userID int64, kind model.Kind, ids []int64) (*model.UserGrants, error)
}

type accessService struct {
	repo repository.RepositoryInterface
	tx   database.Transactor
}

func NewAccessService(repo repository.RepositoryInterface, tx database.Transactor) ServiceInterface {
	return &accessService{repo: repo, tx: tx}
}

func (s *accessService) Grants(ctx context.Context, actor shared.Actor, userID int64) (*model.UserGrants, error) {
	if !actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}

	grants, err := s.repo.ListGrants(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &model.UserGrants{UserID: userID, Imprints: []int64{}, Books: []int64{}}
	for _, g := range grants {
		switch g.Kind {
		case model.KindImprint:
			out.Imprints = append(out.Imprints, g.ResourceID)
		case model.KindBook:
			out.Books = append(out.Books, g.ResourceID)
		}
	}
	return out, nil
}

// ReplaceGrants sets the complete id set userID owns for kind
func (s *accessService) ReplaceGrants(ctx context.Context, actor shared.Actor, userID int64, kind model.Kind, ids []int64) (*model.UserGrants, error) {
	if !actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	if !kind.Valid() {
		return nil, model.NewInvalidKind(string(kind))
	}

	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.repo.UserExists(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewUserNotFound(userID)
		}

		missing, err := s.repo.MissingResources(ctx, tx, kind, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return model.NewUnknownResources(kind, missing)
		}

		return s.repo.ReplaceWithTx(ctx, tx, userID, kind, ids)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("actor_id", actor.ID).
		Int64("user_id", userID).
		Str("kind", string(kind)).
		Ints64("resource_ids", ids).
		Msg("access grants replaced")

	return s.Grants(ctx, actor, userID)
}
