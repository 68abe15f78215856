package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessModel "pubops-backend/internal/domains/access/model"
	accessService "pubops-backend/internal/domains/access/service"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/domains/imprint/model"
	"pubops-backend/internal/domains/imprint/repository"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

type ServiceInterface interface {
	Find(ctx context.Context, actor shared.Actor, filter model.Filter) ([]model.Imprint, int64, error)
	Get(ctx context.Context, actor shared.Actor, id int64) (*model.Imprint, error)
	Create(ctx context.Context, actor shared.Actor, req model.CreateImprintRequest) (*model.Imprint, error)
	Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateImprintRequest) (*model.Imprint, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error
}

type imprintService struct {
	repo     repository.RepositoryInterface
	tx       database.Transactor
	resolver accessService.ScopeResolver
	history  recorder.ChangeRecorder
}

func NewImprintService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	resolver accessService.ScopeResolver,
	history recorder.ChangeRecorder,
) ServiceInterface {
	return &imprintService{repo: repo, tx: tx, resolver: resolver, history: history}
}

func (s *imprintService) Find(ctx context.Context, actor shared.Actor, filter model.Filter) ([]model.Imprint, int64, error) {
	scope, err := s.resolver.Resolve(ctx, actor, accessModel.KindImprint)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Find(ctx, filter, scope)
}

func (s *imprintService) Get(ctx context.Context, actor shared.Actor, id int64) (*model.Imprint, error) {
	scope, err := s.resolver.Resolve(ctx, actor, accessModel.KindImprint)
	if err != nil {
		return nil, err
	}
	if err := accessModel.CheckRead(scope.Allows(id), model.NewImprintNotFound(id)); err != nil {
		return nil, err
	}

	imp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if imp == nil {
		return nil, model.NewImprintNotFound(id)
	}
	return imp, nil
}

func (s *imprintService) Create(ctx context.Context, actor shared.Actor, req model.CreateImprintRequest) (*model.Imprint, error) {
	if !actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	imp := req.ToImprint()
	imp.CreatedBy = &actor.ID

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateWithTx(ctx, tx, imp); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityImprint, imp.ID, actor, imp)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("imprint_id", imp.ID).Int64("actor_id", actor.ID).Msg("imprint created")
	return imp, nil
}

func (s *imprintService) Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateImprintRequest) (*model.Imprint, error) {
	if !actor.IsAdmin() {
		return nil, apperror.AdminRequired()
	}
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.Imprint
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewImprintNotFound(id)
		}

		before := *current
		req.ApplyTo(current)
		current.UpdatedBy = &actor.ID

		if err := s.repo.UpdateWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityImprint, id, actor, before, current); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Remove fails with IMPRINT_HAS_BOOKS while books still reference the imprint
func (s *imprintService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperror.AdminRequired()
	}

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewImprintNotFound(id)
		}

		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityImprint, id, actor, current)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("imprint_id", id).Int64("actor_id", actor.ID).Msg("imprint removed")
	return nil
}
