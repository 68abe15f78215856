package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessService "pubops-backend/internal/domains/access/service"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/domains/marketing/model"
	"pubops-backend/internal/domains/marketing/repository"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

type ServiceInterface interface {
	ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.ChecklistItem, error)
	Create(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateItemRequest) (*model.ChecklistItem, error)
	Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateItemRequest) (*model.ChecklistItem, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error
}

type checklistService struct {
	repo    repository.RepositoryInterface
	tx      database.Transactor
	gate    *accessService.BookGate
	history recorder.ChangeRecorder
	now     func() time.Time
}

func NewChecklistService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	gate *accessService.BookGate,
	history recorder.ChangeRecorder,
) ServiceInterface {
	return &checklistService{repo: repo, tx: tx, gate: gate, history: history, now: time.Now}
}

func (s *checklistService) ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.ChecklistItem, error) {
	if err := s.gate.Read(ctx, actor, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

func (s *checklistService) Create(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateItemRequest) (*model.ChecklistItem, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}
	if err := s.gate.Write(ctx, actor, bookID); err != nil {
		return nil, err
	}

	item := req.ToItem(bookID, s.now())
	item.CreatedBy = &actor.ID

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateWithTx(ctx, tx, item); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityChecklistItem, item.ID, actor, item)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("item_id", item.ID).Int64("book_id", bookID).Msg("checklist item created")
	return item, nil
}

func (s *checklistService) Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateItemRequest) (*model.ChecklistItem, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.ChecklistItem
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockItem(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		before := *current
		req.ApplyTo(current, s.now())
		current.UpdatedBy = &actor.ID
		if err := s.repo.UpdateWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityChecklistItem, id, actor, before, current); err != nil {
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

func (s *checklistService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	return s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockItem(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityChecklistItem, id, actor, current)
	})
}

func (s *checklistService) lockItem(ctx context.Context, tx pgx.Tx, actor shared.Actor, id int64) (*model.ChecklistItem, error) {
	current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, model.NewItemNotFound(id)
	}
	if err := s.gate.Write(ctx, actor, current.BookID); err != nil {
		return nil, err
	}
	return current, nil
}
