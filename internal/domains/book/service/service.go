package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessModel "pubops-backend/internal/domains/access/model"
	accessService "pubops-backend/internal/domains/access/service"
	attachmentModel "pubops-backend/internal/domains/attachment/model"
	"pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/domains/book/repository"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

type ServiceInterface interface {
	Find(ctx context.Context, actor shared.Actor, filter model.Filter) ([]model.BookDetail, int64, error)
	Get(ctx context.Context, actor shared.Actor, id int64) (*model.BookDetail, error)
	Create(ctx context.Context, actor shared.Actor, req model.CreateBookRequest) (*model.Book, error)
	Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateBookRequest) (*model.Book, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error
}

type bookService struct {
	repo     repository.RepositoryInterface
	tx       database.Transactor
	resolver accessService.ScopeResolver
	history  recorder.ChangeRecorder
	jobs     queue.Enqueuer
}

func NewBookService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	resolver accessService.ScopeResolver,
	history recorder.ChangeRecorder,
	jobs queue.Enqueuer,
) ServiceInterface {
	return &bookService{repo: repo, tx: tx, resolver: resolver, history: history, jobs: jobs}
}

// Find always ANDs the caller's filters with the book scope, so asking for
// an imprint outside the scope yields an empty page rather than an error.
func (s *bookService) Find(ctx context.Context, actor shared.Actor, filter model.Filter) ([]model.BookDetail, int64, error) {
	if err := apperror.Validate(filter); err != nil {
		return nil, 0, err
	}

	scope, err := s.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.Find(ctx, filter, scope)
}

func (s *bookService) Get(ctx context.Context, actor shared.Actor, id int64) (*model.BookDetail, error) {
	scope, err := s.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, model.NewBookNotFound(id)
	}
	if err := accessModel.CheckRead(scope.Allows(b.ID, b.ImprintID), model.NewBookNotFound(id)); err != nil {
		return nil, err
	}
	return b, nil
}

// Create requires the target imprint to be inside the actor's imprint scope
func (s *bookService) Create(ctx context.Context, actor shared.Actor, req model.CreateBookRequest) (*model.Book, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	imprints, err := s.resolver.Resolve(ctx, actor, accessModel.KindImprint)
	if err != nil {
		return nil, err
	}
	if err := accessModel.CheckWrite(imprints.Allows(req.ImprintID)); err != nil {
		return nil, err
	}

	b := req.ToBook()
	b.CreatedBy = &actor.ID

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		exists, err := s.repo.LockImprintWithTx(ctx, tx, b.ImprintID)
		if err != nil {
			return err
		}
		if !exists {
			return model.NewUnknownImprint(b.ImprintID)
		}

		if err := s.repo.CreateWithTx(ctx, tx, b); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityBook, b.ID, actor, b)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("book_id", b.ID).Int64("imprint_id", b.ImprintID).Int64("actor_id", actor.ID).Msg("book created")
	return b, nil
}

// Patch applies a partial update and records the field diff. Moving the
// book to another imprint needs write access to both imprints.
func (s *bookService) Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateBookRequest) (*model.Book, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	scope, err := s.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return nil, err
	}

	var updated *model.Book
	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewBookNotFound(id)
		}
		if err := accessModel.CheckWrite(scope.Allows(current.ID, current.ImprintID)); err != nil {
			return err
		}

		before := *current
		req.ApplyTo(current)

		if current.ImprintID != before.ImprintID {
			if err := s.checkMove(ctx, tx, scope.Imprints, before.ImprintID, current.ImprintID); err != nil {
				return err
			}
		}

		current.UpdatedBy = &actor.ID
		if err := s.repo.UpdateWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityBook, id, actor, before, current); err != nil {
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

func (s *bookService) checkMove(ctx context.Context, tx pgx.Tx, imprints accessModel.Scope, from, to int64) error {
	if err := accessModel.CheckWrite(imprints.Allows(from) && imprints.Allows(to)); err != nil {
		return err
	}
	exists, err := s.repo.LockImprintWithTx(ctx, tx, to)
	if err != nil {
		return err
	}
	if !exists {
		return model.NewUnknownImprint(to)
	}
	return nil
}

// Remove deletes the book and its dependent rows, then queues removal of
// every stored object under the book's key prefix.
func (s *bookService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	scope, err := s.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return err
	}

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewBookNotFound(id)
		}
		if err := accessModel.CheckWrite(scope.Allows(current.ID, current.ImprintID)); err != nil {
			return err
		}

		dependents, err := s.repo.ListDependentsWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		for _, d := range dependents {
			if err := s.history.RecordDelete(ctx, tx, d.EntityType, d.ID, actor, d.Row); err != nil {
				return err
			}
		}

		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityBook, id, actor, current)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("book_id", id).Int64("actor_id", actor.ID).Msg("book removed")

	payload := shared.DeleteObjectPayload{Prefix: attachmentModel.BookPrefix(id)}
	if _, err := queue.Enqueue(ctx, s.jobs, shared.TypeDeleteAttachmentObject, payload,
		asynq.Queue(shared.QueueMaintenance), asynq.MaxRetry(5)); err != nil {
		log.Warn().Err(err).Int64("book_id", id).Msg("failed to enqueue attachment cleanup")
	}
	return nil
}
