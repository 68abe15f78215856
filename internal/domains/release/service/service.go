package service

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessService "pubops-backend/internal/domains/access/service"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/domains/release/model"
	"pubops-backend/internal/domains/release/repository"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

type ServiceInterface interface {
	ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.ReleaseDetail, error)
	Get(ctx context.Context, actor shared.Actor, id int64) (*model.ReleaseDetail, error)
	Create(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateReleaseRequest) (*model.Release, error)
	Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateReleaseRequest) (*model.Release, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error

	AddPrice(ctx context.Context, actor shared.Actor, releaseID int64, req model.CreatePriceRequest) (*model.Price, error)
	PatchPrice(ctx context.Context, actor shared.Actor, releaseID, priceID int64, req model.UpdatePriceRequest) (*model.Price, error)
	RemovePrice(ctx context.Context, actor shared.Actor, releaseID, priceID int64) error
}

type releaseService struct {
	repo    repository.RepositoryInterface
	tx      database.Transactor
	gate    *accessService.BookGate
	history recorder.ChangeRecorder
}

func NewReleaseService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	gate *accessService.BookGate,
	history recorder.ChangeRecorder,
) ServiceInterface {
	return &releaseService{repo: repo, tx: tx, gate: gate, history: history}
}

func (s *releaseService) ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.ReleaseDetail, error) {
	if err := s.gate.Read(ctx, actor, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

// Get hides releases of books outside the scope behind RELEASE_NOT_FOUND
func (s *releaseService) Get(ctx context.Context, actor shared.Actor, id int64) (*model.ReleaseDetail, error) {
	rel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, model.NewReleaseNotFound(id)
	}
	if err := s.gate.Read(ctx, actor, rel.BookID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, model.NewReleaseNotFound(id)
		}
		return nil, err
	}
	return rel, nil
}

func (s *releaseService) Create(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateReleaseRequest) (*model.Release, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}
	if err := s.gate.Write(ctx, actor, bookID); err != nil {
		return nil, err
	}

	rel := req.ToRelease(bookID)
	rel.CreatedBy = &actor.ID

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateWithTx(ctx, tx, rel); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityRelease, rel.ID, actor, rel)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("release_id", rel.ID).Int64("book_id", bookID).Str("format", string(rel.Format)).Msg("release created")
	return rel, nil
}

func (s *releaseService) Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateReleaseRequest) (*model.Release, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.Release
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockRelease(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		before := *current
		req.ApplyTo(current)
		current.UpdatedBy = &actor.ID
		if err := s.repo.UpdateWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityRelease, id, actor, before, current); err != nil {
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

// Remove deletes the release and, through the cascade, its prices. Both get
// remove records.
func (s *releaseService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	return s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockRelease(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		prices, err := s.repo.ListPricesWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}

		for _, p := range prices {
			if err := s.history.RecordDelete(ctx, tx, historyModel.EntityPrice, p.ID, actor, p); err != nil {
				return err
			}
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityRelease, id, actor, current)
	})
}

// lockRelease loads the release FOR UPDATE and checks write access to its book
func (s *releaseService) lockRelease(ctx context.Context, tx pgx.Tx, actor shared.Actor, id int64) (*model.Release, error) {
	current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, model.NewReleaseNotFound(id)
	}
	if err := s.gate.Write(ctx, actor, current.BookID); err != nil {
		return nil, err
	}
	return current, nil
}

// ============================================
// Prices
// ============================================

func (s *releaseService) AddPrice(ctx context.Context, actor shared.Actor, releaseID int64, req model.CreatePriceRequest) (*model.Price, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	p := req.ToPrice(releaseID)
	p.CreatedBy = &actor.ID

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.lockRelease(ctx, tx, actor, releaseID); err != nil {
			return err
		}
		if err := s.repo.CreatePriceWithTx(ctx, tx, p); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityPrice, p.ID, actor, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *releaseService) PatchPrice(ctx context.Context, actor shared.Actor, releaseID, priceID int64, req model.UpdatePriceRequest) (*model.Price, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.Price
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockPrice(ctx, tx, actor, releaseID, priceID)
		if err != nil {
			return err
		}

		before := *current
		req.ApplyTo(current)
		current.UpdatedBy = &actor.ID
		if err := s.repo.UpdatePriceWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityPrice, priceID, actor, before, current); err != nil {
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

func (s *releaseService) RemovePrice(ctx context.Context, actor shared.Actor, releaseID, priceID int64) error {
	return s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.lockPrice(ctx, tx, actor, releaseID, priceID)
		if err != nil {
			return err
		}
		if err := s.repo.DeletePriceWithTx(ctx, tx, priceID); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityPrice, priceID, actor, current)
	})
}

// lockPrice locks the release first so price edits serialize with release removal
func (s *releaseService) lockPrice(ctx context.Context, tx pgx.Tx, actor shared.Actor, releaseID, priceID int64) (*model.Price, error) {
	if _, err := s.lockRelease(ctx, tx, actor, releaseID); err != nil {
		return nil, err
	}
	p, err := s.repo.GetPriceForUpdateWithTx(ctx, tx, priceID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.ReleaseID != releaseID {
		return nil, model.NewPriceNotFound(priceID)
	}
	return p, nil
}
