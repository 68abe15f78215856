package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessModel "pubops-backend/internal/domains/access/model"
	accessService "pubops-backend/internal/domains/access/service"
	bookModel "pubops-backend/internal/domains/book/model"
	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/domains/contributor/repository"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

type ServiceInterface interface {
	Find(ctx context.Context, actor shared.Actor, filter model.Filter) ([]model.Contributor, int64, error)
	Get(ctx context.Context, actor shared.Actor, id int64) (*model.Contributor, error)
	Create(ctx context.Context, actor shared.Actor, req model.CreateContributorRequest) (*model.Contributor, error)
	Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateContributorRequest) (*model.Contributor, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error

	ListRoles(ctx context.Context, actor shared.Actor, bookID int64) ([]model.RoleDetail, error)
	AssignRole(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateRoleRequest) (*model.BookContributorRole, error)
	PatchRole(ctx context.Context, actor shared.Actor, roleID int64, req model.UpdateRoleRequest) (*model.BookContributorRole, error)
	RemoveRole(ctx context.Context, actor shared.Actor, roleID int64) error

	// EnqueueConsolidation hands a merge plan to the worker and returns the task id
	EnqueueConsolidation(ctx context.Context, actor shared.Actor, req model.ConsolidateRequest) (string, error)
}

type contributorService struct {
	repo     repository.RepositoryInterface
	rules    *Rules
	tx       database.Transactor
	resolver accessService.ScopeResolver
	history  recorder.ChangeRecorder
	jobs     queue.Enqueuer
}

func NewContributorService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	resolver accessService.ScopeResolver,
	history recorder.ChangeRecorder,
	jobs queue.Enqueuer,
) ServiceInterface {
	return &contributorService{
		repo:     repo,
		rules:    NewRules(repo),
		tx:       tx,
		resolver: resolver,
		history:  history,
		jobs:     jobs,
	}
}

// ============================================
// Contributors
// ============================================

// Contributor profiles are shared across imprints, so any authenticated
// actor may read them.
func (s *contributorService) Find(ctx context.Context, _ shared.Actor, filter model.Filter) ([]model.Contributor, int64, error) {
	return s.repo.Find(ctx, filter)
}

func (s *contributorService) Get(ctx context.Context, _ shared.Actor, id int64) (*model.Contributor, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, model.NewContributorNotFound(id)
	}
	return c, nil
}

func (s *contributorService) Create(ctx context.Context, actor shared.Actor, req model.CreateContributorRequest) (*model.Contributor, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	c := req.ToContributor()
	c.CreatedBy = &actor.ID

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateWithTx(ctx, tx, c); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityContributor, c.ID, actor, c)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("contributor_id", c.ID).Int64("actor_id", actor.ID).Msg("contributor created")
	return c, nil
}

func (s *contributorService) Patch(ctx context.Context, actor shared.Actor, id int64, req model.UpdateContributorRequest) (*model.Contributor, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.Contributor
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewContributorNotFound(id)
		}

		before := *current
		req.ApplyTo(current)
		current.UpdatedBy = &actor.ID

		if err := s.repo.UpdateWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityContributor, id, actor, before, current); err != nil {
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

// Remove is administrator only and fails with CONTRIBUTOR_HAS_ROLES while
// the contributor still holds assignments
func (s *contributorService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperror.AdminRequired()
	}

	return s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewContributorNotFound(id)
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityContributor, id, actor, current)
	})
}

// ============================================
// Role assignments
// ============================================

// bookAccess resolves whether actor may read and write bookID
func (s *contributorService) bookAccess(ctx context.Context, actor shared.Actor, bookID int64) (bool, error) {
	imprintID, found, err := s.repo.BookImprint(ctx, bookID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, bookModel.NewBookNotFound(bookID)
	}

	scope, err := s.resolver.ResolveBooks(ctx, actor)
	if err != nil {
		return false, err
	}
	return scope.Allows(bookID, imprintID), nil
}

func (s *contributorService) ListRoles(ctx context.Context, actor shared.Actor, bookID int64) ([]model.RoleDetail, error) {
	allowed, err := s.bookAccess(ctx, actor, bookID)
	if err != nil {
		return nil, err
	}
	if err := accessModel.CheckRead(allowed, bookModel.NewBookNotFound(bookID)); err != nil {
		return nil, err
	}
	return s.repo.ListRolesByBook(ctx, bookID)
}

func (s *contributorService) AssignRole(ctx context.Context, actor shared.Actor, bookID int64, req model.CreateRoleRequest) (*model.BookContributorRole, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	allowed, err := s.bookAccess(ctx, actor, bookID)
	if err != nil {
		return nil, err
	}
	if err := accessModel.CheckWrite(allowed); err != nil {
		return nil, err
	}

	role := &model.BookContributorRole{
		BookID:        bookID,
		ContributorID: req.ContributorID,
		Role:          req.Role,
		CreatedBy:     &actor.ID,
	}

	err = s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		candidate := model.Assignment{BookID: bookID, ContributorID: role.ContributorID, Role: role.Role}
		if err := s.rules.CheckAssignment(ctx, tx, candidate, 0); err != nil {
			return err
		}
		if err := s.repo.CreateRoleWithTx(ctx, tx, role); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityBookContributorRole, role.ID, actor, role)
	})
	if err != nil {
		return nil, err
	}
	return role, nil
}

func (s *contributorService) PatchRole(ctx context.Context, actor shared.Actor, roleID int64, req model.UpdateRoleRequest) (*model.BookContributorRole, error) {
	if err := apperror.Validate(req); err != nil {
		return nil, err
	}

	var updated *model.BookContributorRole
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetRoleForUpdateWithTx(ctx, tx, roleID)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewRoleNotFound(roleID)
		}

		allowed, err := s.bookAccess(ctx, actor, current.BookID)
		if err != nil {
			return err
		}
		if err := accessModel.CheckWrite(allowed); err != nil {
			return err
		}

		before := *current
		req.ApplyTo(current)
		if current.ContributorID == before.ContributorID && current.Role == before.Role {
			updated = current
			return nil
		}

		candidate := model.Assignment{BookID: current.BookID, ContributorID: current.ContributorID, Role: current.Role}
		if err := s.rules.CheckAssignment(ctx, tx, candidate, roleID); err != nil {
			return err
		}

		current.UpdatedBy = &actor.ID
		if err := s.repo.UpdateRoleWithTx(ctx, tx, current); err != nil {
			return err
		}
		if err := s.history.RecordDiff(ctx, tx, historyModel.EntityBookContributorRole, roleID, actor, before, current); err != nil {
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

func (s *contributorService) RemoveRole(ctx context.Context, actor shared.Actor, roleID int64) error {
	return s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetRoleForUpdateWithTx(ctx, tx, roleID)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewRoleNotFound(roleID)
		}

		allowed, err := s.bookAccess(ctx, actor, current.BookID)
		if err != nil {
			return err
		}
		if err := accessModel.CheckWrite(allowed); err != nil {
			return err
		}

		if err := s.repo.DeleteRoleWithTx(ctx, tx, roleID); err != nil {
			return err
		}
		return s.history.RecordDelete(ctx, tx, historyModel.EntityBookContributorRole, roleID, actor, current)
	})
}

// ============================================
// Consolidation
// ============================================

func (s *contributorService) EnqueueConsolidation(ctx context.Context, actor shared.Actor, req model.ConsolidateRequest) (string, error) {
	if !actor.IsAdmin() {
		return "", apperror.AdminRequired()
	}
	if err := apperror.Validate(req); err != nil {
		return "", err
	}

	payload := model.ConsolidateTask{Plan: req.Plan, DryRun: req.DryRun, RequestedBy: actor.ID}
	info, err := queue.Enqueue(ctx, s.jobs, shared.TypeConsolidateContributors, payload,
		asynq.Queue(shared.QueueMaintenance), asynq.MaxRetry(3))
	if err != nil {
		return "", err
	}

	log.Info().
		Str("task_id", info.ID).
		Int64("actor_id", actor.ID).
		Int("pairs", len(req.Plan.Pairs)).
		Bool("dry_run", req.DryRun).
		Msg("contributor consolidation enqueued")
	return info.ID, nil
}
