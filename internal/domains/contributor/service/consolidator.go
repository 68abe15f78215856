package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/domains/contributor/repository"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/infrastructure/cache"
	"pubops-backend/internal/infrastructure/metrics"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
	"pubops-backend/pkg/database"
)

const consolidationLockKey = "pubops:lock:contributor-consolidation"

// errDryRun rolls a pair's transaction back after its decisions are known
var errDryRun = errors.New("dry run")

// HistoryReassigner moves history pointers from a merged entity to its survivor
type HistoryReassigner interface {
	ReassignWithTx(ctx context.Context, tx pgx.Tx, entityType historyModel.EntityType, fromID, toID int64) (int64, error)
}

// Consolidator merges duplicate contributor profiles. The merge is not
// reversible; every step is logged.
type Consolidator struct {
	repo     repository.RepositoryInterface
	history  HistoryReassigner
	recorder recorder.ChangeRecorder
	tx       database.Transactor
	locker   cache.Locker
	lockTTL  time.Duration
}

func NewConsolidator(
	repo repository.RepositoryInterface,
	history HistoryReassigner,
	changes recorder.ChangeRecorder,
	tx database.Transactor,
	locker cache.Locker,
	lockTTL time.Duration,
) *Consolidator {
	return &Consolidator{repo: repo, history: history, recorder: changes, tx: tx, locker: locker, lockTTL: lockTTL}
}

// Run executes plan one pair per transaction. With dryRun every pair is
// executed and rolled back, so the report shows exactly what would happen.
// A pair whose preferred name does not resolve to exactly one contributor
// stops the run; pairs before it stay committed. Role changes are recorded
// under actor.
func (c *Consolidator) Run(ctx context.Context, actor shared.Actor, plan model.Plan, dryRun bool) (*model.Report, error) {
	if err := apperror.Validate(plan); err != nil {
		return nil, err
	}
	if actor.ID <= 0 {
		return nil, apperror.Validation("VALIDATION_ERROR", "consolidation requires an actor")
	}

	lock, err := c.locker.AcquireLock(ctx, consolidationLockKey, c.lockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		return nil, model.NewConsolidationInProgress()
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to release consolidation lock")
		}
	}()

	report := &model.Report{DryRun: dryRun, Decisions: []model.Decision{}}
	for i, pair := range plan.Pairs {
		decisions, err := c.runPair(ctx, actor, pair, dryRun)
		if err != nil {
			log.Error().Err(err).Int("pair", i).Str("preferred", pair.Preferred).Msg("consolidation pair failed")
			return report, err
		}

		for _, d := range decisions {
			logDecision(d, dryRun)
			if !dryRun {
				metrics.ConsolidationDecisions.WithLabelValues(string(d.Action)).Inc()
			}
		}
		report.Decisions = append(report.Decisions, decisions...)
	}

	log.Info().
		Bool("dry_run", dryRun).
		Int("pairs", len(plan.Pairs)).
		Int("moved", report.Count(model.ActionMoved)).
		Int("dropped", report.Count(model.ActionDropped)).
		Int("deleted", report.Count(model.ActionDeleted)).
		Int("skipped", report.Count(model.ActionSkipped)).
		Msg("contributor consolidation finished")
	return report, nil
}

func (c *Consolidator) runPair(ctx context.Context, actor shared.Actor, pair model.Pair, dryRun bool) ([]model.Decision, error) {
	var decisions []model.Decision

	err := c.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		decisions = decisions[:0]

		target, err := c.resolveTarget(ctx, tx, pair.Preferred)
		if err != nil {
			return err
		}

		for _, name := range pair.MergeFrom {
			found, err := c.repo.FindByPublishedNameWithTx(ctx, tx, utils.NormalizeName(name))
			if err != nil {
				return err
			}

			merged := 0
			for _, dup := range found {
				if dup.ID == target.ID {
					continue
				}
				steps, err := c.mergeContributor(ctx, tx, actor, pair, name, dup.ID, target.ID)
				if err != nil {
					return err
				}
				decisions = append(decisions, steps...)
				merged++
			}

			if merged == 0 {
				decisions = append(decisions, model.Decision{
					Action:    model.ActionSkipped,
					Preferred: pair.Preferred,
					MergeFrom: name,
					TargetID:  target.ID,
				})
			}
		}

		if dryRun {
			return errDryRun
		}
		return nil
	})
	if err != nil && !errors.Is(err, errDryRun) {
		return nil, err
	}
	return decisions, nil
}

func (c *Consolidator) resolveTarget(ctx context.Context, tx pgx.Tx, preferred string) (*model.Contributor, error) {
	candidates, err := c.repo.FindByPublishedNameWithTx(ctx, tx, utils.NormalizeName(preferred))
	if err != nil {
		return nil, err
	}

	switch len(candidates) {
	case 0:
		return nil, model.NewConsolidationTargetNotFound(preferred)
	case 1:
		return &candidates[0], nil
	default:
		ids := make([]int64, len(candidates))
		for i, cand := range candidates {
			ids[i] = cand.ID
		}
		return nil, model.NewConsolidationTargetAmbiguous(preferred, ids)
	}
}

// mergeContributor re-points or drops every assignment of sourceID, moves
// its history to targetID and deletes it
func (c *Consolidator) mergeContributor(ctx context.Context, tx pgx.Tx, actor shared.Actor, pair model.Pair, name string, sourceID, targetID int64) ([]model.Decision, error) {
	roles, err := c.repo.ListRolesByContributorWithTx(ctx, tx, sourceID)
	if err != nil {
		return nil, err
	}

	decisions := make([]model.Decision, 0, len(roles)+1)
	for _, role := range roles {
		d := model.Decision{
			Preferred: pair.Preferred,
			MergeFrom: name,
			SourceID:  sourceID,
			TargetID:  targetID,
			RoleID:    role.ID,
			BookID:    role.BookID,
			Role:      role.Role,
		}

		held, err := c.repo.RoleExistsWithTx(ctx, tx, model.Assignment{BookID: role.BookID, ContributorID: targetID, Role: role.Role}, role.ID)
		if err != nil {
			return nil, err
		}

		if held {
			if err := c.repo.DeleteRoleWithTx(ctx, tx, role.ID); err != nil {
				return nil, err
			}
			if err := c.recorder.RecordDelete(ctx, tx, historyModel.EntityBookContributorRole, role.ID, actor, role); err != nil {
				return nil, err
			}
			d.Action = model.ActionDropped
		} else {
			before := role
			role.ContributorID = targetID
			role.UpdatedBy = &actor.ID
			if err := c.repo.UpdateRoleWithTx(ctx, tx, &role); err != nil {
				return nil, err
			}
			if err := c.recorder.RecordDiff(ctx, tx, historyModel.EntityBookContributorRole, role.ID, actor, before, role); err != nil {
				return nil, err
			}
			d.Action = model.ActionMoved
		}
		decisions = append(decisions, d)
	}

	moved, err := c.history.ReassignWithTx(ctx, tx, historyModel.EntityContributor, sourceID, targetID)
	if err != nil {
		return nil, fmt.Errorf("reassign history of contributor %d: %w", sourceID, err)
	}

	if err := c.repo.DeleteWithTx(ctx, tx, sourceID); err != nil {
		return nil, err
	}

	decisions = append(decisions, model.Decision{
		Action:         model.ActionDeleted,
		Preferred:      pair.Preferred,
		MergeFrom:      name,
		SourceID:       sourceID,
		TargetID:       targetID,
		HistoryRecords: moved,
	})
	return decisions, nil
}

func logDecision(d model.Decision, dryRun bool) {
	log.Info().
		Bool("dry_run", dryRun).
		Str("action", string(d.Action)).
		Str("preferred", d.Preferred).
		Str("merge_from", d.MergeFrom).
		Int64("source_id", d.SourceID).
		Int64("target_id", d.TargetID).
		Int64("role_id", d.RoleID).
		Int64("book_id", d.BookID).
		Str("role", string(d.Role)).
		Int64("history_records", d.HistoryRecords).
		Msg("consolidation decision")
}
