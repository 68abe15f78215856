package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/domains/contributor/model"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
)

// Runner executes a consolidation plan
type Runner interface {
	Run(ctx context.Context, actor shared.Actor, plan model.Plan, dryRun bool) (*model.Report, error)
}

// ConsolidateHandler processes contributor:consolidate tasks
type ConsolidateHandler struct {
	runner Runner
}

func NewConsolidateHandler(runner Runner) *ConsolidateHandler {
	return &ConsolidateHandler{runner: runner}
}

func (h *ConsolidateHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.Decode[model.ConsolidateTask](task)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode consolidation payload")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	log.Info().
		Int64("requested_by", payload.RequestedBy).
		Int("pairs", len(payload.Plan.Pairs)).
		Bool("dry_run", payload.DryRun).
		Msg("running contributor consolidation")

	report, err := h.runner.Run(ctx, shared.Actor{ID: payload.RequestedBy}, payload.Plan, payload.DryRun)
	if err != nil {
		// a bad plan fails the same way on every attempt; a held lock or a
		// storage error may clear up
		if apperror.IsValidation(err) {
			log.Error().Err(err).Str("code", apperror.CodeOf(err)).Msg("consolidation plan rejected")
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return fmt.Errorf("consolidate contributors: %w", err)
	}

	log.Info().
		Int64("requested_by", payload.RequestedBy).
		Int("decisions", len(report.Decisions)).
		Msg("contributor consolidation task done")
	return nil
}
